package character

import "github.com/ironvale/physics3d/math3"

// updateSupportingContact classifies the character's ground state from
// this step's contacts by comparing each surface normal with Up, per
// spec.md §4.10 step 3: contacts whose surface normal is within the
// max-slope cosine of Up are "supporting" (OnGround); steeper upward-
// facing ones give OnSteepGround, promoted to OnGround when the
// corner-support test finds they block all downward motion; contacts
// that face sideways or down only give NotSupported; no contacts at all
// is InAir.
func (c *Character) updateSupportingContact(contacts []Contact) {
	maxCos := c.Settings.maxSlopeCos()
	up := c.Settings.Up

	var best *Contact
	bestDot := float32(-2)
	anySteep := false

	for i := range contacts {
		ct := &contacts[i]
		dot := ct.SurfaceNormal.Dot(up)
		if dot <= 0 {
			continue // side or overhead contact, never a floor
		}
		if dot >= maxCos {
			if dot > bestDot {
				bestDot = dot
				best = ct
			}
		} else {
			anySteep = true
		}
	}

	switch {
	case best != nil:
		c.Ground = OnGround
		c.GroundNormal = best.SurfaceNormal
		c.GroundVelocity = best.LinearVelocity
		c.GroundBody = best.Body
		c.GroundPosition = best.Position
		c.hasGroundBody = true
	case anySteep:
		if c.cornerSupported(contacts) {
			c.Ground = OnGround
		} else {
			c.Ground = OnSteepGround
		}
		c.hasGroundBody = false
	case len(contacts) > 0:
		c.Ground = NotSupported
		c.hasGroundBody = false
	default:
		c.Ground = InAir
		c.hasGroundBody = false
	}
}

// cornerSupported runs a short downward solve against every steep
// contact's plane constraint: if the solve cannot produce any net
// downward velocity, the cluster of slopes is blocking descent as a
// corner, and the character is reclassified as OnGround (spec.md §4.10
// step 3's corner-support test).
func (c *Character) cornerSupported(contacts []Contact) bool {
	var constraints []PlaneConstraint
	for _, ct := range contacts {
		if ct.IsSteep(c.Settings.Up, c.Settings.maxSlopeCos()) {
			constraints = append(constraints, PlaneConstraint{Normal: ct.ContactNormal, Point: ct.Position})
		}
	}
	if len(constraints) < 2 {
		return false
	}
	test := c.Settings.Up.Mul(-1)
	solved := solveAgainstConstraints(test, constraints, c.Settings.MaxConstraintIterations)
	return solved.LenSqr() < math3.Epsilon
}

// stickToFloor sweeps a short distance downward and, on a hit, snaps
// the character onto it — spec.md §4.10 step 4, used when the character
// just left the ground while still moving horizontally so it doesn't
// visibly pop off every small ledge.
func (c *Character) stickToFloor(bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, filter Filter) {
	displacement := c.Settings.Up.Mul(-c.Settings.StickToFloorStepDown)
	hit, found := c.sweep(displacement, bodies, bp, resolve, filter)
	if !found {
		return
	}
	c.Position = c.Position.Add(displacement.Mul(hit.Fraction))
	c.Ground = OnGround
	c.GroundNormal = hit.Normal
	c.GroundPosition = hit.PointOnTarget
}

// walkStairs implements spec.md §4.10 step 5's 6 sub-steps: step up,
// move horizontally, require a steep slope now behind the character,
// step down, validate the landing, and on success commit the new
// position with ground state forced to OnGround.
func (c *Character) walkStairs(dt float32, desired math3.Vec3, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, filter Filter) {
	up := c.Settings.Up
	horizontal := desired.Sub(up.Mul(desired.Dot(up)))
	if horizontal.LenSqr() < math3.Epsilon {
		return
	}
	original := c.Position

	// (a) sweep up.
	upDisplacement := up.Mul(c.Settings.WalkStairsStepUp)
	if hit, blocked := c.sweep(upDisplacement, bodies, bp, resolve, filter); blocked {
		upDisplacement = upDisplacement.Mul(hit.Fraction)
	}
	c.Position = c.Position.Add(upDisplacement)

	// (b) move horizontally at the elevated position.
	horizDisplacement := horizontal.Mul(dt)
	if hit, blocked := c.sweep(horizDisplacement, bodies, bp, resolve, filter); blocked {
		horizDisplacement = horizDisplacement.Mul(hit.Fraction)
	}
	c.Position = c.Position.Add(horizDisplacement)

	// (c) require a steep slope now behind the character (minimum
	// forward progress, dot test against the horizontal travel direction).
	forward := horizontal.Normalize()
	contacts := c.collectContacts(bodies, bp, resolve, filter)
	clearedStep := false
	for _, ct := range contacts {
		if ct.IsSteep(up, c.Settings.maxSlopeCos()) && ct.SurfaceNormal.Dot(forward) < -c.Settings.WalkStairsMinStepForward {
			clearedStep = true
			break
		}
	}
	if !clearedStep {
		c.Position = original
		return
	}

	// (d) sweep down.
	downDisplacement := up.Mul(-(c.Settings.WalkStairsStepUp + c.Settings.StickToFloorStepDown))
	downHit, downFound := c.sweep(downDisplacement, bodies, bp, resolve, filter)
	if !downFound {
		c.Position = original
		return
	}

	// (e) validate the landing surface is walkable.
	if downHit.Normal.Dot(up) < c.Settings.maxSlopeCos() {
		c.Position = original
		return
	}

	// (f) commit and force OnGround.
	c.Position = c.Position.Add(downDisplacement.Mul(downHit.Fraction))
	c.Ground = OnGround
	c.GroundNormal = downHit.Normal
	c.GroundPosition = downHit.PointOnTarget
}
