package character

import (
	"sort"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// PlaneConstraint is one "do not move further into this surface"
// constraint the velocity solve must respect, per spec.md §4.10's
// "convert contacts to plane constraints" step.
type PlaneConstraint struct {
	Normal math3.Vec3
	Point  math3.Vec3
}

// moveShape runs up to MaxCollisionIterations of collect/solve/sweep/
// advance, per spec.md §4.10 step 2, returning the contacts found on the
// final iteration (the set updateSupportingContact classifies next).
func (c *Character) moveShape(desired math3.Vec3, dt float32, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, filter Filter) []Contact {
	remaining := dt
	velocity := desired
	var contacts []Contact

	for iter := 0; iter < c.Settings.MaxCollisionIterations && remaining > c.Settings.MinTimeRemaining; iter++ {
		contacts = c.collectContacts(bodies, bp, resolve, filter)
		contacts = discardOpposingContacts(contacts, c.Settings.CharacterPadding)

		constraints := make([]PlaneConstraint, 0, len(contacts)*2)
		for _, ct := range contacts {
			constraints = append(constraints, PlaneConstraint{Normal: ct.ContactNormal, Point: ct.Position})
			if ct.IsSteep(c.Settings.Up, c.Settings.maxSlopeCos()) {
				vertical := ct.ContactNormal.Sub(c.Settings.Up.Mul(ct.ContactNormal.Dot(c.Settings.Up)))
				if vertical.LenSqr() > math3.Epsilon {
					constraints = append(constraints, PlaneConstraint{Normal: vertical.Normalize(), Point: ct.Position})
				}
			}
		}

		solved := solveAgainstConstraints(velocity, constraints, c.Settings.MaxConstraintIterations)

		// Velocity reversal mid-solve aborts the loop to prevent corner
		// jitter (spec.md §4.10).
		if c.lastVelocity.LenSqr() > math3.Epsilon && velocity.Dot(c.lastVelocity) >= 0 && solved.Dot(c.lastVelocity) < 0 {
			velocity = math3.Zero3
			break
		}
		velocity = solved

		displacement := velocity.Mul(remaining)
		fraction := float32(1)
		if hit, found := c.sweep(displacement, bodies, bp, resolve, filter); found {
			fraction = hit.Fraction
		}

		c.Position = c.Position.Add(displacement.Mul(fraction))
		remaining = remaining * (1 - fraction)
	}

	c.LinearVelocity = velocity
	return contacts
}

// sweep shape-casts the character shape along displacement against
// every broadphase candidate near the swept path, returning the
// earliest hit if any (spec.md §4.10 step 2e: "sweep-cast along the
// chosen displacement to catch fast motion and clamp").
func (c *Character) sweep(displacement math3.Vec3, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, filter Filter) (collision.ShapeCastHit, bool) {
	if displacement.LenSqr() < math3.Epsilon {
		return collision.ShapeCastHit{}, false
	}
	start := c.Transform()
	endBox := c.Settings.Shape.AABB(math3.Transform{Position: start.Position.Add(displacement), Orientation: start.Orientation})
	sweptBox := math3.Union(c.Settings.Shape.AABB(start), endBox)

	best, found := collision.ShapeCastHit{}, false
	bp.QueryAABB(sweptBox, func(payload int32) {
		id, ok := resolve(payload)
		if !ok {
			return
		}
		if filter != nil && !filter.ShouldCollide(id) {
			return
		}
		b := bodies.Body(id)
		if b == nil || b.IsSensor {
			return
		}
		hit, ok2 := collision.CastShape(c.Settings.Shape, start, displacement, b.Shape, b.Transform(), 1.0)
		if !ok2 {
			return
		}
		if !found || hit.Fraction < best.Fraction {
			best, found = hit, true
		}
	})
	return best, found
}

// collectContacts gathers every overlapping-or-near shape within
// PredictiveContactDistance + CharacterPadding, per spec.md §4.10 step
// 2a, grounded on collision.CollideShapes for the actual GJK/EPA test.
func (c *Character) collectContacts(bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, filter Filter) []Contact {
	t := c.Transform()
	padded := c.Settings.Shape.AABB(t).Expand(c.Settings.PredictiveContactDistance + c.Settings.CharacterPadding)

	var out []Contact
	bp.QueryAABB(padded, func(payload int32) {
		id, ok := resolve(payload)
		if !ok {
			return
		}
		if filter != nil && !filter.ShouldCollide(id) {
			return
		}
		b := bodies.Body(id)
		if b == nil {
			return
		}

		var results []collision.PairResult
		collision.CollideShapes(c.Settings.Shape, t, shape.EmptySubShapeID, b.Shape, b.Transform(), shape.EmptySubShapeID, &results)
		for _, r := range results {
			if !r.Intersect {
				continue
			}
			if len(r.Manifold.Points) == 0 {
				continue
			}
			p := r.Manifold.Points[0]
			if -p.Penetration > c.Settings.PredictiveContactDistance {
				continue
			}
			out = append(out, Contact{
				Body:             id,
				SubShapeID:       r.SubShapeB,
				Position:         p.PointOnB,
				LinearVelocity:   velocityAt(b, p.PointOnB),
				ContactNormal:    r.Manifold.Normal.Mul(-1), // CollideShapes reports A(character)->B; contact normal points back at the character
				SurfaceNormal:    r.Manifold.Normal.Mul(-1),
				Distance:         -p.Penetration,
				CanPushCharacter: b.MotionType == body.Dynamic,
				IsSensor:         b.IsSensor,
			})
		}
	})
	sortContacts(out)
	return out
}

func velocityAt(b *body.Body, point math3.Vec3) math3.Vec3 {
	if b.Motion == nil {
		return math3.Zero3
	}
	r := point.Sub(b.Position)
	return b.Motion.LinearVelocity.Add(b.Motion.AngularVelocity.Cross(r))
}

func sortContacts(cs []Contact) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Body.Index() != cs[j].Body.Index() {
			return cs[i].Body.Index() < cs[j].Body.Index()
		}
		return cs[i].SubShapeID.Raw() < cs[j].SubShapeID.Raw()
	})
}

// discardOpposingContacts drops the shallower of any pair of contacts
// whose normals face each other by more than the padding allowance, per
// spec.md §4.10 step 2b ("discard mutually-opposing contacts... to
// avoid being wedged").
func discardOpposingContacts(contacts []Contact, padding float32) []Contact {
	discard := make([]bool, len(contacts))
	for i := range contacts {
		if discard[i] {
			continue
		}
		for j := i + 1; j < len(contacts); j++ {
			if discard[j] {
				continue
			}
			if contacts[i].ContactNormal.Dot(contacts[j].ContactNormal) < -(1 - padding) {
				if contacts[i].Distance <= contacts[j].Distance {
					discard[j] = true
				} else {
					discard[i] = true
					break
				}
			}
		}
	}
	out := contacts[:0]
	for i, ct := range contacts {
		if !discard[i] {
			out = append(out, ct)
		}
	}
	return out
}

// solveAgainstConstraints projects velocity so it never drives further
// into any violated plane constraint: single-plane slide first, and a
// two-plane edge slide along the crease when removing one plane's
// violation still drives into a second (spec.md §4.10 step 2d's
// "TOI-prioritized single/two-plane sliding").
func solveAgainstConstraints(velocity math3.Vec3, constraints []PlaneConstraint, iterations int) math3.Vec3 {
	v := velocity
	for iter := 0; iter < iterations; iter++ {
		violated := -1
		worst := float32(0)
		for i, pc := range constraints {
			into := v.Dot(pc.Normal)
			if into < worst {
				worst = into
				violated = i
			}
		}
		if violated < 0 {
			break
		}
		v = v.Sub(constraints[violated].Normal.Mul(v.Dot(constraints[violated].Normal)))

		for j, pc := range constraints {
			if j == violated {
				continue
			}
			if v.Dot(pc.Normal) < -math3.Epsilon {
				edge := constraints[violated].Normal.Cross(pc.Normal)
				if edge.LenSqr() > math3.Epsilon {
					edge = edge.Normalize()
					v = edge.Mul(v.Dot(edge))
				}
				break
			}
		}
	}
	return v
}
