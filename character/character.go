// Package character implements the kinematic character controller
// spec.md §4.10 describes. Neither the teacher nor any complete example
// repo in the pack implements one, but other_examples/ retrieved a real
// production CGo binding to Jolt's own CharacterVirtual (6712124c_
// bbitechnologies-jolt-go__jolt-character.go.go); this package keeps
// that binding's settings names, defaults and GroundState shape while
// reimplementing the algorithm natively in Go on top of this module's
// own collision and shape packages instead of calling out to Jolt.
package character

import (
	"math"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// BackFaceMode controls whether a contact test accepts a back-facing
// triangle, mirrored from the jolt-go binding's BackFaceMode.
type BackFaceMode int

const (
	BackFaceModeIgnore BackFaceMode = iota
	BackFaceModeCollide
)

// GroundState is the character's supporting-surface classification, per
// spec.md §4.10's exact state set.
type GroundState int

const (
	InAir GroundState = iota
	NotSupported
	OnSteepGround
	OnGround
)

func (s GroundState) String() string {
	switch s {
	case InAir:
		return "InAir"
	case NotSupported:
		return "NotSupported"
	case OnSteepGround:
		return "OnSteepGround"
	case OnGround:
		return "OnGround"
	default:
		return "Unknown"
	}
}

// Supported reports whether s is one of the two "supported" states
// spec.md §4.10 names (OnGround and OnSteepGround).
func (s GroundState) Supported() bool {
	return s == OnGround || s == OnSteepGround
}

// Settings configures a Character, field-for-field grounded on the
// jolt-go CharacterVirtualSettings binding, converted to this module's
// own Vec3/shape types and extended with the stick-to-floor/walk-stairs
// tunables spec.md §4.10 names but the binding leaves as separate calls.
type Settings struct {
	Shape shape.Shape
	Up    math3.Vec3

	MaxSlopeAngle float32 // radians
	Mass          float32
	MaxStrength   float32
	ShapeOffset   math3.Vec3
	BackFaceMode  BackFaceMode

	PredictiveContactDistance float32
	MaxCollisionIterations    int
	MaxConstraintIterations   int
	MinTimeRemaining          float32
	CollisionTolerance        float32
	CharacterPadding          float32
	HitReductionCosMaxAngle   float32
	PenetrationRecoverySpeed  float32

	EnhancedInternalEdgeRemoval bool

	StickToFloorStepDown     float32
	WalkStairsStepUp         float32
	WalkStairsMinStepForward float32
}

// DefaultSettings returns the jolt-go binding's published defaults,
// translated 1:1, plus spec.md §4.10's stair/stick-to-floor defaults
// (not present in the binding, chosen to match its existing scale).
func DefaultSettings(s shape.Shape) Settings {
	return Settings{
		Shape:                     s,
		Up:                        math3.UnitY,
		MaxSlopeAngle:             50 * math3.Pi() / 180,
		Mass:                      70,
		MaxStrength:               100,
		BackFaceMode:              BackFaceModeCollide,
		PredictiveContactDistance: 0.1,
		MaxCollisionIterations:    5,
		MaxConstraintIterations:   15,
		MinTimeRemaining:          1e-4,
		CollisionTolerance:        1e-3,
		CharacterPadding:          0.02,
		HitReductionCosMaxAngle:   0.999,
		PenetrationRecoverySpeed:  1,
		StickToFloorStepDown:      0.5,
		WalkStairsStepUp:          0.4,
		WalkStairsMinStepForward:  0.02,
	}
}

func (s Settings) maxSlopeCos() float32 {
	return math3.Abs(cos(s.MaxSlopeAngle))
}

// BodyLookup resolves a body.ID to its live *body.Body.
type BodyLookup interface {
	Body(id body.ID) *body.Body
}

// BroadphaseQuery is the subset of broadphase.Broadphase the character
// controller needs to find nearby candidate bodies.
type BroadphaseQuery interface {
	QueryAABB(box math3.AABB, visit func(payload int32))
}

// Resolver maps a broadphase payload back to a body.ID.
type Resolver func(payload int32) (body.ID, bool)

// Filter lets a caller exclude specific bodies from character collision
// (spec.md §6's query filter concept, applied to the character's own
// contact collection).
type Filter interface {
	ShouldCollide(id body.ID) bool
}

// FilterFunc adapts a plain function to Filter.
type FilterFunc func(id body.ID) bool

func (f FilterFunc) ShouldCollide(id body.ID) bool { return f(id) }

// Character owns its own position/orientation/velocity, independent of
// the rigid-body pools, per spec.md §4.10.
type Character struct {
	Settings Settings

	Position    math3.Vec3
	Orientation math3.Quat

	LinearVelocity math3.Vec3

	Ground         GroundState
	GroundNormal   math3.Vec3
	GroundVelocity math3.Vec3
	GroundBody     body.ID
	GroundPosition math3.Vec3
	hasGroundBody  bool

	steepContacts []PlaneConstraint
	lastVelocity  math3.Vec3

	contacts map[contactKey]Contact

	InnerBody *body.ID // optional kinematic body synced to the character each step
}

// New creates a character at the given position with identity
// orientation and zero velocity.
func New(settings Settings, position math3.Vec3) *Character {
	return &Character{
		Settings:    settings,
		Position:    position,
		Orientation: math3.IdentityQuat(),
		Ground:      InAir,
		contacts:    make(map[contactKey]Contact),
	}
}

// Transform returns the character shape's current placement, including
// its configured local offset.
func (c *Character) Transform() math3.Transform {
	return math3.Transform{
		Position:    c.Position.Add(c.Orientation.Rotate(c.Settings.ShapeOffset)),
		Orientation: c.Orientation,
	}
}

// Update advances the character by dt: cancels velocity driving into
// last step's steep contacts, runs moveShape, reclassifies ground
// state, sticks to the floor, walks stairs, applies impulses to any
// dynamic bodies touched, and dispatches contact callbacks — spec.md
// §4.10's 7 numbered steps, in order.
func (c *Character) Update(dt float32, gravity math3.Vec3, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, listener Listener, filter Filter) {
	if listener == nil {
		listener = NopListener{}
	}

	// 1. Cancel velocity driving into steep-slope contacts recorded last step.
	desired := c.LinearVelocity
	for _, pc := range c.steepContacts {
		into := desired.Dot(pc.Normal)
		if into < 0 {
			desired = desired.Sub(pc.Normal.Mul(into))
		}
	}
	// Gravity always accumulates into the vertical velocity; the ground
	// plane constraint moveShape builds each step is what actually stops
	// the character sinking once it lands.
	desired = desired.Add(gravity.Mul(dt))

	// 2. moveShape.
	newContacts := c.moveShape(desired, dt, bodies, bp, resolve, filter)

	// 3. Update ground state.
	wasSupported := c.Ground.Supported()
	c.updateSupportingContact(newContacts)

	// 4. Stick to floor, only on the step the character leaves the ground.
	if wasSupported && c.Ground == InAir && horizontalLenSqr(c.LinearVelocity, c.Settings.Up) > math3.Epsilon {
		c.stickToFloor(bodies, bp, resolve, filter)
	}

	// 5. Walk stairs, if still blocked by a steep slope despite horizontal intent.
	if c.Ground == OnSteepGround && horizontalLenSqr(desired, c.Settings.Up) > math3.Epsilon {
		c.walkStairs(dt, desired, bodies, bp, resolve, filter)
	}

	// 6. Push dynamic bodies.
	c.applyImpulses(newContacts, dt, bodies)

	// 7. Dispatch contact callbacks.
	c.dispatchContacts(newContacts, listener)

	c.lastVelocity = c.LinearVelocity

	c.steepContacts = c.steepContacts[:0]
	for _, ct := range newContacts {
		if ct.IsSteep(c.Settings.Up, c.Settings.maxSlopeCos()) {
			c.steepContacts = append(c.steepContacts, PlaneConstraint{Normal: ct.ContactNormal, Point: ct.Position})
		}
	}

	if c.InnerBody != nil {
		if b := bodies.Body(*c.InnerBody); b != nil {
			b.Position = c.Position
			b.Orientation = c.Orientation
		}
	}
}

func horizontalLenSqr(v, up math3.Vec3) float32 {
	h := v.Sub(up.Mul(v.Dot(up)))
	return h.LenSqr()
}

func cos(radians float32) float32 {
	return float32(math.Cos(float64(radians)))
}
