// Package constraint implements the joint kinds spec.md §4.7 lists:
// Contact, Point, Distance, Hinge, Fixed, Slider, Cone, SwingTwist and
// SixDOF, all sharing the sequential-impulse lifecycle the solver
// drives (setupVelocity/warmStartVelocity/solveVelocity/solvePosition).
package constraint

// Kind tags a constraint's concrete type. An ID pairs a Kind with a
// pool index rather than using an interface-typed slice key.
type Kind uint8

const (
	KindContact Kind = iota
	KindPoint
	KindDistance
	KindHinge
	KindFixed
	KindSlider
	KindCone
	KindSwingTwist
	KindSixDOF
)

// ID identifies one live constraint: its Kind plus its index into that
// kind's pool.
type ID struct {
	Kind  Kind
	Index uint32
}

// InvalidID names no constraint.
var InvalidID = ID{}
