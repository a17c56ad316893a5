// Package ccd implements the linear-cast continuous collision pass
// spec.md §4.9 describes. The teacher has no CCD stage of its own to
// copy — experimental/physics/simulation.go integrates positions
// discretely every step with no tunneling guard — so this package is
// built directly from spec.md §4.9's wording on top of the already-
// grounded collision.CastShape conservative-advancement sweep (itself
// grounded on the teacher's GJK distance loop, generalized to a moving
// support function).
package ccd

import (
	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/collision"
	"github.com/ironvale/physics3d/contact"
	"github.com/ironvale/physics3d/math3"
	"github.com/ironvale/physics3d/shape"
)

// DefaultLinearCastThreshold is the fraction of a body's own minimum
// local AABB half-extent its per-step displacement must exceed before a
// shape cast replaces trusting the discrete narrowphase, per spec.md
// §6's createWorldSettings CCD sub-record default.
const DefaultLinearCastThreshold = 0.05

// Settings holds the world's CCD tunables.
type Settings struct {
	LinearCastThreshold float32
}

// DefaultSettings returns spec.md §6's published default.
func DefaultSettings() Settings {
	return Settings{LinearCastThreshold: DefaultLinearCastThreshold}
}

// BodyLookup resolves a body.ID to its live *body.Body.
type BodyLookup interface {
	Body(id body.ID) *body.Body
}

// BroadphaseQuery is the subset of broadphase.Broadphase the CCD pass
// needs: a swept-AABB overlap query.
type BroadphaseQuery interface {
	QueryAABB(box math3.AABB, visit func(payload int32))
}

// Resolver maps a broadphase payload back to the body.ID that owns it.
type Resolver func(payload int32) (body.ID, bool)

// Hit records the earliest time-of-impact found for one swept body.
type Hit struct {
	Body, Other body.ID
	Fraction    float32
	Normal      math3.Vec3
	Point       math3.Vec3
}

// NeedsSweep reports whether displacement is large enough, relative to
// shape's own minimum local half-extent, to warrant a shape cast rather
// than trusting the discrete narrowphase (spec.md §4.9's "exceeds a
// fraction of its minimum AABB half-extent" test).
func NeedsSweep(s shape.Shape, displacement math3.Vec3, settings Settings) bool {
	threshold := settings.LinearCastThreshold
	if threshold <= 0 {
		threshold = DefaultLinearCastThreshold
	}
	localBox := s.AABB(math3.Transform{Orientation: math3.IdentityQuat()})
	return displacement.Len() > threshold*localBox.MinHalfExtent()
}

// Sweep shape-casts the body named by id from prevPosition to its
// current, already solver-integrated Position against every broadphase
// candidate along the swept AABB. If an earlier TOI than the full step
// is found, it clamps the body's Position to that TOI and records a
// CCD-flagged contact so the following narrowphase/solver pass resolves
// it like any other contact (spec.md §4.9: "a contact is created with
// the CCDContact flag"). Kinematic and static bodies are never swept
// themselves but are always valid targets, per spec.md §4.9.
func Sweep(id body.ID, prevPosition math3.Vec3, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, contacts *contact.Cache, settings Settings) (Hit, bool) {
	b := bodies.Body(id)
	if b == nil || b.MotionType != body.Dynamic || b.Motion == nil || b.Motion.Quality != body.LinearCast {
		return Hit{}, false
	}

	displacement := b.Position.Sub(prevPosition)
	if !NeedsSweep(b.Shape, displacement, settings) {
		return Hit{}, false
	}

	startTransform := math3.Transform{Position: prevPosition, Orientation: b.Orientation}
	sweptBox := math3.Union(b.Shape.AABB(startTransform), b.Shape.AABB(b.Transform()))

	best, bestFound := Hit{}, false
	bp.QueryAABB(sweptBox, func(payload int32) {
		otherID, ok := resolve(payload)
		if !ok || otherID == id {
			return
		}
		other := bodies.Body(otherID)
		if other == nil || !b.CanCollideWith(other) {
			return
		}
		hit, found := collision.CastShape(b.Shape, startTransform, displacement, other.Shape, other.Transform(), 1.0)
		if !found {
			return
		}
		better := !bestFound || hit.Fraction < best.Fraction ||
			(hit.Fraction == best.Fraction && otherID.Index() < best.Other.Index())
		if better {
			best = Hit{Body: id, Other: otherID, Fraction: hit.Fraction, Normal: hit.Normal, Point: hit.PointOnTarget}
			bestFound = true
		}
	})

	if !bestFound {
		return Hit{}, false
	}

	b.Position = prevPosition.Add(displacement.Mul(best.Fraction))

	ct := contacts.Create(id, best.Other, shape.EmptySubShapeID, shape.EmptySubShapeID)
	ct.CCD = true
	ct.Touching = true
	ct.Manifold = collision.Manifold{
		// The cast normal points from the target into the mover (B into
		// A); the manifold normal points from A into B.
		Normal: best.Normal.Mul(-1),
		Points: []collision.ManifoldPoint{{PointOnA: best.Point, PointOnB: best.Point, Penetration: 0}},
	}
	return best, true
}

// SweepAll runs Sweep over every candidate body, given its pre-step
// position, returning every hit found (in candidate order, which the
// caller is expected to have already sorted by body index for
// spec.md §5's determinism requirement).
func SweepAll(candidates []body.ID, prevPositions map[body.ID]math3.Vec3, bodies BodyLookup, bp BroadphaseQuery, resolve Resolver, contacts *contact.Cache, settings Settings) []Hit {
	var hits []Hit
	for _, id := range candidates {
		prev, ok := prevPositions[id]
		if !ok {
			continue
		}
		if hit, found := Sweep(id, prev, bodies, bp, resolve, contacts, settings); found {
			hits = append(hits, hit)
		}
	}
	return hits
}
