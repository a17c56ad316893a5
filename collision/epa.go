package collision

import (
	"github.com/ironvale/physics3d/math3"
)

// EPATolerance controls when the expanding polytope's closest face is
// considered converged (spec.md §4.2).
const EPATolerance = 1e-4

// MaxEPAIterations bounds EPA the same way MaxGJKIterations bounds GJK:
// a non-convergent case returns the best current face rather than
// looping forever (spec.md §7).
const MaxEPAIterations = 32

// epaFace is one triangular face of the expanding polytope.
type epaFace struct {
	a, b, c int // indices into the polytope's vertex list
	normal  math3.Vec3
	dist    float32 // distance from the origin to the face plane
}

// EPAResult carries the penetration axis/depth/witness points EPA
// extracts once GJK has reported an intersection.
type EPAResult struct {
	Normal   math3.Vec3 // points from A into B
	Depth    float32
	PointOnA math3.Vec3
	PointOnB math3.Vec3
	Valid    bool
}

// Penetration runs EPA starting from a GJK result that reported
// Intersect = true, using the same support functions GJK used.
func Penetration(gjk GJKResult, supportA, supportB SupportFn) EPAResult {
	verts := make([]gjkVertex, len(gjk.simplex))
	copy(verts, gjk.simplex)
	verts = padToTetrahedron(verts, supportA, supportB)
	if len(verts) < 4 {
		return EPAResult{}
	}

	faces := buildInitialPolytope(verts)
	if len(faces) == 0 {
		return EPAResult{}
	}

	for iter := 0; iter < MaxEPAIterations; iter++ {
		closest := closestFace(faces)
		if closest < 0 {
			break
		}
		f := faces[closest]
		support := func(d math3.Vec3) gjkVertex {
			pa := supportA(d)
			pb := supportB(d.Mul(-1))
			return gjkVertex{w: pa.Sub(pb), onA: pa, onB: pb}
		}
		v := support(f.normal)
		dist := v.w.Dot(f.normal)
		if dist-f.dist < EPATolerance {
			return faceResult(f, verts)
		}
		verts = append(verts, v)
		faces = expandPolytope(faces, verts, len(verts)-1)
		if len(faces) == 0 {
			return faceResult(f, verts)
		}
	}

	closest := closestFace(faces)
	if closest < 0 {
		return EPAResult{}
	}
	return faceResult(faces[closest], verts)
}

func faceResult(f epaFace, verts []gjkVertex) EPAResult {
	// The witness points are the plain average of the three face
	// vertices' support points, not barycentric weights of the origin's
	// projection onto the face; this is exact only when that projection
	// lies at the face centroid.
	a, b, c := verts[f.a], verts[f.b], verts[f.c]
	wA := a.onA.Add(b.onA).Add(c.onA).Mul(1.0 / 3.0)
	wB := a.onB.Add(b.onB).Add(c.onB).Mul(1.0 / 3.0)
	return EPAResult{
		Normal:   f.normal,
		Depth:    f.dist,
		PointOnA: wA,
		PointOnB: wB,
		Valid:    true,
	}
}

func padToTetrahedron(verts []gjkVertex, supportA, supportB SupportFn) []gjkVertex {
	axes := []math3.Vec3{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
	idx := 0
	for len(verts) < 4 && idx < len(axes) {
		d := axes[idx]
		idx++
		pa := supportA(d)
		pb := supportB(d.Mul(-1))
		w := pa.Sub(pb)
		dup := false
		for _, v := range verts {
			if math3.NearlyEqual(v.w, w, 1e-6) {
				dup = true
				break
			}
		}
		if !dup {
			verts = append(verts, gjkVertex{w: w, onA: pa, onB: pb})
		}
	}
	return verts
}

func buildInitialPolytope(verts []gjkVertex) []epaFace {
	if len(verts) < 4 {
		return nil
	}
	v := verts[:4]
	// Orient the tetrahedron so every face normal points away from the
	// centroid, which for a tetrahedron containing the origin also makes
	// it point away from the origin.
	centroid := v[0].w.Add(v[1].w).Add(v[2].w).Add(v[3].w).Mul(0.25)
	faceIdx := [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}
	faces := make([]epaFace, 0, 4)
	for _, fi := range faceIdx {
		f := makeFace(verts, fi[0], fi[1], fi[2])
		if f.normal.Sub(centroid.Mul(-1)).LenSqr() > 0 && f.normal.Dot(verts[fi[0]].w.Sub(centroid)) < 0 {
			f = makeFace(verts, fi[0], fi[2], fi[1])
		}
		faces = append(faces, f)
	}
	return faces
}

func makeFace(verts []gjkVertex, a, b, c int) epaFace {
	n := verts[b].w.Sub(verts[a].w).Cross(verts[c].w.Sub(verts[a].w))
	if n.LenSqr() < math3.Epsilon {
		return epaFace{a: a, b: b, c: c, normal: math3.Vec3{0, 1, 0}, dist: 0}
	}
	n = n.Normalize()
	dist := n.Dot(verts[a].w)
	if dist < 0 {
		n = n.Mul(-1)
		dist = -dist
	}
	return epaFace{a: a, b: b, c: c, normal: n, dist: dist}
}

func closestFace(faces []epaFace) int {
	best := -1
	bestDist := float32(1e30)
	for i, f := range faces {
		if f.dist < bestDist {
			bestDist = f.dist
			best = i
		}
	}
	return best
}

// expandPolytope removes faces visible from the new vertex and patches
// the resulting hole with a fan of new faces connecting the horizon
// edges to the new vertex (the standard incremental-hull EPA step).
func expandPolytope(faces []epaFace, verts []gjkVertex, newIdx int) []epaFace {
	type edge struct{ a, b int }
	horizon := map[edge]int{}
	var order []edge
	kept := make([]epaFace, 0, len(faces))

	for _, f := range faces {
		visible := f.normal.Dot(verts[newIdx].w.Sub(verts[f.a].w)) > 0
		if !visible {
			kept = append(kept, f)
			continue
		}
		for _, e := range [][2]int{{f.a, f.b}, {f.b, f.c}, {f.c, f.a}} {
			key := edge{e[0], e[1]}
			if _, seen := horizon[key]; !seen {
				order = append(order, key)
			}
			horizon[key]++
		}
	}

	// Iterate edges in first-seen order (deterministic: faces/order are
	// built from the slice above, never from map ranging) rather than
	// ranging over horizon directly, so a distance tie in the next
	// closestFace call can never depend on map iteration order.
	for _, e := range order {
		if horizon[e] != 1 {
			continue
		}
		if _, opposite := horizon[edge{e.b, e.a}]; opposite {
			continue
		}
		kept = append(kept, makeFace(verts, e.a, e.b, newIdx))
	}
	return kept
}
