// Package island partitions the active bodies into independent
// simulation units by contact and constraint edges (spec.md §4.7),
// grounded structurally on the teacher's Simulation.internalStep
// (experimental/physics/simulation.go), which collects all contact and
// constraint equations into one flat solver pass per step; here that
// flat pass is first split into islands so the solver package can solve
// (and, by construction, could parallelize) each independently.
package island

import (
	"sort"

	"github.com/ironvale/physics3d/body"
	"github.com/ironvale/physics3d/constraint"
	"github.com/ironvale/physics3d/contact"
)

// BodyLookup resolves a body.ID to its live *body.Body.
type BodyLookup interface {
	Body(id body.ID) *body.Body
}

// Island is a maximal set of active bodies connected by contacts or
// constraints, solved independently (spec.md §4.7/GLOSSARY).
type Island struct {
	Bodies      []body.ID
	Contacts    []*contact.Contact
	Constraints []constraint.Constraint
	Asleep      bool
}

// unionFind is a standard disjoint-set structure keyed by slice index,
// with path compression and union-by-rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n), rank: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// Build partitions active (non-static) bodies into islands using the
// given contacts and enabled constraints, per spec.md §4.7: "each
// contact whose two bodies are both non-static, and each enabled
// constraint whose two bodies are both non-static, unions the
// endpoints. Static bodies are not merged across; they act as sinks."
func Build(active []body.ID, bodies BodyLookup, contacts *contact.Cache, constraints []constraint.Constraint) []*Island {
	indexOf := make(map[body.ID]int, len(active))
	for i, id := range active {
		indexOf[id] = i
	}
	uf := newUnionFind(len(active))

	isNonStatic := func(id body.ID) bool {
		b := bodies.Body(id)
		return b != nil && b.MotionType != body.Static
	}

	contacts.ForEach(func(ct *contact.Contact) {
		ia, okA := indexOf[ct.BodyA]
		ib, okB := indexOf[ct.BodyB]
		if okA && okB && isNonStatic(ct.BodyA) && isNonStatic(ct.BodyB) {
			uf.union(ia, ib)
		}
	})
	for _, c := range constraints {
		if !c.Enabled() {
			continue
		}
		ia, okA := indexOf[c.BodyA()]
		ib, okB := indexOf[c.BodyB()]
		if okA && okB && isNonStatic(c.BodyA()) && isNonStatic(c.BodyB()) {
			uf.union(ia, ib)
		}
	}

	byRoot := make(map[int]*Island)
	order := make([]int, 0, len(active))
	for i, id := range active {
		if !isNonStatic(id) {
			continue // static bodies never own an island themselves
		}
		root := uf.find(i)
		isl, ok := byRoot[root]
		if !ok {
			isl = &Island{}
			byRoot[root] = isl
			order = append(order, root)
		}
		isl.Bodies = append(isl.Bodies, id)
	}

	// Static bodies attach as sinks to every island touching them, per
	// spec.md §4.7; a static body never merges islands together but its
	// contacts/constraints still belong to whichever island(s) touch it.
	contacts.ForEach(func(ct *contact.Contact) {
		attachContact(ct, indexOf, uf, byRoot, bodies)
	})
	for _, c := range constraints {
		if !c.Enabled() {
			continue
		}
		attachConstraint(c, indexOf, uf, byRoot, bodies)
	}

	sort.Ints(order)
	islands := make([]*Island, 0, len(order))
	for _, root := range order {
		isl := byRoot[root]
		sortBodyIDs(isl.Bodies)
		sortContacts(isl.Contacts)
		sortConstraints(isl.Constraints)
		islands = append(islands, isl)
	}
	return islands
}

func attachContact(ct *contact.Contact, indexOf map[body.ID]int, uf *unionFind, byRoot map[int]*Island, bodies BodyLookup) {
	roots := islandRootsFor(ct.BodyA, ct.BodyB, indexOf, uf, bodies)
	for _, root := range roots {
		if isl, ok := byRoot[root]; ok {
			isl.Contacts = append(isl.Contacts, ct)
		}
	}
}

func attachConstraint(c constraint.Constraint, indexOf map[body.ID]int, uf *unionFind, byRoot map[int]*Island, bodies BodyLookup) {
	roots := islandRootsFor(c.BodyA(), c.BodyB(), indexOf, uf, bodies)
	for _, root := range roots {
		if isl, ok := byRoot[root]; ok {
			isl.Constraints = append(isl.Constraints, c)
		}
	}
}

// islandRootsFor returns the distinct island roots a body pair belongs
// to: both bodies' roots if non-static and active, or just the one
// non-static side's root if the other is a static sink.
func islandRootsFor(a, b body.ID, indexOf map[body.ID]int, uf *unionFind, bodies BodyLookup) []int {
	var roots []int
	seen := map[int]bool{}
	add := func(id body.ID) {
		idx, ok := indexOf[id]
		if !ok {
			return
		}
		bd := bodies.Body(id)
		if bd == nil || bd.MotionType == body.Static {
			return
		}
		root := uf.find(idx)
		if !seen[root] {
			seen[root] = true
			roots = append(roots, root)
		}
	}
	add(a)
	add(b)
	return roots
}

func sortBodyIDs(ids []body.ID) {
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Index() != ids[j].Index() {
			return ids[i].Index() < ids[j].Index()
		}
		return ids[i].Generation() < ids[j].Generation()
	})
}

func sortContacts(cs []*contact.Contact) {
	sort.Slice(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		if a.BodyA.Index() != b.BodyA.Index() {
			return a.BodyA.Index() < b.BodyA.Index()
		}
		return a.BodyB.Index() < b.BodyB.Index()
	})
}

func sortConstraints(cs []constraint.Constraint) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Priority() < cs[j].Priority()
	})
}
