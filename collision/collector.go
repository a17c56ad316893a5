package collision

// Collector receives hits from a cast or collide query in the order the
// query discovers them. Callers that only want the nearest hit return a
// tightening EarlyOutFraction; callers that want every hit return
// maxFraction (1e30), which no real fraction exceeds.
type Collector interface {
	// AddHit reports one hit and its fraction along the cast (0 for pure
	// collide queries that have no notion of a fraction).
	AddHit(fraction float32, hit interface{})

	// EarlyOutFraction returns the fraction beyond which further hits
	// cannot possibly matter, letting casts skip whole BVH subtrees.
	EarlyOutFraction() float32
}

// ClosestHitCollector keeps only the hit with the smallest fraction.
type ClosestHitCollector struct {
	hasHit   bool
	fraction float32
	Hit      interface{}
}

func NewClosestHitCollector() *ClosestHitCollector {
	return &ClosestHitCollector{fraction: maxFraction}
}

func (c *ClosestHitCollector) AddHit(fraction float32, hit interface{}) {
	if !c.hasHit || fraction < c.fraction {
		c.hasHit = true
		c.fraction = fraction
		c.Hit = hit
	}
}

func (c *ClosestHitCollector) EarlyOutFraction() float32 {
	if c.hasHit {
		return c.fraction
	}
	return maxFraction
}

func (c *ClosestHitCollector) HasHit() bool { return c.hasHit }

// AnyHitCollector stops at the first hit reported, useful for boolean
// overlap/occlusion tests that don't care which hit it was.
type AnyHitCollector struct {
	hasHit bool
	Hit    interface{}
}

func (c *AnyHitCollector) AddHit(fraction float32, hit interface{}) {
	if !c.hasHit {
		c.hasHit = true
		c.Hit = hit
	}
}

func (c *AnyHitCollector) EarlyOutFraction() float32 {
	if c.hasHit {
		return 0
	}
	return maxFraction
}

func (c *AnyHitCollector) HasHit() bool { return c.hasHit }

// AllHitsCollector accumulates every hit reported, unordered.
type AllHitsCollector struct {
	Hits []interface{}
}

func (c *AllHitsCollector) AddHit(fraction float32, hit interface{}) {
	c.Hits = append(c.Hits, hit)
}

func (c *AllHitsCollector) EarlyOutFraction() float32 { return maxFraction }

const maxFraction = float32(1e30)

// shouldEarlyOut reports whether fraction is already beyond what collector
// cares about, letting a traversal prune the remaining subtree.
func shouldEarlyOut(collector Collector, fraction float32) bool {
	return fraction > collector.EarlyOutFraction()
}
