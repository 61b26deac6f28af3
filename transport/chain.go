package transport

import (
	"fmt"
	"sort"
)

// Chain is an ordered collection of maps indexed by source and target day.
// Maps are sorted by source day; gaps between consecutive maps are allowed.
type Chain struct {
	maps     []*Map
	bySource map[float64]*Map
	byTarget map[float64]*Map
}

// NewChain orders maps by source day and indexes them.
//
// Errors:
//   - ErrInvalidChain for nil maps, TargetDay ≤ SourceDay, or two maps
//     sharing a source day or a target day.
func NewChain(maps ...*Map) (*Chain, error) {
	c := &Chain{
		maps:     make([]*Map, 0, len(maps)),
		bySource: make(map[float64]*Map, len(maps)),
		byTarget: make(map[float64]*Map, len(maps)),
	}
	for k, m := range maps {
		if m == nil {
			return nil, fmt.Errorf("%w: map %d is nil", ErrInvalidChain, k)
		}
		if m.targetDay <= m.sourceDay {
			return nil, fmt.Errorf("%w: map %d goes from day %g to day %g", ErrInvalidChain, k, m.sourceDay, m.targetDay)
		}
		if _, dup := c.bySource[m.sourceDay]; dup {
			return nil, fmt.Errorf("%w: two maps start at day %g", ErrInvalidChain, m.sourceDay)
		}
		if _, dup := c.byTarget[m.targetDay]; dup {
			return nil, fmt.Errorf("%w: two maps end at day %g", ErrInvalidChain, m.targetDay)
		}
		c.bySource[m.sourceDay] = m
		c.byTarget[m.targetDay] = m
		c.maps = append(c.maps, m)
	}
	sort.Slice(c.maps, func(a, b int) bool { return c.maps[a].sourceDay < c.maps[b].sourceDay })

	return c, nil
}

// Len returns the number of maps.
func (c *Chain) Len() int { return len(c.maps) }

// Maps returns the maps in increasing source-day order.
func (c *Chain) Maps() []*Map { return append([]*Map(nil), c.maps...) }

// From returns the map whose source day is day.
func (c *Chain) From(day float64) (*Map, bool) {
	m, ok := c.bySource[day]
	return m, ok
}

// To returns the map whose target day is day.
func (c *Chain) To(day float64) (*Map, bool) {
	m, ok := c.byTarget[day]
	return m, ok
}

// Days returns every distinct source and target day in increasing order.
func (c *Chain) Days() []float64 {
	seen := make(map[float64]struct{}, len(c.maps)+1)
	days := make([]float64, 0, len(c.maps)+1)
	for _, m := range c.maps {
		for _, d := range [2]float64{m.sourceDay, m.targetDay} {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				days = append(days, d)
			}
		}
	}
	sort.Float64s(days)

	return days
}

// Contiguous reports whether every map's target day is the next map's source day.
func (c *Chain) Contiguous() bool {
	for k := 1; k < len(c.maps); k++ {
		if c.maps[k-1].targetDay != c.maps[k].sourceDay {
			return false
		}
	}

	return true
}
