package trajectory

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lineage/transport"
)

// Propagate computes the ancestors and descendants of group at seedDay.
//
// Implementation:
//   - Stage 1: clamp the requested window to the chain's first and last day.
//   - Stage 2: build the seed indicator on each side of the seed day:
//     the rows of the map leaving seedDay and the columns of the map entering it.
//   - Stage 3: forward, push the current weights through each map starting at the
//     current day until the window end; backward, pull them through each map
//     ending at the current day until the window start.
//
// Errors:
//   - ErrInvalidInput, ErrMissingMap, ErrUnknownSeed (see package doc).
//
// Complexity:
//   - O(Σ m_k·n_k) over the maps walked.
func Propagate(group []string, seedDay float64, chain *transport.Chain, opts ...Option) (*Result, error) {
	if chain == nil || chain.Len() == 0 {
		return nil, fmt.Errorf("%w: empty chain", ErrInvalidInput)
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%w: empty seed group", ErrInvalidInput)
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	days := chain.Days()
	from, to := max(o.From, days[0]), min(o.To, days[len(days)-1])

	next, hasNext := chain.From(seedDay)
	prev, hasPrev := chain.To(seedDay)
	if !hasNext && !hasPrev {
		return nil, fmt.Errorf("%w: no map starts or ends at seed day %g", ErrMissingMap, seedDay)
	}

	seeds := make(map[string]struct{}, len(group))
	found := make(map[string]struct{}, len(group))
	for _, id := range group {
		seeds[id] = struct{}{}
		if hasNext {
			if _, ok := next.RowIndex(id); ok {
				found[id] = struct{}{}
			}
		}
		if hasPrev {
			if _, ok := prev.ColIndex(id); ok {
				found[id] = struct{}{}
			}
		}
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: day %g, group %v", ErrUnknownSeed, seedDay, group)
	}

	res := &Result{
		SeedDay:     seedDay,
		Seeds:       make([]string, 0, len(found)),
		Ancestors:   make(map[float64]Weights),
		Descendants: make(map[float64]Weights),
	}
	for id := range found {
		res.Seeds = append(res.Seeds, id)
	}
	sort.Strings(res.Seeds)

	indicator := make(Weights, len(seeds))
	for id := range seeds {
		indicator[id] = 1
	}

	if err := forward(chain, seedDay, to, indicator, res.Descendants); err != nil {
		return nil, err
	}
	if err := backward(chain, seedDay, from, indicator, res.Ancestors); err != nil {
		return nil, err
	}

	return res, nil
}

// forward pushes w through consecutive maps from day until the window end.
func forward(chain *transport.Chain, day, to float64, w Weights, out map[float64]Weights) error {
	for day < to {
		m, ok := chain.From(day)
		if !ok {
			return fmt.Errorf("%w: no map from day %g toward day %g", ErrMissingMap, day, to)
		}
		if m.TargetDay() > to {
			return nil
		}
		x := align(w, m.RowIDs())
		y, err := m.Push(x)
		if err != nil {
			return err
		}
		w = label(y, m.ColIDs())
		day = m.TargetDay()
		out[day] = w
	}

	return nil
}

// backward pulls w through consecutive maps from day until the window start.
func backward(chain *transport.Chain, day, from float64, w Weights, out map[float64]Weights) error {
	for day > from {
		m, ok := chain.To(day)
		if !ok {
			return fmt.Errorf("%w: no map into day %g from day %g", ErrMissingMap, day, from)
		}
		if m.SourceDay() < from {
			return nil
		}
		x := align(w, m.ColIDs())
		y, err := m.Pull(x)
		if err != nil {
			return err
		}
		w = label(y, m.RowIDs())
		day = m.SourceDay()
		out[day] = w
	}

	return nil
}

// align lays w out along ids; ids absent from w get 0.
func align(w Weights, ids []string) []float64 {
	x := make([]float64, len(ids))
	for k, id := range ids {
		x[k] = w[id]
	}

	return x
}

// label pairs a vector with its ids.
func label(y []float64, ids []string) Weights {
	w := make(Weights, len(ids))
	for k, id := range ids {
		w[id] = y[k]
	}

	return w
}

// PropagateGroups runs Propagate for every named group. Groups are processed
// in name order and the first failure is returned with the group name.
func PropagateGroups(groups map[string][]string, seedDay float64, chain *transport.Chain, opts ...Option) (map[string]*Result, error) {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]*Result, len(groups))
	for _, name := range names {
		r, err := Propagate(groups[name], seedDay, chain, opts...)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", name, err)
		}
		out[name] = r
	}

	return out, nil
}
