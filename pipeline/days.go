package pipeline

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lineage/cost"
)

// Pair is one consecutive (source, target) day pair.
type Pair struct {
	Source float64
	Target float64
}

// GroupByDay buckets units by Day, keeping input order inside a day, and
// returns the sorted distinct days. Ids must be unique within a day.
func GroupByDay(units []cost.Unit) ([]float64, map[float64][]cost.Unit, error) {
	byDay := make(map[float64][]cost.Unit)
	seen := make(map[float64]map[string]struct{})
	for _, u := range units {
		ids, ok := seen[u.Day]
		if !ok {
			ids = make(map[string]struct{})
			seen[u.Day] = ids
		}
		if _, dup := ids[u.ID]; dup {
			return nil, nil, fmt.Errorf("%w: unit %q appears twice on day %g", ErrInvalidInput, u.ID, u.Day)
		}
		ids[u.ID] = struct{}{}
		byDay[u.Day] = append(byDay[u.Day], u)
	}

	days := make([]float64, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Float64s(days)

	return days, byDay, nil
}

// Pairs returns the consecutive pairs of sorted days.
func Pairs(days []float64) []Pair {
	if len(days) < 2 {
		return nil
	}
	out := make([]Pair, 0, len(days)-1)
	for k := 1; k < len(days); k++ {
		out = append(out, Pair{Source: days[k-1], Target: days[k]})
	}

	return out
}

// filterDays keeps the days listed in keep; nil keep keeps everything.
func filterDays(days []float64, keep []float64) []float64 {
	if keep == nil {
		return days
	}
	want := make(map[float64]struct{}, len(keep))
	for _, d := range keep {
		want[d] = struct{}{}
	}
	out := days[:0:0]
	for _, d := range days {
		if _, ok := want[d]; ok {
			out = append(out, d)
		}
	}

	return out
}

// growthOf returns the growth prior of each unit, reading 0 as 1.
func growthOf(units []cost.Unit) []float64 {
	g := cost.GrowthRates(units)
	for i, v := range g {
		if v == 0 {
			g[i] = 1
		}
	}

	return g
}
