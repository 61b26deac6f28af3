package cluster

import (
	"fmt"

	"github.com/katalvlaran/lineage/transport"
)

// Summary is the cluster-level view of a series of transport maps.
type Summary struct {
	Map     *transport.Map   // time-weighted cluster transition map
	PerTime []*transport.Map // ByCluster of each input map, in input order
	Weights *WeightTable
}

// Summarize collapses every map by cluster and averages them over time,
// weighting each column by the cluster's presence among that map's columns.
// A nil clusterIDs means every cluster of the labeling, sorted.
//
// Implementation:
//   - Stage 1: Weights over the union of all row and column ids.
//   - Stage 2: ByCluster for each map.
//   - Stage 3: WeightedAverage with the per-time weights.
func Summarize(maps []*transport.Map, l Labeling, clusterIDs []string) (*Summary, error) {
	if len(maps) == 0 {
		return nil, fmt.Errorf("%w: no maps", ErrInvalidInput)
	}
	if clusterIDs == nil {
		clusterIDs = l.Clusters()
	}

	var all []string
	columns := make([][]string, len(maps))
	for t, m := range maps {
		if m == nil {
			return nil, fmt.Errorf("%w: map %d is nil", ErrInvalidInput, t)
		}
		columns[t] = m.ColIDs()
		all = append(all, m.RowIDs()...)
		all = append(all, columns[t]...)
	}
	w, err := Weights(all, columns, l, clusterIDs)
	if err != nil {
		return nil, err
	}

	perTime := make([]*transport.Map, len(maps))
	for t, m := range maps {
		if perTime[t], err = ByCluster(m, l, clusterIDs); err != nil {
			return nil, fmt.Errorf("map %d: %w", t, err)
		}
	}
	avg, err := WeightedAverage(perTime, w.ByTime)
	if err != nil {
		return nil, err
	}

	return &Summary{Map: avg, PerTime: perTime, Weights: w}, nil
}
