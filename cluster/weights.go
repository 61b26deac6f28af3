package cluster

// WeightTable holds time-varying cluster presence weights.
type WeightTable struct {
	ClusterIDs []string
	Sizes      []int       // members of each cluster across all times
	ByTime     [][]float64 // ByTime[t][c]: share of cluster c present at time t
}

// Weights computes cluster sizes and per-time presence weights.
//
// Sizes[c] counts the distinct ids in allIDs labeled c. ByTime[t][c] is the
// number of distinct ids in columnIDsByTime[t] labeled c divided by Sizes[c];
// a cluster with no member at all gets weight 0.
//
// Errors:
//   - ErrInvalidInput for empty or duplicate cluster ids.
//   - ErrUnknownCluster for a cluster id no unit carries.
//
// Complexity:
//   - O(|allIDs| + Σ_t |columnIDsByTime[t]|).
func Weights(allIDs []string, columnIDsByTime [][]string, l Labeling, clusterIDs []string) (*WeightTable, error) {
	idx, err := l.index(clusterIDs)
	if err != nil {
		return nil, err
	}

	k := len(clusterIDs)
	sizes := countByCluster(allIDs, l, idx, k)
	byTime := make([][]float64, len(columnIDsByTime))
	for t, ids := range columnIDsByTime {
		counts := countByCluster(ids, l, idx, k)
		row := make([]float64, k)
		for c := 0; c < k; c++ {
			if sizes[c] > 0 {
				row[c] = float64(counts[c]) / float64(sizes[c])
			}
		}
		byTime[t] = row
	}

	return &WeightTable{
		ClusterIDs: append([]string(nil), clusterIDs...),
		Sizes:      sizes,
		ByTime:     byTime,
	}, nil
}

// countByCluster counts distinct ids per requested cluster.
func countByCluster(ids []string, l Labeling, idx map[string]int, k int) []int {
	counts := make([]int, k)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		label, ok := l[id]
		if !ok {
			continue
		}
		if c, ok := idx[label]; ok {
			counts[c]++
		}
	}

	return counts
}
