package cluster

import (
	"fmt"
	"sort"

	"github.com/katalvlaran/lineage/cost"
)

// Labeling assigns unit ids to cluster ids. Units absent from the labeling
// belong to no cluster and are skipped by every aggregate.
type Labeling map[string]string

// FromUnits builds a Labeling from the Cluster field of units. Units without
// a cluster are left out. The same id may appear on several days but must
// carry one cluster throughout.
func FromUnits(units []cost.Unit) (Labeling, error) {
	l := make(Labeling)
	for _, u := range units {
		if u.Cluster == "" {
			continue
		}
		if prev, ok := l[u.ID]; ok && prev != u.Cluster {
			return nil, fmt.Errorf("%w: unit %q labeled %q and %q", ErrInvalidInput, u.ID, prev, u.Cluster)
		}
		l[u.ID] = u.Cluster
	}

	return l, nil
}

// Clusters returns the distinct cluster ids in sorted order.
func (l Labeling) Clusters() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, c := range l {
		if _, ok := seen[c]; !ok {
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Strings(out)

	return out
}

// Members returns the unit ids labeled c, sorted.
func (l Labeling) Members(c string) []string {
	out := make([]string, 0)
	for id, lc := range l {
		if lc == c {
			out = append(out, id)
		}
	}
	sort.Strings(out)

	return out
}

// index validates clusterIDs against the labeling and maps each to its position.
func (l Labeling) index(clusterIDs []string) (map[string]int, error) {
	if len(clusterIDs) == 0 {
		return nil, fmt.Errorf("%w: no cluster ids", ErrInvalidInput)
	}
	known := make(map[string]struct{})
	for _, c := range l {
		known[c] = struct{}{}
	}
	idx := make(map[string]int, len(clusterIDs))
	for k, c := range clusterIDs {
		if _, dup := idx[c]; dup {
			return nil, fmt.Errorf("%w: duplicate cluster id %q", ErrInvalidInput, c)
		}
		if _, ok := known[c]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCluster, c)
		}
		idx[c] = k
	}

	return idx, nil
}
