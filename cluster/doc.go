// Package cluster collapses unit-level transport maps into cluster-level
// summaries.
//
// Weights gives the fraction of each cluster's observed membership present at
// each time; ByCluster sums a map over (row cluster, column cluster) blocks;
// WeightedAverage combines several cluster-indexed maps column by column.
// Summarize chains the three over a whole series of maps.
package cluster

import "errors"

// Sentinel errors returned by the aggregator.
var (
	// ErrInvalidInput indicates empty or duplicate cluster ids, or no maps.
	ErrInvalidInput = errors.New("cluster: invalid input")

	// ErrShapeMismatch indicates maps with different id sets, or a weight
	// table that does not match the maps.
	ErrShapeMismatch = errors.New("cluster: shape mismatch")

	// ErrUnknownCluster indicates a requested cluster id that no unit carries.
	ErrUnknownCluster = errors.New("cluster: unknown cluster")
)
