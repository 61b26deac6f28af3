// Package cost builds the pairwise cost matrices consumed by the solver.
//
// A Unit is one observed item: an id, the day it was observed, a feature
// vector, a growth-rate prior and an optional cluster label. SquaredEuclidean
// compares the feature vectors of two unit sets; NormalizeByMedian rescales a
// cost matrix by its median so magnitudes stay comparable across day pairs.
//
// Complexity:
//
//	SquaredEuclidean O(m·n·d) for m sources, n targets and d features.
//	NormalizeByMedian O(m·n·log(m·n)).
package cost

import "errors"

// Sentinel errors returned by the cost package.
var (
	// ErrNoUnits indicates an empty source or target unit set.
	ErrNoUnits = errors.New("cost: no units")

	// ErrFeatureMismatch indicates feature vectors of differing or zero length.
	ErrFeatureMismatch = errors.New("cost: feature dimension mismatch")

	// ErrDegenerate indicates a cost matrix whose median is zero, which cannot
	// be used as a normalization scale.
	ErrDegenerate = errors.New("cost: zero median")
)
