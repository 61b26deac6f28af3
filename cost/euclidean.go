package cost

import (
	"fmt"

	"github.com/katalvlaran/lineage/matrix"
)

// SquaredEuclidean returns C[i,j] = Σ_k (src[i].Features[k] - dst[j].Features[k])².
//
// Implementation:
//   - Stage 1: Validate both sets are non-empty and share one positive feature dimension.
//   - Stage 2: Fill a row-major buffer in i→j→k order and hand it to matrix.NewFromSlice.
//
// Errors:
//   - ErrNoUnits, ErrFeatureMismatch; matrix.ErrNaNInf for non-finite features.
//
// Complexity:
//   - Time O(m·n·d), Space O(m·n).
func SquaredEuclidean(src, dst []Unit) (*matrix.Dense, error) {
	if len(src) == 0 || len(dst) == 0 {
		return nil, ErrNoUnits
	}
	dim := len(src[0].Features)
	if dim == 0 {
		return nil, fmt.Errorf("%w: unit %q has no features", ErrFeatureMismatch, src[0].ID)
	}
	for _, set := range [2][]Unit{src, dst} {
		for i := range set {
			if len(set[i].Features) != dim {
				return nil, fmt.Errorf("%w: unit %q has %d features, want %d",
					ErrFeatureMismatch, set[i].ID, len(set[i].Features), dim)
			}
		}
	}

	m, n := len(src), len(dst)
	buf := make([]float64, m*n)
	var (
		i, j, k int
		s, diff float64
		a, b    []float64
	)
	for i = 0; i < m; i++ {
		a = src[i].Features
		for j = 0; j < n; j++ {
			b = dst[j].Features
			s = 0
			for k = 0; k < dim; k++ {
				diff = a[k] - b[k]
				s += diff * diff
			}
			buf[i*n+j] = s
		}
	}

	return matrix.NewFromSlice(m, n, buf)
}

// NormalizeByMedian returns c / median(c).
// Errors: ErrDegenerate when the median is zero; matrix errors otherwise.
func NormalizeByMedian(c matrix.Matrix) (*matrix.Dense, error) {
	med, err := matrix.Median(c)
	if err != nil {
		return nil, err
	}
	if med == 0 {
		return nil, ErrDegenerate
	}

	return matrix.Scale(c, 1/med)
}
