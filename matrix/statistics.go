// SPDX-License-Identifier: MIT
// Package matrix: reductions and row normalization.
//
// Purpose:
//   - Sum / RowSums / ColSums give the total mass and the two marginals of a
//     transport map.
//   - Median feeds cost normalization.
//   - NormalizeRowsL1 turns each row into a distribution (entropy / perplexity).
//
// Determinism: fixed i→j accumulation order for every reduction.

package matrix

import (
	"math"
	"sort"
)

const (
	opSum             = "Sum"
	opRowSums         = "RowSums"
	opColSums         = "ColSums"
	opMedian          = "Median"
	opNormalizeRowsL1 = "NormalizeRowsL1"
)

// Sum returns Σ_ij m[i,j].
// Errors: ErrNilMatrix. Complexity: O(r*c).
func Sum(m Matrix) (float64, error) {
	rs, err := RowSums(m)
	if err != nil {
		return 0, matrixErrorf(opSum, err)
	}
	var s float64
	for _, v := range rs {
		s += v
	}

	return s, nil
}

// RowSums returns the row marginal m·1 (len == Rows()).
// Errors: ErrNilMatrix. Complexity: O(r*c).
func RowSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opRowSums, err)
	}
	r, c := m.Rows(), m.Cols()
	out := make([]float64, r)

	var i, j int
	var s float64
	if d, ok := m.(*Dense); ok {
		var base int
		for i = 0; i < r; i++ {
			s = ZeroSum
			base = i * c
			for j = 0; j < c; j++ {
				s += d.data[base+j]
			}
			out[i] = s
		}

		return out, nil
	}

	var v float64
	var err error
	for i = 0; i < r; i++ {
		s = ZeroSum
		for j = 0; j < c; j++ {
			if v, err = m.At(i, j); err != nil {
				return nil, matrixErrorf(opRowSums, err)
			}
			s += v
		}
		out[i] = s
	}

	return out, nil
}

// ColSums returns the column marginal mᵀ·1 (len == Cols()).
// Errors: ErrNilMatrix. Complexity: O(r*c).
func ColSums(m Matrix) ([]float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return nil, matrixErrorf(opColSums, err)
	}
	ones := make([]float64, m.Rows())
	for i := range ones {
		ones[i] = 1
	}
	out, err := VecMat(ones, m)
	if err != nil {
		return nil, matrixErrorf(opColSums, err)
	}

	return out, nil
}

// Median returns the median of all entries of m (mean of the two middle
// values for an even count). NaN entries are rejected.
//
// Errors: ErrNilMatrix, ErrNaNInf.
// Complexity: O(r*c·log(r*c)) for the sort, Space O(r*c).
func Median(m Matrix) (float64, error) {
	if err := ValidateNotNil(m); err != nil {
		return 0, matrixErrorf(opMedian, err)
	}
	var vals []float64
	if d, ok := m.(*Dense); ok {
		vals = d.Values()
	} else {
		vals = make([]float64, 0, m.Rows()*m.Cols())
		var i, j int
		var v float64
		var err error
		for i = 0; i < m.Rows(); i++ {
			for j = 0; j < m.Cols(); j++ {
				if v, err = m.At(i, j); err != nil {
					return 0, matrixErrorf(opMedian, err)
				}
				vals = append(vals, v)
			}
		}
	}

	return medianOf(vals)
}

// medianOf sorts vals in place and returns the median.
func medianOf(vals []float64) (float64, error) {
	if len(vals) == 0 {
		return 0, matrixErrorf(opMedian, ErrEmpty)
	}
	for _, v := range vals {
		if math.IsNaN(v) {
			return 0, matrixErrorf(opMedian, ErrNaNInf)
		}
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2], nil
	}

	return 0.5 * (vals[n/2-1] + vals[n/2]), nil
}

// NormalizeRowsL1 scales each row to have L1-norm == 1 when possible and
// returns the original norms.
//
// Implementation:
//   - Stage 1: Validate X (non-nil).
//   - Stage 2: Compute per-row L1 norms deterministically.
//   - Stage 3: Build row scale factors (1/norm); for norm==0 use scale=1 to keep the row unchanged.
//   - Stage 4: Apply ScaleRows to produce a normalized copy.
//
// Behavior highlights:
//   - Degenerate rows (norm==0) are left unchanged (all-zero rows stay zero).
//
// Complexity:
//   - Time O(r*c), Space O(r*c) (+ O(r) norms + O(r) scales).
//
// AI-Hints:
//   - Row-normalizing a transport map gives per-cell descendant distributions.
func NormalizeRowsL1(X Matrix) (*Dense, []float64, error) {
	if err := ValidateNotNil(X); err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}
	r, c := X.Rows(), X.Cols()
	norms := make([]float64, r)

	var i, j int
	var s, v float64
	var err error
	for i = 0; i < r; i++ {
		s = ZeroSum
		for j = 0; j < c; j++ {
			if v, err = X.At(i, j); err != nil {
				return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
			}
			s += math.Abs(v)
		}
		norms[i] = s
	}

	scale := make([]float64, r)
	for i = 0; i < r; i++ {
		if norms[i] > 0 {
			scale[i] = 1.0 / norms[i]
		} else {
			scale[i] = 1.0
		}
	}

	Y, err := ScaleRows(X, scale)
	if err != nil {
		return nil, nil, matrixErrorf(opNormalizeRowsL1, err)
	}

	return Y, norms, nil
}
