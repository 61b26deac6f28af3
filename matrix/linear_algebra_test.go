// SPDX-License-Identifier: MIT
// Package matrix_test contains unit tests for the linear-algebra kernels.
package matrix_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineage/matrix"
)

func TestAdd_Succeeds(t *testing.T) {
	a := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})
	b := MustRows(t, [][]float64{{6, 5, 4}, {3, 2, 1}})
	want := MustRows(t, [][]float64{{7, 7, 7}, {7, 7, 7}})

	sum, err := matrix.Add(a, b)
	require.NoError(t, err)
	requireClose(t, want, sum)

	// fallback path agrees with the fast path
	sum, err = matrix.Add(hide{a}, b)
	require.NoError(t, err)
	requireClose(t, want, sum)
}

func TestAdd_DimensionMismatch(t *testing.T) {
	a, _ := matrix.NewDense(2, 2)
	b, _ := matrix.NewDense(3, 2)
	_, err := matrix.Add(a, b)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	_, err = matrix.Add(nil, b)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

func TestScale(t *testing.T) {
	a := MustRows(t, [][]float64{{1, -2}, {0, 4}})
	want := MustRows(t, [][]float64{{0.5, -1}, {0, 2}})

	for name, in := range map[string]matrix.Matrix{"dense": a, "fallback": hide{a}} {
		t.Run(name, func(t *testing.T) {
			got, err := matrix.Scale(in, 0.5)
			require.NoError(t, err)
			requireClose(t, want, got)
		})
	}
	assert.Equal(t, 1.0, MustAt(t, a, 0, 0), "Scale must not mutate its input")
}

func TestMul(t *testing.T) {
	a := MustRows(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	b := MustRows(t, [][]float64{{1, 0, 2}, {0, 1, 3}})
	want := MustRows(t, [][]float64{{1, 2, 8}, {3, 4, 18}, {5, 6, 28}})

	got, err := matrix.Mul(a, b)
	require.NoError(t, err)
	requireClose(t, want, got)

	got, err = matrix.Mul(hide{a}, hide{b})
	require.NoError(t, err)
	requireClose(t, want, got)

	_, err = matrix.Mul(a, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestMatVecVecMat(t *testing.T) {
	a := MustRows(t, [][]float64{{1, 2, 3}, {4, 5, 6}})

	y, err := matrix.MatVec(a, []float64{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10}, y)

	y, err = matrix.MatVec(hide{a}, []float64{1, 0, 1})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 10}, y)

	z, err := matrix.VecMat([]float64{1, 2}, a)
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 12, 15}, z)

	z, err = matrix.VecMat([]float64{1, 2}, hide{a})
	require.NoError(t, err)
	assert.Equal(t, []float64{9, 12, 15}, z)

	_, err = matrix.MatVec(a, []float64{1, 2})
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.VecMat([]float64{1, 2, 3}, a)
	require.ErrorIs(t, err, matrix.ErrDimensionMismatch)
	_, err = matrix.VecMat(nil, a)
	require.ErrorIs(t, err, matrix.ErrNilMatrix)
}

// VecMat through a product equals VecMat applied twice: x·(A·B) = (x·A)·B.
func TestVecMat_Associativity(t *testing.T) {
	a := MustRows(t, [][]float64{{0.2, 0.8}, {0.5, 0.5}})
	b := MustRows(t, [][]float64{{1, 0, 0.5}, {0.25, 0.25, 0.5}})
	x := []float64{1, 3}

	ab, err := matrix.Mul(a, b)
	require.NoError(t, err)
	direct, err := matrix.VecMat(x, ab)
	require.NoError(t, err)

	step, err := matrix.VecMat(x, a)
	require.NoError(t, err)
	chained, err := matrix.VecMat(step, b)
	require.NoError(t, err)

	assert.InDeltaSlice(t, direct, chained, 1e-12)
}
