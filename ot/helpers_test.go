package ot_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/transport"
)

// Fixed point clouds in [0,1]^3 standing in for two snapshots.
var (
	earlier = []cost.Unit{
		{ID: "e0", Features: []float64{0.1, 0.2, 0.3}},
		{ID: "e1", Features: []float64{0.8, 0.6, 0.4}},
	}
	later = []cost.Unit{
		{ID: "l0", Features: []float64{0.15, 0.25, 0.3}},
		{ID: "l1", Features: []float64{0.7, 0.7, 0.5}},
		{ID: "l2", Features: []float64{0.4, 0.1, 0.9}},
		{ID: "l3", Features: []float64{0.9, 0.2, 0.1}},
	}
)

// mustCost builds the squared-euclidean cost between two unit sets.
func mustCost(t *testing.T, src, dst []cost.Unit) *matrix.Dense {
	t.Helper()
	c, err := cost.SquaredEuclidean(src, dst)
	require.NoError(t, err)

	return c
}

// grid returns k units on a deterministic curve in [0,1]^2.
func grid(prefix string, k int, phase float64) []cost.Unit {
	out := make([]cost.Unit, k)
	for i := range out {
		x := float64(i) / float64(k)
		out[i] = cost.Unit{
			ID:       prefix + string(rune('a'+i)),
			Features: []float64{x, math.Sin(3*x + phase)},
			Growth:   1 + 0.1*float64(i%3),
		}
	}

	return out
}

// rowEntropySum returns Σ_i H(row_i / ‖row_i‖₁) in nats.
func rowEntropySum(t *testing.T, m *transport.Map) float64 {
	t.Helper()
	normed, _, err := matrix.NormalizeRowsL1(m.Dense())
	require.NoError(t, err)
	var h float64
	normed.Do(func(_, _ int, v float64) bool {
		if v > 0 {
			h -= v * math.Log(v)
		}
		return true
	})

	return h
}
