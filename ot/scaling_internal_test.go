package ot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineage/matrix"
)

// Weak duality holds for any potentials and the gap closes as scaling converges.
func TestKernelGap_WeakDualityAndConvergence(t *testing.T) {
	c, err := matrix.NewFromRows([][]float64{
		{0.0, 0.8, 1.5},
		{0.9, 0.1, 0.7},
	})
	require.NoError(t, err)
	in, err := prepare(Problem{Cost: c, ElapsedDays: 1, GrowthRate: []float64{1, 1.5}})
	require.NoError(t, err)
	p, q, err := in.marginals(in.growth)
	require.NoError(t, err)

	k := newKernel(in, p, q)
	pot := newPotentials(in.m, in.n)

	k.update(pot, 1, 1, 0.1)
	primal, dual, early := k.gap(pot, 1, 1, 0.1)
	assert.GreaterOrEqual(t, primal, dual-1e-12)

	for it := 0; it < 2000; it++ {
		k.update(pot, 1, 1, 0.1)
	}
	primal, dual, late := k.gap(pot, 1, 1, 0.1)
	assert.GreaterOrEqual(t, primal, dual-1e-12)
	assert.Less(t, late, 1e-8)
	assert.Less(t, late, early)
}

// Zero-prior rows and columns carry no mass and do not poison the potentials.
func TestKernel_ZeroMarginals(t *testing.T) {
	c, err := matrix.NewFromRows([][]float64{
		{0.2, 0.4},
		{0.3, 0.1},
	})
	require.NoError(t, err)
	in, err := prepare(Problem{
		Cost:        c,
		ElapsedDays: 1,
		SourcePrior: []float64{1, 0},
		TargetPrior: []float64{0, 1},
	})
	require.NoError(t, err)
	p, q, err := in.marginals(in.growth)
	require.NoError(t, err)

	k := newKernel(in, p, q)
	pot := newPotentials(in.m, in.n)
	for it := 0; it < 50; it++ {
		k.update(pot, 1, 1, 0.1)
	}
	plan := k.plan(pot, 0.1)
	assert.Zero(t, plan[1*2+0], "zero-prior row")
	assert.Zero(t, plan[1*2+1], "zero-prior row")
	assert.Zero(t, plan[0*2+0], "zero-prior column")
	assert.Greater(t, plan[0*2+1], 0.0)

	_, _, rel := k.gap(pot, 1, 1, 0.1)
	assert.False(t, rel != rel, "gap must not be NaN")
}
