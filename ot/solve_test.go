package ot_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/ot"
)

// plainSolve fixes λ and ε so the properties below isolate one parameter.
func plainSolve(lambda, eps float64) []ot.Option {
	return []ot.Option{
		ot.WithAdaptiveSearch(false),
		ot.WithLambda(lambda, lambda),
		ot.WithEpsilon(eps),
		ot.WithMethod(ot.MethodFixedIters),
		ot.WithScalingIter(250),
	}
}

func TestSolve_SelfTransportIsSymmetric(t *testing.T) {
	units := []cost.Unit{
		{ID: "a", Features: []float64{0.2, 0.5, 0.9}},
		{ID: "b", Features: []float64{0.7, 0.1, 0.4}},
	}
	m, err := ot.Solve(ot.Problem{
		Cost:        mustCost(t, units, units),
		RowIDs:      cost.IDs(units),
		ColIDs:      cost.IDs(units),
		ElapsedDays: 1,
	}, plainSolve(1, 0.1)...)
	require.NoError(t, err)

	aa, _ := m.Value("a", "a")
	bb, _ := m.Value("b", "b")
	ab, _ := m.Value("a", "b")
	ba, _ := m.Value("b", "a")
	assert.InDelta(t, aa, bb, 1e-12)
	assert.InDelta(t, ab, ba, 1e-12)
	assert.Greater(t, aa, ab, "staying put is cheaper than moving")
}

func TestSolve_TotalMassGrowsWithGrowthRate(t *testing.T) {
	c := mustCost(t, earlier, later)
	last := -1.0
	for _, g := range []float64{1, 2, 3} {
		m, err := ot.Solve(ot.Problem{
			Cost:        c,
			GrowthRate:  []float64{g, g},
			ElapsedDays: 1,
		}, plainSolve(1, 0.1)...)
		require.NoError(t, err)
		total := m.Total()
		assert.Greaterf(t, total, last, "growth %g", g)
		last = total
	}
}

func TestSolve_EntropyGrowsWithEpsilon(t *testing.T) {
	c := mustCost(t, earlier, later)
	last := -1.0
	for _, eps := range []float64{0.01, 0.1, 1} {
		m, err := ot.Solve(ot.Problem{Cost: c, ElapsedDays: 1},
			ot.WithAdaptiveSearch(false),
			ot.WithLambda(1, 1),
			ot.WithEpsilon(eps),
		)
		require.NoError(t, err)
		diag := m.Diagnostics()
		assert.Truef(t, diag.Converged, "epsilon %g", eps)
		assert.Less(t, diag.DualityGap, 1e-8)

		h := rowEntropySum(t, m)
		assert.Greaterf(t, h, last, "epsilon %g", eps)
		last = h
	}
}

func TestSolve_DiagnosticsAndMetadata(t *testing.T) {
	m, err := ot.Solve(ot.Problem{
		Cost:       mustCost(t, earlier, later),
		RowIDs:     cost.IDs(earlier),
		ColIDs:     cost.IDs(later),
		GrowthRate: []float64{1.2, 0.9},
		SourceDay:  2,
		TargetDay:  4,
	}, plainSolve(1, 0.1)...)
	require.NoError(t, err)

	assert.Equal(t, cost.IDs(earlier), m.RowIDs())
	assert.Equal(t, cost.IDs(later), m.ColIDs())
	assert.Equal(t, 2.0, m.SourceDay())
	assert.Equal(t, 4.0, m.TargetDay())

	diag := m.Diagnostics()
	assert.Equal(t, 0.1, diag.Epsilon)
	assert.Equal(t, 1.0, diag.Lambda1)
	assert.Equal(t, 1.0, diag.Lambda2)
	assert.True(t, diag.Converged)
	assert.Equal(t, 250, diag.Iterations)
	assert.Equal(t, 1, diag.SearchRounds)
	assert.Equal(t, []float64{1.2, 0.9}, diag.GrowthRate)
	assert.Greater(t, diag.Perplexity, 1.0)
}

func TestSolve_IsDeterministic(t *testing.T) {
	p := ot.Problem{Cost: mustCost(t, earlier, later), ElapsedDays: 1}
	a, err := ot.Solve(p, plainSolve(1, 0.05)...)
	require.NoError(t, err)
	b, err := ot.Solve(p, plainSolve(1, 0.05)...)
	require.NoError(t, err)
	assert.Equal(t, a.Dense().Values(), b.Dense().Values())
}

func TestSolve_InvalidInput(t *testing.T) {
	good := mustCost(t, earlier, later)
	neg, err := matrix.NewFromRows([][]float64{{0, -1}, {1, 0}})
	require.NoError(t, err)

	cases := map[string]ot.Problem{
		"nil cost":        {ElapsedDays: 1},
		"negative cost":   {Cost: neg, ElapsedDays: 1},
		"growth length":   {Cost: good, GrowthRate: []float64{1}, ElapsedDays: 1},
		"negative growth": {Cost: good, GrowthRate: []float64{1, -1}, ElapsedDays: 1},
		"prior length":    {Cost: good, TargetPrior: []float64{1, 1}, ElapsedDays: 1},
		"negative prior":  {Cost: good, SourcePrior: []float64{-1, 2}, ElapsedDays: 1},
		"zero prior mass": {Cost: good, SourcePrior: []float64{0, 0}, ElapsedDays: 1},
		"zero growth":     {Cost: good, GrowthRate: []float64{0, 0}, ElapsedDays: 1},
		"no elapsed days": {Cost: good},
		"backward days":   {Cost: good, SourceDay: 3, TargetDay: 1},
		"id count":        {Cost: good, RowIDs: []string{"x"}, ElapsedDays: 1},
		"duplicate ids":   {Cost: good, RowIDs: []string{"x", "x"}, ElapsedDays: 1},
		"nan growth":      {Cost: good, GrowthRate: []float64{1, math.NaN()}, ElapsedDays: 1},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			m, err := ot.Solve(p, plainSolve(1, 0.1)...)
			require.ErrorIs(t, err, ot.ErrInvalidInput)
			assert.Nil(t, m)
		})
	}
}

func TestSolve_InvalidOptions(t *testing.T) {
	p := ot.Problem{Cost: mustCost(t, earlier, later), ElapsedDays: 1}

	bad := ot.DefaultOptions()
	bad.BatchSize = 0
	_, err := ot.Solve(p, ot.WithOptions(bad))
	require.ErrorIs(t, err, ot.ErrInvalidInput)

	bad = ot.DefaultOptions()
	bad.MinTransportFraction, bad.MaxTransportFraction = 0.5, 0.4
	_, err = ot.Solve(p, ot.WithOptions(bad))
	require.ErrorIs(t, err, ot.ErrInvalidInput)

	assert.Panics(t, func() { ot.WithEpsilon(0) })
	assert.Panics(t, func() { ot.WithLambda(1, -1) })
	assert.Panics(t, func() { ot.WithGrowthLearning(0, 2) })
}

func TestSolve_NonConvergenceIsFlagged(t *testing.T) {
	p := ot.Problem{Cost: mustCost(t, earlier, later), ElapsedDays: 1}
	core, logs := observer.New(zapcore.WarnLevel)
	opts := []ot.Option{
		ot.WithAdaptiveSearch(false),
		ot.WithDualityGap(1e-14, 2, 1),
		ot.WithLogger(zap.New(core)),
	}

	m, err := ot.Solve(p, opts...)
	require.NoError(t, err, "non-convergence is not fatal by default")
	require.NotNil(t, m)
	diag := m.Diagnostics()
	assert.False(t, diag.Converged)
	assert.Equal(t, 2, diag.Iterations)
	assert.Equal(t, 1, logs.FilterMessage("duality gap not reached").Len())

	m, err = ot.Solve(p, append(opts, ot.WithStrictConvergence())...)
	require.ErrorIs(t, err, ot.ErrNonConvergence)
	require.NotNil(t, m, "the flagged map is still returned")
	assert.False(t, m.Diagnostics().Converged)
}

func TestSolve_GrowthRoundsRunThroughNonConvergence(t *testing.T) {
	p := ot.Problem{Cost: mustCost(t, earlier, later), ElapsedDays: 1}
	for _, strict := range []bool{false, true} {
		core, logs := observer.New(zapcore.DebugLevel)
		opts := []ot.Option{
			ot.WithAdaptiveSearch(false),
			ot.WithDualityGap(1e-14, 2, 1),
			ot.WithGrowthLearning(3, 2.5),
			ot.WithLogger(zap.New(core)),
		}
		if strict {
			opts = append(opts, ot.WithStrictConvergence())
		}

		m, err := ot.Solve(p, opts...)
		if strict {
			require.ErrorIs(t, err, ot.ErrNonConvergence)
		} else {
			require.NoError(t, err)
		}
		require.NotNil(t, m)

		rounds := logs.FilterMessage("growth round done").All()
		require.Len(t, rounds, 3, "every growth round runs")
		for _, r := range rounds {
			assert.Equal(t, false, r.ContextMap()["converged"])
		}
		assert.Equal(t, 1, logs.FilterMessage("duality gap not reached").Len())

		diag := m.Diagnostics()
		last := rounds[2].ContextMap()
		assert.False(t, diag.Converged)
		assert.Equal(t, 2, diag.Iterations, "updates of the last round only")
		assert.Equal(t, last["gap"], diag.DualityGap)
		assert.Equal(t, last["epsilon"], diag.Epsilon)
		require.Len(t, diag.GrowthRate, 2)
		for _, g := range diag.GrowthRate {
			// two learning steps from 1, each bounded by a factor of 2.5
			assert.GreaterOrEqual(t, g, 1/6.25-1e-12)
			assert.LessOrEqual(t, g, 6.25+1e-12)
		}
	}
}

func TestSolve_AdaptiveSearchContract(t *testing.T) {
	src, dst := grid("s", 6, 0), grid("t", 10, 0.4)
	c, err := cost.NormalizeByMedian(mustCost(t, src, dst))
	require.NoError(t, err)

	o := ot.DefaultOptions()
	m, err := ot.Solve(ot.Problem{
		Cost:        c,
		GrowthRate:  cost.GrowthRates(src),
		ElapsedDays: 1,
	},
		ot.WithLambda(1, 1),
		ot.WithEpsilon(1),
		ot.WithMethod(ot.MethodFixedIters),
		ot.WithScalingIter(250),
	)
	require.NoError(t, err)
	diag := m.Diagnostics()

	require.Less(t, diag.SearchRounds, o.MaxSearchRounds)
	assert.GreaterOrEqual(t, diag.Lambda1, 1.0, "lambda never drops below its baseline")
	assert.InDelta(t, diag.Lambda1, diag.Lambda2, 1e-12, "both lambdas move together")
	assert.Less(t, diag.Epsilon, 1.0, "a diffuse map lowers epsilon")

	steps := math.Log(diag.Epsilon) / math.Log(o.EpsilonAdjust)
	assert.InDelta(t, math.Round(steps), steps, 1e-9, "epsilon moves in EpsilonAdjust steps")

	n := float64(len(dst))
	assert.GreaterOrEqual(t, diag.Perplexity, n*o.MinTransportFraction)
	assert.Less(t, diag.Perplexity, n*o.MaxTransportFraction)
	assert.True(t, diag.GrowthFit >= o.MinGrowthFit || diag.Lambda1 >= o.L0Max,
		"search stops only with an acceptable fit or a saturated lambda")
}

func TestSolve_GrowthLearningStaysBounded(t *testing.T) {
	src, dst := grid("s", 4, 0), grid("t", 5, 0.9)
	c, err := cost.NormalizeByMedian(mustCost(t, src, dst))
	require.NoError(t, err)
	g0 := cost.GrowthRates(src)
	p := ot.Problem{Cost: c, GrowthRate: g0, ElapsedDays: 2}

	one, err := ot.Solve(p, append(plainSolve(1, 0.1), ot.WithGrowthLearning(1, 2.5))...)
	require.NoError(t, err)
	assert.Equal(t, g0, one.Diagnostics().GrowthRate, "a single round uses the prior")

	three, err := ot.Solve(p, append(plainSolve(1, 0.1), ot.WithGrowthLearning(3, 2.5))...)
	require.NoError(t, err)
	learned := three.Diagnostics().GrowthRate
	require.Len(t, learned, len(g0))
	bound := 2.5 * 2.5
	for i := range g0 {
		assert.GreaterOrEqual(t, learned[i], g0[i]/bound-1e-12)
		assert.LessOrEqual(t, learned[i], g0[i]*bound+1e-12)
	}
}

func TestParseMethod(t *testing.T) {
	m, err := ot.ParseMethod("duality_gap")
	require.NoError(t, err)
	assert.Equal(t, ot.MethodDualityGap, m)
	m, err = ot.ParseMethod(" Fixed_Iters ")
	require.NoError(t, err)
	assert.Equal(t, ot.MethodFixedIters, m)
	assert.Equal(t, "fixed_iters", m.String())
	_, err = ot.ParseMethod("sinkhorn")
	require.ErrorIs(t, err, ot.ErrInvalidInput)
}
