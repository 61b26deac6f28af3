package ot_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/lineage/ot"
)

func TestDecide(t *testing.T) {
	o := ot.DefaultOptions() // fit 0.9, band [0.05n, 0.4n), l0 ≤ 100
	const n = 20             // band [1, 8)

	cases := []struct {
		name            string
		perplexity, fit float64
		l0              float64
		want            int
	}{
		{"underflow", 0, 1, 1, ot.MoveRescue},
		{"poor fit", 5, 0.5, 1, ot.MoveRaiseLambda},
		{"poor fit, lambda saturated", 5, 0.5, 150, ot.MoveStop},
		{"too concentrated", 0.5, 0.95, 1, ot.MoveRaiseEpsilon},
		{"inside band", 4, 0.95, 1, ot.MoveStop},
		{"too diffuse", 12, 0.95, 1, ot.MoveLowerEpsilon},
		{"upper bound is exclusive", 8, 0.95, 1, ot.MoveLowerEpsilon},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ot.Decide(tc.perplexity, tc.fit, tc.l0, n, o))
		})
	}
}

func TestLearnGrowth(t *testing.T) {
	prior := []float64{0.5, 0.25, 0.25, 0}
	prev := []float64{1, 2, 1, 3}
	mass := []float64{1, 0, 0.75, 0.3}

	got := ot.LearnGrowth(mass, prior, prev, 1, 2)
	assert.InDeltaSlice(t, []float64{
		2, // 1/0.5, inside [0.5, 2]
		1, // vanished row drops to 2/2
		2, // 0.75/0.25 = 3 clamped to 1·2
		3, // zero prior keeps its rate
	}, got, 1e-12)

	got = ot.LearnGrowth(mass, prior, prev, 2, 4)
	assert.InDelta(t, math.Sqrt(2), got[0], 1e-12)
	assert.InDelta(t, math.Sqrt(3), got[2], 1e-12)
}

func TestSchedule(t *testing.T) {
	s := ot.Schedule(1, 0.01, 3)
	assert.InDeltaSlice(t, []float64{1, 0.1, 0.01}, s, 1e-15)
	assert.Equal(t, 0.01, s[len(s)-1], "last stage is exactly epsilon")

	assert.Equal(t, []float64{0.5}, ot.Schedule(0.1, 0.5, 5))
	assert.Equal(t, []float64{0.5}, ot.Schedule(1, 0.5, 1))
}

func TestLogSumExp(t *testing.T) {
	assert.True(t, math.IsInf(ot.LogSumExp([]float64{math.Inf(-1), math.Inf(-1)}), -1))
	assert.InDelta(t, 1000+math.Ln2, ot.LogSumExp([]float64{1000, 1000}), 1e-12)
	assert.InDelta(t, -1000+math.Ln2, ot.LogSumExp([]float64{-1000, math.Inf(-1), -1000}), 1e-12)
}
