package ot

import (
	"fmt"
	"math"
	"strconv"

	"github.com/katalvlaran/lineage/matrix"
)

// instance is a validated problem in flat form. It is owned by one Solve
// call and never shared.
type instance struct {
	m, n      int
	cost      []float64 // row-major m×n
	rowIDs    []string
	colIDs    []string
	srcPrior  []float64 // normalized to unit total
	tgtPrior  []float64 // normalized to unit total
	growth    []float64 // initial growth rates
	dt        float64
	sourceDay float64
	targetDay float64
}

// validateOptions checks option consistency; config-built Options bypass
// the panicking With* constructors, so every field is checked here.
//
// Complexity: O(1).
func validateOptions(o Options) error {
	positive := []struct {
		name string
		v    float64
	}{
		{"Lambda1", o.Lambda1},
		{"Lambda2", o.Lambda2},
		{"Epsilon", o.Epsilon},
		{"Epsilon0", o.Epsilon0},
		{"Tau", o.Tau},
		{"Tolerance", o.Tolerance},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite and > 0, got %g", ErrInvalidInput, f.name, f.v)
		}
	}
	counts := []struct {
		name string
		v    int
	}{
		{"EpsilonScalings", o.EpsilonScalings},
		{"InnerIterMax", o.InnerIterMax},
		{"ScalingIter", o.ScalingIter},
		{"MaxIter", o.MaxIter},
		{"BatchSize", o.BatchSize},
		{"MaxSearchRounds", o.MaxSearchRounds},
		{"GrowthIters", o.GrowthIters},
	}
	for _, f := range counts {
		if f.v < 1 {
			return fmt.Errorf("%w: %s must be >= 1, got %d", ErrInvalidInput, f.name, f.v)
		}
	}
	if o.Method != MethodDualityGap && o.Method != MethodFixedIters {
		return fmt.Errorf("%w: unknown method %v", ErrInvalidInput, o.Method)
	}
	if !(o.MinTransportFraction >= 0 && o.MinTransportFraction < o.MaxTransportFraction && o.MaxTransportFraction <= 1) {
		return fmt.Errorf("%w: transport fractions must satisfy 0 <= min < max <= 1", ErrInvalidInput)
	}
	if !(o.L0Max >= 1) || !(o.LambdaAdjust > 1) || !(o.EpsilonAdjust > 1) || !(o.GrowthRatio >= 1) {
		return fmt.Errorf("%w: L0Max, GrowthRatio must be >= 1 and adjust steps > 1", ErrInvalidInput)
	}
	if math.IsNaN(o.MinGrowthFit) {
		return fmt.Errorf("%w: MinGrowthFit is NaN", ErrInvalidInput)
	}

	return nil
}

// Validate reports whether o can be passed to Solve.
func (o Options) Validate() error { return validateOptions(o) }

// prepare validates p and converts it into an instance.
//
// Implementation:
//   - Stage 1: cost present, nonnegative and finite (matrix.ValidateNonNegative).
//   - Stage 2: vector lengths match the cost shape; defaults for nil vectors.
//   - Stage 3: vectors nonnegative and finite; Δt positive; priors non-empty.
//
// Errors: ErrInvalidInput wrapping the underlying matrix sentinel where one applies.
// Complexity: O(m·n).
func prepare(p Problem) (*instance, error) {
	if err := matrix.ValidateNonNegative(p.Cost); err != nil {
		return nil, fmt.Errorf("%w: cost: %w", ErrInvalidInput, err)
	}
	m, n := p.Cost.Rows(), p.Cost.Cols()

	in := &instance{
		m: m, n: n,
		sourceDay: p.SourceDay,
		targetDay: p.TargetDay,
		dt:        p.ElapsedDays,
	}
	if in.dt == 0 {
		in.dt = p.TargetDay - p.SourceDay
	}
	if !(in.dt > 0) || math.IsInf(in.dt, 0) {
		return nil, fmt.Errorf("%w: elapsed days must be finite and > 0, got %g", ErrInvalidInput, in.dt)
	}

	var err error
	if in.rowIDs, err = idsOrDefault(p.RowIDs, m, "row"); err != nil {
		return nil, err
	}
	if in.colIDs, err = idsOrDefault(p.ColIDs, n, "column"); err != nil {
		return nil, err
	}
	if in.srcPrior, err = vectorOrOnes(p.SourcePrior, m, "source prior"); err != nil {
		return nil, err
	}
	if in.tgtPrior, err = vectorOrOnes(p.TargetPrior, n, "target prior"); err != nil {
		return nil, err
	}
	if in.growth, err = vectorOrOnes(p.GrowthRate, m, "growth rate"); err != nil {
		return nil, err
	}
	if err = normalize(in.srcPrior, "source prior"); err != nil {
		return nil, err
	}
	if err = normalize(in.tgtPrior, "target prior"); err != nil {
		return nil, err
	}

	if d, ok := p.Cost.(*matrix.Dense); ok {
		in.cost = d.Values()
	} else {
		in.cost = make([]float64, m*n)
		var i, j int
		for i = 0; i < m; i++ {
			for j = 0; j < n; j++ {
				if in.cost[i*n+j], err = p.Cost.At(i, j); err != nil {
					return nil, fmt.Errorf("%w: cost: %w", ErrInvalidInput, err)
				}
			}
		}
	}

	return in, nil
}

// idsOrDefault copies ids or generates "0".."k-1" when ids is nil.
func idsOrDefault(ids []string, k int, axis string) ([]string, error) {
	if ids == nil {
		out := make([]string, k)
		for i := range out {
			out[i] = strconv.Itoa(i)
		}
		return out, nil
	}
	if len(ids) != k {
		return nil, fmt.Errorf("%w: %d %s ids for %d cost %ss", ErrInvalidInput, len(ids), axis, k, axis)
	}
	seen := make(map[string]struct{}, k)
	for _, id := range ids {
		if _, dup := seen[id]; dup || id == "" {
			return nil, fmt.Errorf("%w: %s id %q is empty or repeated", ErrInvalidInput, axis, id)
		}
		seen[id] = struct{}{}
	}

	return append([]string(nil), ids...), nil
}

// vectorOrOnes copies x or returns k ones when x is nil.
func vectorOrOnes(x []float64, k int, name string) ([]float64, error) {
	if x == nil {
		out := make([]float64, k)
		for i := range out {
			out[i] = 1
		}
		return out, nil
	}
	if err := matrix.ValidateVecLen(x, k); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, name, err)
	}
	if err := matrix.ValidateNonNegativeVec(x); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidInput, name, err)
	}

	return append([]float64(nil), x...), nil
}

// normalize scales x in place to unit total; an all-zero x is rejected.
func normalize(x []float64, name string) error {
	var s float64
	for _, v := range x {
		s += v
	}
	if !(s > 0) {
		return fmt.Errorf("%w: %s has zero total mass", ErrInvalidInput, name)
	}
	for i := range x {
		x[i] /= s
	}

	return nil
}

// marginals returns p_i = π_i·growth_i^Δt and q_j = ρ_j·Σp.
// Errors: ErrInvalidInput when Σp is zero or not finite (all growth zero, overflow).
func (in *instance) marginals(growth []float64) (p, q []float64, err error) {
	p = make([]float64, in.m)
	var total float64
	for i := range p {
		p[i] = in.srcPrior[i] * math.Pow(growth[i], in.dt)
		total += p[i]
	}
	if !(total > 0) || math.IsInf(total, 0) {
		return nil, nil, fmt.Errorf("%w: source marginal total is %g", ErrInvalidInput, total)
	}
	q = make([]float64, in.n)
	for j := range q {
		q[j] = in.tgtPrior[j] * total
	}

	return p, q, nil
}
