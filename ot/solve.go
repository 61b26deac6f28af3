package ot

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/transport"
)

// Solve computes the transport map of p.
//
// Implementation:
//   - Stage 1: apply options over DefaultOptions and validate them with p.
//   - Stage 2: GrowthIters rounds of solveRound; between rounds the growth
//     rates are re-estimated by learnGrowth. No round exits early.
//   - Stage 3: wrap the last plan in a transport.Map carrying Diagnostics of
//     the last round (realized ε, λ1, λ2, convergence, growth rates used).
//
// Errors:
//   - ErrInvalidInput for bad shapes, values or options (no map).
//   - ErrNonConvergence under WithStrictConvergence (map returned too).
//
// Complexity:
//   - O(GrowthIters · searchRounds · updates · m·n).
func Solve(p Problem, opts ...Option) (*transport.Map, error) {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if err := validateOptions(o); err != nil {
		return nil, err
	}
	in, err := prepare(p)
	if err != nil {
		return nil, err
	}

	var (
		out    outcome
		growth = in.growth
	)
	for round := 0; round < o.GrowthIters; round++ {
		if out, err = in.solveRound(growth, o); err != nil {
			return nil, err
		}
		o.Logger.Debug("growth round done",
			zap.Int("round", round),
			zap.Float64("epsilon", out.eps),
			zap.Float64("lambda1", out.lambda1),
			zap.Float64("gap", out.gap),
			zap.Bool("converged", out.converged))
		if round+1 < o.GrowthIters {
			mass, err := rowMass(out.plan, in.m, in.n)
			if err != nil {
				return nil, err
			}
			growth = learnGrowth(mass, in.srcPrior, growth, in.dt, o.GrowthRatio)
		}
	}

	dense, err := matrix.NewFromSlice(in.m, in.n, out.plan)
	if err != nil {
		return nil, fmt.Errorf("ot: transport plan: %w", err)
	}
	tm, err := transport.New(in.rowIDs, in.colIDs, dense,
		transport.WithDays(in.sourceDay, in.targetDay),
		transport.WithDiagnostics(transport.Diagnostics{
			Epsilon:      out.eps,
			Lambda1:      out.lambda1,
			Lambda2:      out.lambda2,
			Converged:    out.converged,
			Iterations:   out.iterations,
			DualityGap:   out.gap,
			GrowthFit:    out.fit,
			Perplexity:   out.perplexity,
			SearchRounds: out.rounds,
			GrowthRate:   growth,
		}))
	if err != nil {
		return nil, fmt.Errorf("ot: transport plan: %w", err)
	}

	if !out.converged {
		o.Logger.Warn("duality gap not reached",
			zap.Float64("gap", out.gap),
			zap.Float64("tolerance", o.Tolerance),
			zap.Int("updates", out.iterations))
		if o.StrictConvergence {
			return tm, fmt.Errorf("%w: relative gap %.3g after %d updates", ErrNonConvergence, out.gap, out.iterations)
		}
	}

	return tm, nil
}

// rowMass returns the row sums of a flat m×n plan.
func rowMass(plan []float64, m, n int) ([]float64, error) {
	d, err := matrix.NewFromSlice(m, n, plan)
	if err != nil {
		return nil, fmt.Errorf("ot: transport plan: %w", err)
	}

	return matrix.RowSums(d)
}
