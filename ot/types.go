package ot

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/matrix"
)

// Sentinel errors returned by the solver.
var (
	// ErrInvalidInput indicates inconsistent shapes, negative or non-finite
	// values, an empty marginal, or invalid options.
	ErrInvalidInput = errors.New("ot: invalid input")

	// ErrNonConvergence indicates that the duality-gap criterion was not met
	// within MaxIter updates. Returned only under WithStrictConvergence,
	// always together with the (flagged) map.
	ErrNonConvergence = errors.New("ot: duality gap not reached")
)

// Method selects the convergence criterion of the scaling iterations.
type Method int

const (
	// MethodDualityGap anneals ε and stops on the relative primal-dual gap.
	MethodDualityGap Method = iota

	// MethodFixedIters runs exactly ScalingIter updates at the final ε.
	MethodFixedIters
)

// String returns the configuration name of the method.
func (m Method) String() string {
	switch m {
	case MethodDualityGap:
		return "duality_gap"
	case MethodFixedIters:
		return "fixed_iters"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "duality_gap" or "fixed_iters" (case-insensitive).
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "duality_gap":
		return MethodDualityGap, nil
	case "fixed_iters":
		return MethodFixedIters, nil
	default:
		return 0, fmt.Errorf("%w: unknown solver %q", ErrInvalidInput, s)
	}
}

// Problem is one day-pair transport problem.
//
// Cost is required. RowIDs/ColIDs default to "0","1",...; nil priors and a
// nil GrowthRate default to all ones. ElapsedDays defaults to
// TargetDay − SourceDay when zero and must end up positive.
type Problem struct {
	Cost        matrix.Matrix // m×n, nonnegative, finite
	RowIDs      []string      // len m
	ColIDs      []string      // len n
	SourcePrior []float64     // len m
	TargetPrior []float64     // len n
	GrowthRate  []float64     // len m, per-day multiplicative growth
	ElapsedDays float64       // Δt between the two days
	SourceDay   float64       // day label of the rows
	TargetDay   float64       // day label of the columns
}

// Options configures the solver.
//
// Lambda1/Lambda2/Epsilon are the baselines; the adaptive search only ever
// raises the λs and rescales ε.
type Options struct {
	Lambda1 float64 // row-marginal fidelity baseline (> 0)
	Lambda2 float64 // column-marginal fidelity baseline (> 0)
	Epsilon float64 // entropic regularization baseline (> 0)

	Method          Method  // convergence criterion
	Epsilon0        float64 // annealing start (MethodDualityGap)
	EpsilonScalings int     // annealing stages including the final one

	// Tau ends an intermediate annealing stage once the log potentials move
	// by less than 1/Tau between batches. It is a stage stop threshold, not
	// an absorption bound: the log-domain updates never overflow, so no
	// scaling vector is ever absorbed into the potentials.
	Tau float64

	InnerIterMax int     // batch cap per intermediate annealing stage
	ScalingIter  int     // updates for MethodFixedIters
	MaxIter      int     // total update budget for MethodDualityGap
	BatchSize    int     // updates between duality-gap checks
	Tolerance    float64 // relative duality gap target

	AdaptiveSearch       bool    // search λ/ε around the baselines
	MinGrowthFit         float64 // growth fit the search must reach
	MinTransportFraction float64 // lower perplexity bound as a fraction of n
	MaxTransportFraction float64 // upper perplexity bound as a fraction of n
	L0Max                float64 // cap on the λ multiplier
	LambdaAdjust         float64 // λ multiplier step (> 1)
	EpsilonAdjust        float64 // ε multiplier step (> 1)
	MaxSearchRounds      int     // hard cap on search rounds

	GrowthIters int     // growth-learning rounds (≥ 1)
	GrowthRatio float64 // max per-round growth change factor (≥ 1)

	StrictConvergence bool        // return ErrNonConvergence with the map
	Logger            *zap.Logger // nil means zap.NewNop()
}

// Option represents a functional option for configuring Solve.
type Option func(*Options)

// DefaultOptions returns the defaults used by the lineage command:
//
//	ε=0.05, λ1=1, λ2=50, ε0=1, τ=10000, 5 annealing stages, 50 batches per stage,
//	3000 fixed iterations, MaxIter=1e7, batch 5, tolerance 1e-8, search on
//	(fit 0.9, fractions 0.05/0.4, l0 ≤ 100, steps 1.5/1.1, 200 rounds),
//	1 growth round with ratio 2.5.
func DefaultOptions() Options {
	return Options{
		Lambda1:              1,
		Lambda2:              50,
		Epsilon:              0.05,
		Method:               MethodDualityGap,
		Epsilon0:             1,
		EpsilonScalings:      5,
		Tau:                  10000,
		InnerIterMax:         50,
		ScalingIter:          3000,
		MaxIter:              10_000_000,
		BatchSize:            5,
		Tolerance:            1e-8,
		AdaptiveSearch:       true,
		MinGrowthFit:         0.9,
		MinTransportFraction: 0.05,
		MaxTransportFraction: 0.4,
		L0Max:                100,
		LambdaAdjust:         1.5,
		EpsilonAdjust:        1.1,
		MaxSearchRounds:      200,
		GrowthIters:          1,
		GrowthRatio:          2.5,
		Logger:               zap.NewNop(),
	}
}

// WithOptions replaces the whole option set, e.g. one resolved from a
// configuration file. A nil Logger in src keeps the current logger.
func WithOptions(src Options) Option {
	return func(o *Options) {
		logger := o.Logger
		*o = src
		if o.Logger == nil {
			o.Logger = logger
		}
	}
}

// WithLambda sets the λ1/λ2 baselines. Panics on non-positive values.
func WithLambda(lambda1, lambda2 float64) Option {
	if !(lambda1 > 0) || !(lambda2 > 0) {
		panic("ot: lambdas must be > 0")
	}
	return func(o *Options) {
		o.Lambda1 = lambda1
		o.Lambda2 = lambda2
	}
}

// WithEpsilon sets the ε baseline. Panics on non-positive values.
func WithEpsilon(eps float64) Option {
	if !(eps > 0) {
		panic("ot: epsilon must be > 0")
	}
	return func(o *Options) {
		o.Epsilon = eps
	}
}

// WithMethod selects the convergence criterion.
func WithMethod(m Method) Option {
	return func(o *Options) {
		o.Method = m
	}
}

// WithScalingIter sets the update count for MethodFixedIters. Panics if n < 1.
func WithScalingIter(n int) Option {
	if n < 1 {
		panic("ot: scaling iterations must be >= 1")
	}
	return func(o *Options) {
		o.ScalingIter = n
	}
}

// WithDualityGap configures MethodDualityGap: gap tolerance, total update
// budget and batch size between gap checks.
func WithDualityGap(tolerance float64, maxIter, batchSize int) Option {
	if !(tolerance > 0) || maxIter < 1 || batchSize < 1 {
		panic("ot: tolerance must be > 0, maxIter and batchSize >= 1")
	}
	return func(o *Options) {
		o.Method = MethodDualityGap
		o.Tolerance = tolerance
		o.MaxIter = maxIter
		o.BatchSize = batchSize
	}
}

// WithAnnealing sets the ε0 start, the number of stages and τ.
func WithAnnealing(epsilon0 float64, stages int, tau float64) Option {
	if !(epsilon0 > 0) || stages < 1 || !(tau > 0) {
		panic("ot: epsilon0 and tau must be > 0, stages >= 1")
	}
	return func(o *Options) {
		o.Epsilon0 = epsilon0
		o.EpsilonScalings = stages
		o.Tau = tau
	}
}

// WithAdaptiveSearch enables or disables the λ/ε search.
func WithAdaptiveSearch(on bool) Option {
	return func(o *Options) {
		o.AdaptiveSearch = on
	}
}

// WithSearchBounds sets the search contract: minimum growth fit, transport
// fraction band and λ multiplier cap.
func WithSearchBounds(minGrowthFit, minFraction, maxFraction, l0Max float64) Option {
	if !(minFraction >= 0 && minFraction < maxFraction && maxFraction <= 1) || !(l0Max >= 1) {
		panic("ot: need 0 <= minFraction < maxFraction <= 1 and l0Max >= 1")
	}
	return func(o *Options) {
		o.MinGrowthFit = minGrowthFit
		o.MinTransportFraction = minFraction
		o.MaxTransportFraction = maxFraction
		o.L0Max = l0Max
	}
}

// WithGrowthLearning sets the number of growth rounds and the per-round ratio bound.
func WithGrowthLearning(iters int, ratio float64) Option {
	if iters < 1 || !(ratio >= 1) {
		panic("ot: growth iterations must be >= 1 and ratio >= 1")
	}
	return func(o *Options) {
		o.GrowthIters = iters
		o.GrowthRatio = ratio
	}
}

// WithStrictConvergence makes Solve return ErrNonConvergence (with the map).
func WithStrictConvergence() Option {
	return func(o *Options) {
		o.StrictConvergence = true
	}
}

// WithLogger routes solver logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		if l != nil {
			o.Logger = l
		}
	}
}
