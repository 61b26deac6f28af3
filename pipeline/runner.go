package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/lineage/config"
	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/internal/logging"
	"github.com/katalvlaran/lineage/ot"
	"github.com/katalvlaran/lineage/transport"
)

// TracerName names the tracer used when none is supplied.
const TracerName = "github.com/katalvlaran/lineage/pipeline"

// Runner solves day pairs. It holds no per-run state and is safe for
// concurrent Run calls.
type Runner struct {
	cfg         *config.Config
	concurrency int
	logger      *zap.Logger
	metrics     *Metrics
	tracer      trace.Tracer
	days        []float64
	rawCost     bool
}

// Option represents a functional option for configuring a Runner.
type Option func(*Runner)

// WithConfig resolves per-pair solver options from c.
func WithConfig(c *config.Config) Option {
	return func(r *Runner) { r.cfg = c }
}

// WithConcurrency bounds the number of pairs solved at once. Panics if n < 1.
func WithConcurrency(n int) Option {
	if n < 1 {
		panic("pipeline: concurrency must be >= 1")
	}
	return func(r *Runner) { r.concurrency = n }
}

// WithLogger routes run and solver logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) { r.logger = logging.OrNop(l) }
}

// WithMetrics records per-pair metrics into m.
func WithMetrics(m *Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithTracer starts one span per pair on t.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) {
		if t != nil {
			r.tracer = t
		}
	}
}

// WithDays restricts the run to the listed days.
func WithDays(days ...float64) Option {
	keep := append([]float64{}, days...)
	return func(r *Runner) { r.days = keep }
}

// WithRawCost skips median normalization of the cost matrix.
func WithRawCost() Option {
	return func(r *Runner) { r.rawCost = true }
}

// NewRunner returns a Runner with GOMAXPROCS concurrency, default solver
// options, a no-op logger and the global OpenTelemetry tracer.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		cfg:         &config.Config{},
		concurrency: runtime.GOMAXPROCS(0),
		logger:      zap.NewNop(),
		tracer:      otel.Tracer(TracerName),
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Result is the outcome of one run.
type Result struct {
	RunID string
	Pairs []Pair
	Chain *transport.Chain
}

// Run groups units by day and solves every consecutive pair.
//
// Implementation:
//   - Stage 1: GroupByDay, day filter, Pairs.
//   - Stage 2: one errgroup task per pair, bounded by the concurrency limit;
//     a task returns early if the context is already done.
//   - Stage 3: the maps, written to per-pair slots, form the returned Chain.
//
// Errors:
//   - ErrInvalidInput for fewer than two days or a duplicated id.
//   - the first pair failure (wrapped with its pair key) or ctx.Err().
func (r *Runner) Run(ctx context.Context, units []cost.Unit) (*Result, error) {
	days, byDay, err := GroupByDay(units)
	if err != nil {
		return nil, err
	}
	days = filterDays(days, r.days)
	if len(days) < 2 {
		return nil, fmt.Errorf("%w: need at least two days, got %d", ErrInvalidInput, len(days))
	}
	pairs := Pairs(days)

	runID := uuid.NewString()
	log := r.logger.With(zap.String("run_id", runID))
	log.Info("run started", zap.Int("units", len(units)), zap.Int("pairs", len(pairs)))
	start := time.Now()

	maps := make([]*transport.Map, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for k, p := range pairs {
		k, p := k, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := r.solvePair(gctx, log, runID, p, byDay[p.Source], byDay[p.Target])
			if err != nil {
				return err
			}
			maps[k] = m
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		log.Error("run failed", zap.Error(err))
		return nil, err
	}
	// errgroup cancels gctx only on failure; a parent cancelled after the last
	// task started still counts.
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	chain, err := transport.NewChain(maps...)
	if err != nil {
		return nil, err
	}
	log.Info("run finished", zap.Duration("elapsed", time.Since(start)))

	return &Result{RunID: runID, Pairs: pairs, Chain: chain}, nil
}

// solvePair solves one pair inside its own span.
func (r *Runner) solvePair(ctx context.Context, log *zap.Logger, runID string, p Pair, src, dst []cost.Unit) (*transport.Map, error) {
	key := config.PairKey(p.Source, p.Target)
	_, span := r.tracer.Start(ctx, "lineage.solve_pair", trace.WithAttributes(
		attribute.String("lineage.run_id", runID),
		attribute.String("lineage.pair", key),
		attribute.Int("lineage.rows", len(src)),
		attribute.Int("lineage.cols", len(dst)),
	))
	defer span.End()
	log = log.With(zap.String("pair", key))
	start := time.Now()

	m, err := r.solve(log, p, src, dst)
	r.metrics.observe(key, m, time.Since(start), err)
	if m != nil {
		d := m.Diagnostics()
		span.SetAttributes(
			attribute.Bool("lineage.converged", d.Converged),
			attribute.Float64("lineage.epsilon", d.Epsilon),
			attribute.Int("lineage.iterations", d.Iterations),
		)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("pair %s: %w", key, err)
	}
	log.Info("pair solved", zap.Float64("total_mass", m.Total()), zap.Duration("elapsed", time.Since(start)))

	return m, nil
}

func (r *Runner) solve(log *zap.Logger, p Pair, src, dst []cost.Unit) (*transport.Map, error) {
	c, err := cost.SquaredEuclidean(src, dst)
	if err != nil {
		return nil, err
	}
	if !r.rawCost {
		if c, err = cost.NormalizeByMedian(c); err != nil {
			return nil, err
		}
	}
	o, err := r.cfg.Options(p.Source, p.Target)
	if err != nil {
		return nil, err
	}

	m, err := ot.Solve(ot.Problem{
		Cost:       c,
		RowIDs:     cost.IDs(src),
		ColIDs:     cost.IDs(dst),
		GrowthRate: growthOf(src),
		SourceDay:  p.Source,
		TargetDay:  p.Target,
	}, ot.WithOptions(o), ot.WithLogger(log))
	if err != nil && !errors.Is(err, ot.ErrNonConvergence) {
		return nil, err
	}

	return m, err
}
