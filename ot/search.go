package ot

import (
	"math"

	"go.uber.org/zap"

	"github.com/katalvlaran/lineage/matrix"
)

// move is one decision of the adaptive λ/ε search.
type move int

const (
	moveStop         move = iota // perplexity inside the band, fit accepted
	moveRaiseLambda              // growth fit too low: λ ×= LambdaAdjust
	moveRaiseEpsilon             // map too concentrated: ε ×= EpsilonAdjust
	moveLowerEpsilon             // map too diffuse: ε /= EpsilonAdjust
	moveRescue                   // every row underflowed: raise ε until mass reappears
)

// decide picks the next search move. Growth fit has priority over the
// perplexity band; λ stops rising once the multiplier reaches L0Max.
func decide(perplexity, fit, l0 float64, n int, o Options) move {
	switch {
	case perplexity == 0:
		return moveRescue
	case fit < o.MinGrowthFit && l0 < o.L0Max:
		return moveRaiseLambda
	case perplexity < float64(n)*o.MinTransportFraction:
		return moveRaiseEpsilon
	case perplexity < float64(n)*o.MaxTransportFraction:
		return moveStop
	default:
		return moveLowerEpsilon
	}
}

// planStats returns the mean row perplexity exp(H(row/‖row‖₁)) of plan
// (0 for empty rows) and the growth fit 1 − ‖R·1 − p‖² / ‖p‖².
func planStats(plan []float64, p []float64, m, n int) (perplexity, fit float64, err error) {
	d, err := matrix.NewFromSlice(m, n, plan)
	if err != nil {
		return 0, 0, err
	}
	normed, mass, err := matrix.NormalizeRowsL1(d)
	if err != nil {
		return 0, 0, err
	}
	values := normed.Values()

	var i, j int
	var h, v float64
	for i = 0; i < m; i++ {
		if mass[i] == 0 {
			continue
		}
		h = 0
		for j = 0; j < n; j++ {
			if v = values[i*n+j]; v > 0 {
				h -= v * math.Log(v)
			}
		}
		perplexity += math.Exp(h)
	}
	perplexity /= float64(m)

	var num, den float64
	for i = 0; i < m; i++ {
		num += (mass[i] - p[i]) * (mass[i] - p[i])
		den += p[i] * p[i]
	}

	return perplexity, 1 - num/den, nil
}

// outcome is the result of one search (or one plain solve when the search is off).
type outcome struct {
	scaleResult
	lambda1, lambda2, eps float64
	perplexity, fit       float64
	rounds                int
}

// solveRound solves the instance for one growth vector, running the
// adaptive search when enabled.
//
// Implementation:
//   - Stage 1: marginals from growth; fresh potentials per solve.
//   - Stage 2: λ = baseline·l0, ε = baseline·e0 with l0 = e0 = 1; apply decide()
//     until moveStop, the rescue finishes, or MaxSearchRounds solves are spent.
//
// Errors: ErrInvalidInput when the growth-scaled source marginal is empty.
func (in *instance) solveRound(growth []float64, o Options) (outcome, error) {
	p, q, err := in.marginals(growth)
	if err != nil {
		return outcome{}, err
	}
	k := newKernel(in, p, q)

	run := func(l0, e0 float64, round int) (outcome, error) {
		res := k.scale(newPotentials(in.m, in.n), o.Lambda1*l0, o.Lambda2*l0, o.Epsilon*e0, o)
		perp, fit, err := planStats(res.plan, p, in.m, in.n)
		if err != nil {
			return outcome{}, err
		}
		return outcome{
			scaleResult: res,
			lambda1:     o.Lambda1 * l0,
			lambda2:     o.Lambda2 * l0,
			eps:         o.Epsilon * e0,
			perplexity:  perp,
			fit:         fit,
			rounds:      round,
		}, nil
	}

	l0, e0 := 1.0, 1.0
	out, err := run(l0, e0, 1)
	if err != nil || !o.AdaptiveSearch {
		return out, err
	}

	for round := 1; ; round++ {
		mv := decide(out.perplexity, out.fit, l0, in.n, o)
		o.Logger.Debug("search round",
			zap.Int("round", round),
			zap.Float64("lambda1", out.lambda1),
			zap.Float64("epsilon", out.eps),
			zap.Float64("perplexity", out.perplexity),
			zap.Float64("growth_fit", out.fit),
			zap.Int("move", int(mv)))
		if mv == moveStop {
			return out, nil
		}
		if round >= o.MaxSearchRounds {
			o.Logger.Warn("search round cap reached", zap.Int("rounds", round))
			return out, nil
		}

		switch mv {
		case moveRescue:
			e0 *= o.EpsilonAdjust
			if out, err = run(l0, e0, round+1); err != nil {
				return out, err
			}
			for out.perplexity == 0 && out.rounds < o.MaxSearchRounds {
				e0 *= o.EpsilonAdjust
				if out, err = run(l0, e0, out.rounds+1); err != nil {
					return out, err
				}
			}
			return out, nil
		case moveRaiseLambda:
			l0 *= o.LambdaAdjust
		case moveRaiseEpsilon:
			e0 *= o.EpsilonAdjust
		case moveLowerEpsilon:
			e0 /= o.EpsilonAdjust
		}
		if out, err = run(l0, e0, round+1); err != nil {
			return out, err
		}
	}
}
