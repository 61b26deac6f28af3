package ot

import (
	"math"

	"go.uber.org/zap"
)

// kernel holds the per-solve data of the log-domain scaling: the flat cost
// and the log marginals. Potentials live outside so they can be warm-started
// across ε stages and search rounds.
type kernel struct {
	m, n   int
	cost   []float64 // row-major m×n
	p, q   []float64
	logP   []float64 // −Inf where p_i == 0
	logQ   []float64 // −Inf where q_j == 0
	rowBuf []float64 // scratch for row reductions (len n)
	colBuf []float64 // scratch for column reductions (len m)
}

func newKernel(in *instance, p, q []float64) *kernel {
	k := &kernel{
		m: in.m, n: in.n,
		cost:   in.cost,
		p:      p,
		q:      q,
		logP:   make([]float64, in.m),
		logQ:   make([]float64, in.n),
		rowBuf: make([]float64, in.n),
		colBuf: make([]float64, in.m),
	}
	for i, v := range p {
		k.logP[i] = math.Log(v) // log(0) = −Inf
	}
	for j, v := range q {
		k.logQ[j] = math.Log(v)
	}

	return k
}

// potentials are the dual variables f (rows) and g (columns) in cost units.
type potentials struct {
	f, g []float64
}

func newPotentials(m, n int) *potentials {
	return &potentials{f: make([]float64, m), g: make([]float64, n)}
}

// logSumExp returns log Σ exp(x_k), ignoring −Inf terms; −Inf if all are.
func logSumExp(x []float64) float64 {
	mx := math.Inf(-1)
	for _, v := range x {
		if v > mx {
			mx = v
		}
	}
	if math.IsInf(mx, -1) {
		return mx
	}
	var s float64
	for _, v := range x {
		s += math.Exp(v - mx)
	}

	return mx + math.Log(s)
}

// update performs one full scaling step (f then g) at (λ1, λ2, ε) and
// returns the largest absolute change of any finite potential.
//
//	f_i = λ1/(λ1+ε) · ε · (log p_i − LSE_j((g_j − C_ij)/ε))
//	g_j = λ2/(λ2+ε) · ε · (log q_j − LSE_i((f_i − C_ij)/ε))
//
// Complexity: O(m·n).
func (k *kernel) update(pot *potentials, lambda1, lambda2, eps float64) float64 {
	var (
		i, j  int
		delta float64
		next  float64
		row   = k.rowBuf
		a1    = lambda1 / (lambda1 + eps)
		a2    = lambda2 / (lambda2 + eps)
	)

	for i = 0; i < k.m; i++ {
		if math.IsInf(k.logP[i], -1) {
			pot.f[i] = math.Inf(-1)
			continue
		}
		base := i * k.n
		for j = 0; j < k.n; j++ {
			row[j] = (pot.g[j] - k.cost[base+j]) / eps
		}
		next = a1 * eps * (k.logP[i] - logSumExp(row))
		delta = maxChange(delta, pot.f[i], next)
		pot.f[i] = next
	}

	for j = 0; j < k.n; j++ {
		if math.IsInf(k.logQ[j], -1) {
			pot.g[j] = math.Inf(-1)
			continue
		}
		for i = 0; i < k.m; i++ {
			k.colBuf[i] = (pot.f[i] - k.cost[i*k.n+j]) / eps
		}
		next = a2 * eps * (k.logQ[j] - logSumExp(k.colBuf))
		delta = maxChange(delta, pot.g[j], next)
		pot.g[j] = next
	}

	return delta
}

// maxChange folds |next − prev| into cur, skipping non-finite potentials.
func maxChange(cur, prev, next float64) float64 {
	if math.IsInf(prev, 0) || math.IsInf(next, 0) {
		return cur
	}

	return math.Max(cur, math.Abs(next-prev))
}

// plan materializes R_ij = exp((f_i + g_j − C_ij)/ε).
func (k *kernel) plan(pot *potentials, eps float64) []float64 {
	out := make([]float64, k.m*k.n)
	var i, j int
	for i = 0; i < k.m; i++ {
		base := i * k.n
		for j = 0; j < k.n; j++ {
			out[base+j] = math.Exp((pot.f[i] + pot.g[j] - k.cost[base+j]) / eps)
		}
	}

	return out
}

// kl returns KL(x|y) = Σ x log(x/y) − x + y with 0·log 0 = 0.
func kl(x, y []float64) float64 {
	var s float64
	for i := range x {
		switch {
		case x[i] == 0:
			s += y[i]
		default:
			s += x[i]*math.Log(x[i]/y[i]) - x[i] + y[i]
		}
	}

	return s
}

// gap returns the primal value, the dual value and the relative gap
// |P − D| / |P| of the current potentials.
//
//	P = ⟨C,R⟩ + ε·Σ(R log R − R) + λ1·KL(R·1|p) + λ2·KL(Rᵀ·1|q)
//	D = −λ1·Σ p(e^{−f/λ1} − 1) − λ2·Σ q(e^{−g/λ2} − 1) − ε·ΣR
//
// Complexity: O(m·n).
func (k *kernel) gap(pot *potentials, lambda1, lambda2, eps float64) (primal, dual, rel float64) {
	r := k.plan(pot, eps)
	rows := make([]float64, k.m)
	cols := make([]float64, k.n)

	var (
		i, j    int
		v, mass float64
	)
	for i = 0; i < k.m; i++ {
		base := i * k.n
		for j = 0; j < k.n; j++ {
			v = r[base+j]
			rows[i] += v
			cols[j] += v
			mass += v
			if v > 0 {
				primal += k.cost[base+j]*v + eps*(v*math.Log(v)-v)
			}
		}
	}
	primal += lambda1*kl(rows, k.p) + lambda2*kl(cols, k.q)

	for i = 0; i < k.m; i++ {
		if k.p[i] > 0 {
			dual -= lambda1 * k.p[i] * math.Expm1(-pot.f[i]/lambda1)
		}
	}
	for j = 0; j < k.n; j++ {
		if k.q[j] > 0 {
			dual -= lambda2 * k.q[j] * math.Expm1(-pot.g[j]/lambda2)
		}
	}
	dual -= eps * mass

	den := math.Abs(primal)
	if den < math.SmallestNonzeroFloat64 {
		den = 1
	}

	return primal, dual, math.Abs(primal-dual) / den
}

// scaleResult is the outcome of one scaling solve at fixed (λ1, λ2, ε).
type scaleResult struct {
	plan       []float64
	iterations int
	gap        float64
	converged  bool
}

// schedule returns the annealing ε values from max(ε0, ε) down to ε,
// geometrically spaced; the last entry is exactly ε.
func schedule(eps0, eps float64, stages int) []float64 {
	if eps0 <= eps || stages <= 1 {
		return []float64{eps}
	}
	out := make([]float64, stages)
	ratio := math.Pow(eps/eps0, 1/float64(stages-1))
	out[0] = eps0
	for s := 1; s < stages-1; s++ {
		out[s] = out[s-1] * ratio
	}
	out[stages-1] = eps

	return out
}

// scale runs the configured convergence mode at (λ1, λ2, ε) starting from pot.
//
// Implementation:
//   - MethodFixedIters: exactly ScalingIter updates at ε; converged by definition.
//   - MethodDualityGap:
//     Stage 1: intermediate ε stages stop when potentials move < 1/Tau or after
//     InnerIterMax batches of BatchSize updates.
//     Stage 2: the final stage checks the relative gap every BatchSize updates
//     until gap < Tolerance or the MaxIter budget (shared with Stage 1) is spent.
func (k *kernel) scale(pot *potentials, lambda1, lambda2, eps float64, o Options) scaleResult {
	if o.Method == MethodFixedIters {
		var it int
		for it = 0; it < o.ScalingIter; it++ {
			k.update(pot, lambda1, lambda2, eps)
		}
		_, _, rel := k.gap(pot, lambda1, lambda2, eps)

		return scaleResult{plan: k.plan(pot, eps), iterations: it, gap: rel, converged: true}
	}

	var (
		used   int
		stages = schedule(o.Epsilon0, eps, o.EpsilonScalings)
		stop   = 1 / o.Tau
	)
	for s := 0; s < len(stages)-1 && used < o.MaxIter; s++ {
		var delta float64
		for b := 0; b < o.InnerIterMax && used < o.MaxIter; b++ {
			for u := 0; u < o.BatchSize && used < o.MaxIter; u++ {
				delta = k.update(pot, lambda1, lambda2, stages[s])
				used++
			}
			if delta < stop {
				break
			}
		}
		o.Logger.Debug("annealing stage done",
			zap.Int("stage", s), zap.Float64("epsilon", stages[s]),
			zap.Float64("delta", delta), zap.Int("updates", used))
	}

	rel := math.Inf(1)
	for used < o.MaxIter {
		for u := 0; u < o.BatchSize && used < o.MaxIter; u++ {
			k.update(pot, lambda1, lambda2, eps)
			used++
		}
		if _, _, rel = k.gap(pot, lambda1, lambda2, eps); rel < o.Tolerance {
			return scaleResult{plan: k.plan(pot, eps), iterations: used, gap: rel, converged: true}
		}
	}
	if math.IsInf(rel, 1) {
		_, _, rel = k.gap(pot, lambda1, lambda2, eps)
	}

	return scaleResult{plan: k.plan(pot, eps), iterations: used, gap: rel, converged: false}
}
