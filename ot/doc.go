// Package ot solves entropy-regularized unbalanced optimal transport with
// per-unit growth priors.
//
// What & Why:
//
//	Given a nonnegative m×n cost matrix C, source/target priors and a growth
//	rate per source unit, Solve returns the transport map R minimizing
//
//	  ⟨C,R⟩ + ε·Σ(R log R − R) + λ1·KL(R·1 | p) + λ2·KL(Rᵀ·1 | q)
//
//	where p_i = prior_i/Σprior · growth_i^Δt and q_j = prior_j/Σprior · Σp.
//	The KL penalties make the marginals soft, so total mass may change
//	between days; as λ1,λ2 → ∞ the problem becomes balanced Sinkhorn.
//
// Algorithm:
//
//   - Scaling runs entirely in the log domain on dual potentials f (m) and
//     g (n) with log-sum-exp reductions, so small ε never overflows:
//     f_i = λ1/(λ1+ε)·ε·(log p_i − LSE_j((g_j − C_ij)/ε)) and symmetrically for g.
//   - MethodDualityGap anneals ε geometrically from Epsilon0 down to ε
//     (warm-starting the potentials), then checks the relative primal-dual
//     gap every BatchSize updates until it drops below Tolerance or MaxIter
//     updates are spent. MethodFixedIters runs exactly ScalingIter updates.
//   - The adaptive search multiplies λ1,λ2 by LambdaAdjust while the growth
//     fit stays below MinGrowthFit (up to L0Max), and moves ε by EpsilonAdjust
//     until the mean row perplexity lies in
//     [MinTransportFraction·n, MaxTransportFraction·n).
//   - The growth loop re-solves GrowthIters times, re-estimating each growth
//     rate from its realized row mass, bounded by a factor of GrowthRatio per round.
//
// Errors:
//
//   - ErrInvalidInput for inconsistent shapes, negative or non-finite values,
//     empty marginals and invalid options.
//   - ErrNonConvergence only with WithStrictConvergence; otherwise the map is
//     returned with Diagnostics.Converged == false.
//
// Complexity:
//
//	Each scaling update is O(m·n) exp/log evaluations; a gap check is O(m·n).
package ot
