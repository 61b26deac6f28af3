package ot

import "math"

// learnGrowth re-estimates each growth rate from the realized row mass:
//
//	g'_i = (mass_i / π_i)^(1/Δt), clamped to [g_i/ratio, g_i·ratio]
//
// where π is the normalized source prior. A unit with zero prior keeps its
// rate; a unit whose row mass vanished drops to the lower bound.
//
// Complexity: O(m).
func learnGrowth(mass, prior, prev []float64, dt, ratio float64) []float64 {
	next := make([]float64, len(prev))
	var lo, hi, g float64
	for i := range prev {
		if prior[i] == 0 {
			next[i] = prev[i]
			continue
		}
		lo, hi = prev[i]/ratio, prev[i]*ratio
		if mass[i] <= 0 {
			next[i] = lo
			continue
		}
		g = math.Pow(mass[i]/prior[i], 1/dt)
		next[i] = math.Min(math.Max(g, lo), hi)
	}

	return next
}
