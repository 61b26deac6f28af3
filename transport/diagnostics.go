package transport

// Diagnostics records how a Map was produced by the solver.
//
// Epsilon, Lambda1 and Lambda2 are the realized values after the adaptive
// search; Converged reports whether the duality-gap criterion was met in the
// final growth round (always true for fixed-iteration solves).
type Diagnostics struct {
	Epsilon   float64 // realized entropic regularization
	Lambda1   float64 // realized row-marginal fidelity weight
	Lambda2   float64 // realized column-marginal fidelity weight
	Converged bool    // duality-gap criterion met

	Iterations   int       // scaling updates in the final solve
	DualityGap   float64   // relative primal-dual gap at the last check
	GrowthFit    float64   // 1 - ||rowmass - expected||² / ||expected||²
	Perplexity   float64   // mean per-row exp(entropy) of the row-normalized map
	SearchRounds int       // adaptive search rounds in the final growth round
	GrowthRate   []float64 // growth rates used by the final solve (per source unit)
}

// clone deep-copies d so callers never share the GrowthRate slice.
func (d Diagnostics) clone() Diagnostics {
	if d.GrowthRate != nil {
		d.GrowthRate = append([]float64(nil), d.GrowthRate...)
	}

	return d
}
