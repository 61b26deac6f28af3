package cost

// Unit is an observed item. Identity is the ID string.
type Unit struct {
	ID       string    // unique within its day
	Day      float64   // time-point label
	Features []float64 // coordinates used for cost computation
	Growth   float64   // expected per-day multiplicative growth (1 = none)
	Cluster  string    // optional cluster label
}

// IDs returns the ids of units in order.
func IDs(units []Unit) []string {
	ids := make([]string, len(units))
	for i := range units {
		ids[i] = units[i].ID
	}

	return ids
}

// GrowthRates returns the growth prior of each unit in order.
func GrowthRates(units []Unit) []float64 {
	g := make([]float64, len(units))
	for i := range units {
		g[i] = units[i].Growth
	}

	return g
}
