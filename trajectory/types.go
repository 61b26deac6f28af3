package trajectory

import (
	"math"
	"sort"
)

// Weights maps unit id to accumulated (unnormalized) mass.
type Weights map[string]float64

// Total returns the sum of all weights.
func (w Weights) Total() float64 {
	var s float64
	for _, id := range w.ids() {
		s += w[id]
	}

	return s
}

// ids returns the keys in sorted order so sums are reproducible.
func (w Weights) ids() []string {
	out := make([]string, 0, len(w))
	for id := range w {
		out = append(out, id)
	}
	sort.Strings(out)

	return out
}

// Result is the trajectory of one seed group.
type Result struct {
	SeedDay     float64
	Seeds       []string            // seed ids found at the seed day
	Ancestors   map[float64]Weights // days < SeedDay
	Descendants map[float64]Weights // days > SeedDay
}

// Days returns every day with weights, ancestors first, in increasing order.
func (r *Result) Days() []float64 {
	days := make([]float64, 0, len(r.Ancestors)+len(r.Descendants))
	for d := range r.Ancestors {
		days = append(days, d)
	}
	for d := range r.Descendants {
		days = append(days, d)
	}
	sort.Float64s(days)

	return days
}

// At returns the weights at day, from whichever side holds it.
func (r *Result) At(day float64) (Weights, bool) {
	if w, ok := r.Ancestors[day]; ok {
		return w, true
	}
	w, ok := r.Descendants[day]

	return w, ok
}

// Options restricts propagation to a day window.
type Options struct {
	From float64 // earliest day to reach (inclusive)
	To   float64 // latest day to reach (inclusive)
}

// Option represents a functional option for configuring Propagate.
type Option func(*Options)

// WithDayRange limits propagation to days in [from, to]. Panics if from > to.
func WithDayRange(from, to float64) Option {
	if from > to {
		panic("trajectory: from must be <= to")
	}
	return func(o *Options) {
		o.From = from
		o.To = to
	}
}

// DefaultOptions spans every day of the chain.
func DefaultOptions() Options {
	return Options{From: math.Inf(-1), To: math.Inf(1)}
}
