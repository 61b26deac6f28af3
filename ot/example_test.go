package ot_test

import (
	"fmt"

	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/ot"
)

// ExampleSolve solves one day pair with fixed regularization.
func ExampleSolve() {
	day0 := []cost.Unit{
		{ID: "a", Features: []float64{0, 0}},
		{ID: "b", Features: []float64{1, 0}},
	}
	day1 := []cost.Unit{
		{ID: "x", Features: []float64{0, 0.1}},
		{ID: "y", Features: []float64{1, 0.1}},
	}
	c, _ := cost.SquaredEuclidean(day0, day1)

	m, err := ot.Solve(ot.Problem{
		Cost:       c,
		RowIDs:     cost.IDs(day0),
		ColIDs:     cost.IDs(day1),
		GrowthRate: []float64{1, 1},
		SourceDay:  0,
		TargetDay:  1,
	},
		ot.WithAdaptiveSearch(false),
		ot.WithLambda(1, 1),
		ot.WithEpsilon(0.05),
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	ax, _ := m.Value("a", "x")
	ay, _ := m.Value("a", "y")
	fmt.Println(m.Diagnostics().Converged, ax > 100*ay)
	// Output:
	// true true
}
