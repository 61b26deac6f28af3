package trajectory_test

import (
	"fmt"

	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/trajectory"
	"github.com/katalvlaran/lineage/transport"
)

// ExamplePropagate follows one unit through two days.
func ExamplePropagate() {
	first, _ := matrix.NewFromRows([][]float64{{0.5, 1.5}})
	second, _ := matrix.NewFromRows([][]float64{{2, 0}, {1, 1}})
	m01, _ := transport.New([]string{"a"}, []string{"b", "c"}, first, transport.WithDays(0, 1))
	m12, _ := transport.New([]string{"b", "c"}, []string{"d", "e"}, second, transport.WithDays(1, 2))
	chain, _ := transport.NewChain(m01, m12)

	res, err := trajectory.Propagate([]string{"a"}, 0, chain)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, day := range res.Days() {
		w := res.Descendants[day]
		fmt.Println(day, w.Total())
	}
	// Output:
	// 1 2
	// 2 4
}
