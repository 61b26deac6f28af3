package cluster_test

import (
	"fmt"

	"github.com/katalvlaran/lineage/cluster"
	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/transport"
)

// ExampleByCluster sums a 2×3 map into a 2×2 cluster map.
func ExampleByCluster() {
	d, _ := matrix.NewFromRows([][]float64{{1, 2, 3}, {4, 5, 6}})
	m, _ := transport.New([]string{"a", "b"}, []string{"x", "y", "z"}, d)
	l := cluster.Labeling{"a": "early", "b": "late", "x": "early", "y": "late", "z": "late"}

	out, err := cluster.ByCluster(m, l, []string{"early", "late"})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Print(out.Dense())
	// Output:
	// [1, 5]
	// [4, 11]
}
