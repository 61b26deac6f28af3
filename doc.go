// Package lineage computes probabilistic correspondences between snapshots of
// a population observed at successive days, and follows units and clusters
// through them.
//
// The pieces are organized as one package per concern:
//
//	matrix/      - row-major Dense buffer and the kernels the rest builds on
//	transport/   - Map (ordered ids + nonnegative entries + diagnostics), Chain, TSV codec
//	cost/        - Unit and the median-normalized squared-euclidean cost
//	ot/          - entropic unbalanced transport with growth priors, ε-annealing,
//	               adaptive λ/ε search and growth-rate learning
//	trajectory/  - ancestor and descendant mass of a seed set through a Chain
//	cluster/     - cluster weights, collapse by cluster, column-wise time averaging
//	pipeline/    - concurrent solving of every consecutive day pair
//	config/      - YAML, parameter-file and environment overrides per day pair
//	cmd/lineage  - command line: ot, trajectory, summarize
//
// Quick example:
//
//	c, _ := cost.SquaredEuclidean(day0, day1)
//	m, err := ot.Solve(ot.Problem{Cost: c, RowIDs: cost.IDs(day0), ColIDs: cost.IDs(day1),
//		GrowthRate: cost.GrowthRates(day0), SourceDay: 0, TargetDay: 1})
//	chain, _ := transport.NewChain(m, next)
//	res, _ := trajectory.Propagate([]string{"u7"}, 0, chain)
package lineage
