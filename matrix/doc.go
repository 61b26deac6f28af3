// SPDX-License-Identifier: MIT

// Package matrix provides the dense numeric substrate shared by the transport,
// solver, trajectory and cluster packages.
//
// What & Why:
//
//	Transport maps, cost matrices and cluster summaries are all dense,
//	row-major float64 buffers indexed by (row, col). Dense keeps them in a
//	single flat slice (offset = i*cols + j) for cache-friendly kernels, while
//	the Matrix interface lets kernels accept any implementation through a
//	bounds-checked fallback path.
//
// Kernels:
//
//   - Linear algebra: Add, Scale, Mul, MatVec (y = A·x), VecMat (y = x·A).
//   - Broadcast scaling: ScaleRows, ScaleCols (column-wise weighting).
//   - Reductions: Sum, RowSums, ColSums, Median.
//   - Normalization & comparison: NormalizeRowsL1, AllClose.
//
// Determinism & Policy:
//
//   - Fixed loop orders (i→j, or flat 0..n-1 on the *Dense fast path).
//   - Kernels never mutate their operands; every result is a fresh *Dense.
//   - Public surfaces return sentinel errors (errors.go) and never panic on
//     user input.
//
// Complexity quicksheet:
//
//	NewDense O(r*c); At/Set O(1); Clone O(r*c); Mul O(r*n*c); MatVec/VecMat O(r*c).
package matrix
