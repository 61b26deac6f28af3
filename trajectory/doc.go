// Package trajectory propagates a seed group of units forward and backward
// through a chain of transport maps.
//
// Descendants: the seed indicator at the seed day is treated as a row vector
// and pushed through each later map (y = x·M). Ancestors: it is treated as a
// column vector and pulled through each earlier map (y = M·x). Weights are
// never normalized, so they may exceed 1 or the seed count.
//
// Consecutive maps are aligned by unit id, not by position: the columns of
// one map and the rows of the next need not share an order.
//
// Errors:
//
//   - ErrMissingMap when a day pair needed to reach a requested day is absent,
//     or no map touches the seed day.
//   - ErrUnknownSeed when none of the seed ids exists at the seed day.
//   - ErrInvalidInput for a nil chain or an empty group.
package trajectory

import "errors"

// Sentinel errors returned by the propagator.
var (
	ErrMissingMap   = errors.New("trajectory: missing transport map")
	ErrUnknownSeed  = errors.New("trajectory: no seed id exists at the seed day")
	ErrInvalidInput = errors.New("trajectory: invalid input")
)
