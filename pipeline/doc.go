// Package pipeline solves every consecutive day pair of a population in
// parallel and returns the ordered chain of transport maps.
//
// Each pair is an independent solver invocation: units are grouped by day,
// the squared-euclidean cost between consecutive days is normalized by its
// median, options are resolved per pair from a config.Config, and the pair
// is solved with ot.Solve. Pairs run concurrently up to a configurable
// limit; the context is checked before each pair starts.
//
// Every run gets a uuid attached to its logs and spans. Optional
// Prometheus metrics and an OpenTelemetry tracer observe each pair.
package pipeline

import "errors"

// ErrInvalidInput indicates fewer than two days or a duplicated unit id.
var ErrInvalidInput = errors.New("pipeline: invalid input")
