package transport

import "errors"

// Sentinel errors returned by the transport package.
var (
	// ErrInvalidMap indicates inconsistent ids/shape, duplicate ids, or
	// negative / non-finite entries.
	ErrInvalidMap = errors.New("transport: invalid map")

	// ErrUnknownID indicates that a row or column id is not present in the map.
	ErrUnknownID = errors.New("transport: unknown id")

	// ErrInvalidChain indicates a nil map, a map whose target day does not
	// follow its source day, or two maps sharing a source day.
	ErrInvalidChain = errors.New("transport: invalid chain")

	// ErrMalformed indicates a TSV document that cannot be decoded into a Map.
	ErrMalformed = errors.New("transport: malformed tsv")
)
