// Package transport defines the transport map exchanged between the solver,
// the trajectory propagator and the cluster aggregator.
//
// A Map is a dense nonnegative matrix whose rows are indexed by the ordered
// ids of the source units (earlier day) and whose columns are indexed by the
// ordered ids of the target units (later day). Entry (i,j) is the mass
// transported from source unit i to target unit j. No row or column sum
// constraint is imposed: maps are unbalanced, row sums track growth.
//
// Ownership:
//
//	A Map owns its id sequences and its entry buffer. Constructors copy their
//	inputs and accessors return copies, so a Map is immutable once built and
//	may be shared freely between goroutines.
//
// Chains:
//
//	Chain orders maps by source day and indexes them by day for consecutive
//	lookups. A Chain may have gaps; consumers that need contiguity report
//	their own error when a day pair is missing.
//
// Codec:
//
//	WriteTSV / ReadTSV persist the ordered ids and the entries with full
//	float64 precision (strconv 'g', -1).
package transport
