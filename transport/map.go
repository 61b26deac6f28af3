package transport

import (
	"fmt"

	"github.com/katalvlaran/lineage/matrix"
)

// Map is an immutable unbalanced transport map between two days.
type Map struct {
	rowIDs    []string
	colIDs    []string
	rowIndex  map[string]int
	colIndex  map[string]int
	entries   *matrix.Dense
	sourceDay float64
	targetDay float64
	diag      Diagnostics
}

// Option configures optional Map metadata at construction time.
type Option func(*Map)

// WithDays sets the source and target day labels of the map.
func WithDays(source, target float64) Option {
	return func(m *Map) {
		m.sourceDay = source
		m.targetDay = target
	}
}

// WithDiagnostics attaches solver diagnostics to the map.
func WithDiagnostics(d Diagnostics) Option {
	return func(m *Map) {
		m.diag = d.clone()
	}
}

// New builds a Map from ordered ids and an entry matrix.
//
// Implementation:
//   - Stage 1: shape check (len(rowIDs)==entries.Rows(), len(colIDs)==entries.Cols()).
//   - Stage 2: id check (non-empty, unique per axis) and index construction.
//   - Stage 3: value check (finite, ≥ 0) and deep copy of the entries.
//
// Errors:
//   - ErrInvalidMap (wrapping the matrix sentinel where one applies).
//
// Complexity:
//   - Time O(m·n), Space O(m·n).
func New(rowIDs, colIDs []string, entries matrix.Matrix, opts ...Option) (*Map, error) {
	if err := matrix.ValidateNotNil(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}
	if len(rowIDs) != entries.Rows() || len(colIDs) != entries.Cols() {
		return nil, fmt.Errorf("%w: ids %dx%d, entries %dx%d", ErrInvalidMap,
			len(rowIDs), len(colIDs), entries.Rows(), entries.Cols())
	}
	rowIndex, err := indexIDs(rowIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: rows: %w", ErrInvalidMap, err)
	}
	colIndex, err := indexIDs(colIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: cols: %w", ErrInvalidMap, err)
	}
	if err = matrix.ValidateNonNegative(entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	var dense *matrix.Dense
	if d, ok := entries.(*matrix.Dense); ok {
		dense = d.Clone().(*matrix.Dense)
	} else {
		if dense, err = matrix.NewDense(entries.Rows(), entries.Cols()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
		}
		var i, j int
		var v float64
		for i = 0; i < entries.Rows(); i++ {
			for j = 0; j < entries.Cols(); j++ {
				if v, err = entries.At(i, j); err != nil {
					return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
				}
				_ = dense.Set(i, j, v) // finite: validated above
			}
		}
	}

	m := &Map{
		rowIDs:   append([]string(nil), rowIDs...),
		colIDs:   append([]string(nil), colIDs...),
		rowIndex: rowIndex,
		colIndex: colIndex,
		entries:  dense,
	}
	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

// indexIDs maps each id to its position, rejecting empty and duplicate ids.
func indexIDs(ids []string) (map[string]int, error) {
	idx := make(map[string]int, len(ids))
	for i, id := range ids {
		if id == "" {
			return nil, fmt.Errorf("empty id at %d", i)
		}
		if prev, dup := idx[id]; dup {
			return nil, fmt.Errorf("duplicate id %q at %d and %d", id, prev, i)
		}
		idx[id] = i
	}

	return idx, nil
}

// Rows returns the number of source units.
func (m *Map) Rows() int { return len(m.rowIDs) }

// Cols returns the number of target units.
func (m *Map) Cols() int { return len(m.colIDs) }

// RowIDs returns a copy of the ordered source-unit ids.
func (m *Map) RowIDs() []string { return append([]string(nil), m.rowIDs...) }

// ColIDs returns a copy of the ordered target-unit ids.
func (m *Map) ColIDs() []string { return append([]string(nil), m.colIDs...) }

// RowIndex returns the position of a source-unit id.
func (m *Map) RowIndex(id string) (int, bool) {
	i, ok := m.rowIndex[id]
	return i, ok
}

// ColIndex returns the position of a target-unit id.
func (m *Map) ColIndex(id string) (int, bool) {
	j, ok := m.colIndex[id]
	return j, ok
}

// SourceDay returns the day label of the rows.
func (m *Map) SourceDay() float64 { return m.sourceDay }

// TargetDay returns the day label of the columns.
func (m *Map) TargetDay() float64 { return m.targetDay }

// Diagnostics returns a copy of the solver diagnostics (zero value for loaded maps).
func (m *Map) Diagnostics() Diagnostics { return m.diag.clone() }

// At returns entry (i,j) by position.
func (m *Map) At(i, j int) (float64, error) { return m.entries.At(i, j) }

// Value returns the mass transported from rowID to colID.
// Errors: ErrUnknownID.
func (m *Map) Value(rowID, colID string) (float64, error) {
	i, ok := m.rowIndex[rowID]
	if !ok {
		return 0, fmt.Errorf("%w: row %q", ErrUnknownID, rowID)
	}
	j, ok := m.colIndex[colID]
	if !ok {
		return 0, fmt.Errorf("%w: col %q", ErrUnknownID, colID)
	}

	return m.entries.At(i, j)
}

// Dense returns a copy of the entry matrix.
func (m *Map) Dense() *matrix.Dense { return m.entries.Clone().(*matrix.Dense) }

// RowSums returns the realized mass leaving each source unit.
func (m *Map) RowSums() []float64 {
	rs, _ := matrix.RowSums(m.entries) // non-nil by construction

	return rs
}

// ColSums returns the realized mass arriving at each target unit.
func (m *Map) ColSums() []float64 {
	cs, _ := matrix.ColSums(m.entries)

	return cs
}

// Total returns the sum of all entries.
func (m *Map) Total() float64 {
	s, _ := matrix.Sum(m.entries)

	return s
}

// Push maps a row-side weight vector forward: y = x·M (len(y) == Cols()).
// Errors: matrix.ErrDimensionMismatch when len(x) != Rows().
func (m *Map) Push(x []float64) ([]float64, error) { return matrix.VecMat(x, m.entries) }

// Pull maps a column-side weight vector backward: y = M·x (len(y) == Rows()).
// Errors: matrix.ErrDimensionMismatch when len(x) != Cols().
func (m *Map) Pull(x []float64) ([]float64, error) { return matrix.MatVec(m.entries, x) }
