package cluster

import (
	"fmt"

	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/transport"
)

// ByCluster sums m over blocks of (row cluster, column cluster).
//
// Implementation:
//   - Stage 1: build the k×r row assignment A and the c×k column assignment B
//     (A[p,i] = 1 when row unit i is labeled clusterIDs[p]).
//   - Stage 2: return A·M·B as a square map indexed by clusterIDs on both axes.
//
// Behavior highlights:
//   - Rows and columns are grouped independently by the same labeling.
//   - Unlabeled units and units in clusters outside clusterIDs are dropped.
//   - Source/target days and diagnostics of m carry over.
//
// Errors:
//   - ErrInvalidInput, ErrUnknownCluster (see Weights).
//
// Complexity:
//   - Time O(k·r·c), Space O(k·max(r,c)).
func ByCluster(m *transport.Map, l Labeling, clusterIDs []string) (*transport.Map, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: nil map", ErrInvalidInput)
	}
	idx, err := l.index(clusterIDs)
	if err != nil {
		return nil, err
	}

	a, err := assignment(m.RowIDs(), l, idx, len(clusterIDs), true)
	if err != nil {
		return nil, err
	}
	b, err := assignment(m.ColIDs(), l, idx, len(clusterIDs), false)
	if err != nil {
		return nil, err
	}
	am, err := matrix.Mul(a, m.Dense())
	if err != nil {
		return nil, err
	}
	out, err := matrix.Mul(am, b)
	if err != nil {
		return nil, err
	}

	return transport.New(clusterIDs, clusterIDs, out,
		transport.WithDays(m.SourceDay(), m.TargetDay()),
		transport.WithDiagnostics(m.Diagnostics()))
}

// assignment builds the 0/1 cluster membership matrix of ids: k×n when
// transposed is true, n×k otherwise.
func assignment(ids []string, l Labeling, idx map[string]int, k int, transposed bool) (*matrix.Dense, error) {
	n := len(ids)
	rows, cols := n, k
	if transposed {
		rows, cols = k, n
	}
	out, err := matrix.NewDense(rows, cols)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		c, ok := l[id]
		if !ok {
			continue
		}
		p, ok := idx[c]
		if !ok {
			continue
		}
		if transposed {
			err = out.Set(p, i, 1)
		} else {
			err = out.Set(i, p, 1)
		}
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// WeightedAverage combines maps column-wise: result[:,c] = Σ_t weights[t][c]·maps[t][:,c].
//
// All maps must carry the same row id set and the same column id set; later
// maps are realigned to the id order of the first. Weights need not sum to 1.
// The result spans the first map's source day to the last map's target day.
//
// Errors:
//   - ErrInvalidInput when maps is empty or holds a nil map.
//   - ErrShapeMismatch for differing id sets or a weight table of the wrong shape.
//
// Complexity:
//   - Time O(T·r·c), Space O(r·c).
func WeightedAverage(maps []*transport.Map, weights [][]float64) (*transport.Map, error) {
	if len(maps) == 0 {
		return nil, fmt.Errorf("%w: no maps", ErrInvalidInput)
	}
	if len(weights) != len(maps) {
		return nil, fmt.Errorf("%w: %d weight rows for %d maps", ErrShapeMismatch, len(weights), len(maps))
	}
	for t, m := range maps {
		if m == nil {
			return nil, fmt.Errorf("%w: map %d is nil", ErrInvalidInput, t)
		}
	}

	first := maps[0]
	rowIDs, colIDs := first.RowIDs(), first.ColIDs()
	var acc *matrix.Dense
	for t, m := range maps {
		if len(weights[t]) != len(colIDs) {
			return nil, fmt.Errorf("%w: weight row %d has %d entries, want %d", ErrShapeMismatch, t, len(weights[t]), len(colIDs))
		}
		d, err := realign(m, rowIDs, colIDs)
		if err != nil {
			return nil, fmt.Errorf("map %d: %w", t, err)
		}
		term, err := matrix.ScaleCols(d, weights[t])
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = term
			continue
		}
		if acc, err = matrix.Add(acc, term); err != nil {
			return nil, err
		}
	}

	return transport.New(rowIDs, colIDs, acc,
		transport.WithDays(first.SourceDay(), maps[len(maps)-1].TargetDay()))
}

// realign returns m's entries laid out in the given id order.
func realign(m *transport.Map, rowIDs, colIDs []string) (*matrix.Dense, error) {
	if m.Rows() != len(rowIDs) || m.Cols() != len(colIDs) {
		return nil, fmt.Errorf("%w: %dx%d, want %dx%d", ErrShapeMismatch, m.Rows(), m.Cols(), len(rowIDs), len(colIDs))
	}
	rowPos := make([]int, len(rowIDs))
	for i, id := range rowIDs {
		p, ok := m.RowIndex(id)
		if !ok {
			return nil, fmt.Errorf("%w: row id %q missing", ErrShapeMismatch, id)
		}
		rowPos[i] = p
	}
	colPos := make([]int, len(colIDs))
	for j, id := range colIDs {
		p, ok := m.ColIndex(id)
		if !ok {
			return nil, fmt.Errorf("%w: column id %q missing", ErrShapeMismatch, id)
		}
		colPos[j] = p
	}

	out, err := matrix.NewDense(len(rowIDs), len(colIDs))
	if err != nil {
		return nil, err
	}
	var v float64
	for i, pi := range rowPos {
		for j, pj := range colPos {
			if v, err = m.At(pi, pj); err != nil {
				return nil, err
			}
			if err = out.Set(i, j, v); err != nil {
				return nil, err
			}
		}
	}

	return out, nil
}
