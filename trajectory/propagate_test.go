package trajectory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineage/matrix"
	"github.com/katalvlaran/lineage/trajectory"
	"github.com/katalvlaran/lineage/transport"
)

func mustMap(t *testing.T, src, dst float64, rowIDs, colIDs []string, rows [][]float64) *transport.Map {
	t.Helper()
	d, err := matrix.NewFromRows(rows)
	require.NoError(t, err)
	m, err := transport.New(rowIDs, colIDs, d, transport.WithDays(src, dst))
	require.NoError(t, err)

	return m
}

// fixture returns maps 0→1, 1→2, 2→3. The 1→2 map lists its rows in a
// different order than the columns of 0→1.
func fixture(t *testing.T) (m01, m12, m23 *transport.Map) {
	t.Helper()
	m01 = mustMap(t, 0, 1, []string{"a0", "b0"}, []string{"a1", "b1", "c1"},
		[][]float64{{1, 2, 0}, {0, 1, 3}})
	m12 = mustMap(t, 1, 2, []string{"c1", "a1", "b1"}, []string{"a2", "b2"},
		[][]float64{{1, 1}, {2, 0}, {0, 3}})
	m23 = mustMap(t, 2, 3, []string{"a2", "b2"}, []string{"a3", "b3"},
		[][]float64{{1, 2}, {3, 1}})

	return m01, m12, m23
}

func fullChain(t *testing.T) *transport.Chain {
	t.Helper()
	m01, m12, m23 := fixture(t)
	c, err := transport.NewChain(m23, m01, m12)
	require.NoError(t, err)

	return c
}

func TestPropagate_GroupSumsSeeds(t *testing.T) {
	res, err := trajectory.Propagate([]string{"a1", "b1"}, 1, fullChain(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "b1"}, res.Seeds)
	assert.Equal(t, []float64{0, 2, 3}, res.Days())
	assert.Equal(t, trajectory.Weights{"a2": 2, "b2": 3}, res.Descendants[2])
	assert.Equal(t, trajectory.Weights{"a3": 11, "b3": 7}, res.Descendants[3])
	assert.Equal(t, trajectory.Weights{"a0": 3, "b0": 1}, res.Ancestors[0])
	assert.Len(t, res.Ancestors, 1)
}

func TestPropagate_MatchesComposition(t *testing.T) {
	m01, _, m23 := fixture(t)
	// 1→2 with rows realigned to the column order of 0→1.
	aligned, err := matrix.NewFromRows([][]float64{{2, 0}, {0, 3}, {1, 1}})
	require.NoError(t, err)

	first, err := matrix.Mul(m01.Dense(), aligned)
	require.NoError(t, err)
	composed, err := matrix.Mul(first, m23.Dense())
	require.NoError(t, err)

	chain := fullChain(t)
	for i, id := range []string{"a0", "b0"} {
		res, err := trajectory.Propagate([]string{id}, 0, chain)
		require.NoError(t, err)
		want, err := composed.Row(i)
		require.NoError(t, err)
		got := res.Descendants[3]
		assert.Equal(t, want, []float64{got["a3"], got["b3"]}, id)
	}

	for j, id := range []string{"a3", "b3"} {
		res, err := trajectory.Propagate([]string{id}, 3, chain)
		require.NoError(t, err)
		want, err := composed.Col(j)
		require.NoError(t, err)
		got := res.Ancestors[0]
		assert.Equal(t, want, []float64{got["a0"], got["b0"]}, id)
	}

	// No normalization: mass grows well past the single seed.
	res, err := trajectory.Propagate([]string{"a0"}, 0, chain)
	require.NoError(t, err)
	assert.Equal(t, 30.0, res.Descendants[3].Total())
}

func TestPropagate_SingleSeedExtractsRowAndColumn(t *testing.T) {
	chain := fullChain(t)

	res, err := trajectory.Propagate([]string{"b0"}, 0, chain)
	require.NoError(t, err)
	assert.Equal(t, trajectory.Weights{"a1": 0, "b1": 1, "c1": 3}, res.Descendants[1])
	assert.Empty(t, res.Ancestors)

	res, err = trajectory.Propagate([]string{"c1"}, 1, chain)
	require.NoError(t, err)
	assert.Equal(t, trajectory.Weights{"a0": 0, "b0": 3}, res.Ancestors[0])
}

func TestPropagate_UnknownIDsAreIgnored(t *testing.T) {
	res, err := trajectory.Propagate([]string{"a1", "ghost"}, 1, fullChain(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.Seeds)
	assert.Equal(t, trajectory.Weights{"a2": 2, "b2": 0}, res.Descendants[2])
}

func TestPropagate_DayRange(t *testing.T) {
	res, err := trajectory.Propagate([]string{"a1"}, 1, fullChain(t), trajectory.WithDayRange(1, 2))
	require.NoError(t, err)
	assert.Empty(t, res.Ancestors)
	assert.Equal(t, []float64{2}, res.Days())

	assert.Panics(t, func() { trajectory.WithDayRange(3, 1) })
}

func TestPropagate_Errors(t *testing.T) {
	m01, _, m23 := fixture(t)
	gappy, err := transport.NewChain(m01, m23)
	require.NoError(t, err)
	chain := fullChain(t)

	tests := []struct {
		name  string
		group []string
		day   float64
		chain *transport.Chain
		opts  []trajectory.Option
		want  error
	}{
		{"nil chain", []string{"a0"}, 0, nil, nil, trajectory.ErrInvalidInput},
		{"empty group", nil, 0, chain, nil, trajectory.ErrInvalidInput},
		{"unknown seed", []string{"zz"}, 1, chain, nil, trajectory.ErrUnknownSeed},
		{"uncovered seed day", []string{"a0"}, 7, chain, nil, trajectory.ErrMissingMap},
		{"forward gap", []string{"a0"}, 0, gappy, nil, trajectory.ErrMissingMap},
		{"backward gap", []string{"a3"}, 3, gappy, nil, trajectory.ErrMissingMap},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := trajectory.Propagate(tc.group, tc.day, tc.chain, tc.opts...)
			require.ErrorIs(t, err, tc.want)
		})
	}

	// A window that stops before the gap is fine.
	res, err := trajectory.Propagate([]string{"a0"}, 0, gappy, trajectory.WithDayRange(0, 1))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Days())
}

func TestPropagateGroups(t *testing.T) {
	groups := map[string][]string{
		"left":  {"a1"},
		"right": {"b1", "c1"},
	}
	out, err := trajectory.PropagateGroups(groups, 1, fullChain(t))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, trajectory.Weights{"a2": 2, "b2": 0}, out["left"].Descendants[2])
	assert.Equal(t, trajectory.Weights{"a2": 1, "b2": 4}, out["right"].Descendants[2])

	groups["broken"] = []string{"nope"}
	_, err = trajectory.PropagateGroups(groups, 1, fullChain(t))
	require.ErrorIs(t, err, trajectory.ErrUnknownSeed)
	assert.Contains(t, err.Error(), `group "broken"`)
}
