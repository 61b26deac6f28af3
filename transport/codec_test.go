package transport_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/lineage/transport"
)

func TestTSV_PreservesIdsAndValues(t *testing.T) {
	m := mustMap(t, []string{"c2", "c1"}, []string{"x", "w", "v"}, [][]float64{
		{0.1, 1.0 / 3.0, 0},
		{2e-17, 5, 1234.5678},
	}, transport.WithDays(2, 2.5))

	var buf bytes.Buffer
	require.NoError(t, transport.WriteTSV(&buf, m))

	got, err := transport.ReadTSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, m.RowIDs(), got.RowIDs(), "row order is preserved, not sorted")
	assert.Equal(t, m.ColIDs(), got.ColIDs())
	assert.Equal(t, 2.0, got.SourceDay())
	assert.Equal(t, 2.5, got.TargetDay())
	assert.Equal(t, m.Dense().Values(), got.Dense().Values())
}

func TestReadTSV_WithoutDaysRecord(t *testing.T) {
	in := "id\tx\ty\na\t1\t2\nb\t3\t4\n"
	m, err := transport.ReadTSV(strings.NewReader(in), transport.WithDays(7, 8))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, m.RowIDs())
	assert.Equal(t, 7.0, m.SourceDay())
	v, err := m.Value("b", "y")
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
}

func TestReadTSV_Malformed(t *testing.T) {
	for name, in := range map[string]string{
		"empty":      "",
		"ragged":     "id\tx\ty\na\t1\n",
		"not number": "id\tx\na\tone\n",
		"bad days":   "#days\t1\nid\tx\na\t1\n",
		"no columns": "id\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := transport.ReadTSV(strings.NewReader(in))
			require.ErrorIs(t, err, transport.ErrMalformed)
		})
	}

	_, err := transport.ReadTSV(strings.NewReader("id\tx\na\t-1\n"))
	require.ErrorIs(t, err, transport.ErrInvalidMap)
}
