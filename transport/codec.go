package transport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/katalvlaran/lineage/matrix"
)

const (
	tsvCorner  = "id"    // header cell above the row ids
	tsvDaysTag = "#days" // optional first record: #days <source> <target>
)

// WriteTSV encodes m as tab-separated text:
//
//	#days	<source>	<target>
//	id	<col id>	<col id>	...
//	<row id>	<v>	<v>	...
//
// Values use strconv 'g' with precision -1 so ReadTSV restores them exactly.
func WriteTSV(w io.Writer, m *Map) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write([]string{tsvDaysTag, formatFloat(m.sourceDay), formatFloat(m.targetDay)}); err != nil {
		return fmt.Errorf("transport: write days: %w", err)
	}
	header := make([]string, 0, len(m.colIDs)+1)
	header = append(header, tsvCorner)
	header = append(header, m.colIDs...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("transport: write header: %w", err)
	}

	record := make([]string, len(m.colIDs)+1)
	values := m.entries.Values()
	cols := len(m.colIDs)
	var i, j int
	for i = 0; i < len(m.rowIDs); i++ {
		record[0] = m.rowIDs[i]
		for j = 0; j < cols; j++ {
			record[j+1] = formatFloat(values[i*cols+j])
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("transport: write row %q: %w", m.rowIDs[i], err)
		}
	}
	cw.Flush()

	return cw.Error()
}

// ReadTSV decodes a map written by WriteTSV. The "#days" record is optional;
// WithDays passed in opts overrides it.
//
// Errors:
//   - ErrMalformed for ragged rows, unparsable numbers or a missing header.
//   - ErrInvalidMap for duplicate ids or negative entries.
func ReadTSV(r io.Reader, opts ...Option) (*Map, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1 // the days record is shorter than the matrix rows
	cr.ReuseRecord = true

	var (
		days    []Option
		colIDs  []string
		rowIDs  []string
		values  []float64
		lineNum int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		lineNum++

		switch {
		case colIDs == nil && len(rec) > 0 && rec[0] == tsvDaysTag:
			if len(rec) != 3 {
				return nil, fmt.Errorf("%w: line %d: days record needs 2 values", ErrMalformed, lineNum)
			}
			src, err1 := strconv.ParseFloat(rec[1], 64)
			dst, err2 := strconv.ParseFloat(rec[2], 64)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: bad day label", ErrMalformed, lineNum)
			}
			days = append(days, WithDays(src, dst))
		case colIDs == nil:
			if len(rec) < 2 {
				return nil, fmt.Errorf("%w: line %d: header has no columns", ErrMalformed, lineNum)
			}
			colIDs = append([]string(nil), rec[1:]...)
		default:
			if len(rec) != len(colIDs)+1 {
				return nil, fmt.Errorf("%w: line %d: %d fields, want %d", ErrMalformed, lineNum, len(rec), len(colIDs)+1)
			}
			rowIDs = append(rowIDs, rec[0])
			for _, cell := range rec[1:] {
				v, perr := strconv.ParseFloat(cell, 64)
				if perr != nil {
					return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNum, perr)
				}
				values = append(values, v)
			}
		}
	}
	if colIDs == nil || len(rowIDs) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrMalformed)
	}

	dense, err := matrix.NewFromSlice(len(rowIDs), len(colIDs), values)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidMap, err)
	}

	return New(rowIDs, colIDs, dense, append(days, opts...)...)
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
