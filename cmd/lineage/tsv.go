package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/katalvlaran/lineage/cost"
	"github.com/katalvlaran/lineage/transport"
)

// readTable reads a tab-separated file with a header line and returns the
// header and the data rows.
func readTable(path string) ([]string, [][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = '\t'
	r.Comment = '#'
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s: empty file", path)
	}

	return rows[0], rows[1:], nil
}

// readColumn reads a two-column "id<TAB>value" file into a map.
func readColumn(path string) (map[string]string, error) {
	_, rows, err := readTable(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for k, row := range rows {
		if len(row) != 2 {
			return nil, fmt.Errorf("%s: row %d: want 2 columns, got %d", path, k+2, len(row))
		}
		out[row[0]] = row[1]
	}

	return out, nil
}

// readFloatColumn is readColumn with numeric values.
func readFloatColumn(path string) (map[string]float64, error) {
	raw, err := readColumn(path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(raw))
	for id, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: id %q: %w", path, id, err)
		}
		out[id] = v
	}

	return out, nil
}

// loadUnits joins a feature matrix with day labels and optional growth rates
// and cluster labels.
// Units without a day label are skipped.
func loadUnits(featuresPath, daysPath, growthPath, clustersPath string) ([]cost.Unit, error) {
	_, rows, err := readTable(featuresPath)
	if err != nil {
		return nil, err
	}
	days, err := readFloatColumn(daysPath)
	if err != nil {
		return nil, err
	}
	var growth map[string]float64
	if growthPath != "" {
		if growth, err = readFloatColumn(growthPath); err != nil {
			return nil, err
		}
	}
	var clusters map[string]string
	if clustersPath != "" {
		if clusters, err = readColumn(clustersPath); err != nil {
			return nil, err
		}
	}

	units := make([]cost.Unit, 0, len(rows))
	for k, row := range rows {
		id := row[0]
		day, ok := days[id]
		if !ok {
			continue
		}
		features := make([]float64, len(row)-1)
		for j, s := range row[1:] {
			if features[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%s: row %d: %w", featuresPath, k+2, err)
			}
		}
		u := cost.Unit{ID: id, Day: day, Features: features, Growth: 1, Cluster: clusters[id]}
		if g, ok := growth[id]; ok {
			u.Growth = g
		}
		units = append(units, u)
	}
	if len(units) == 0 {
		return nil, errors.New("no unit has both features and a day")
	}

	return units, nil
}

// mapPath names the file of one day-pair map.
func mapPath(dir, prefix string, m *transport.Map) string {
	name := fmt.Sprintf("%s_%s_%s.tsv", prefix,
		strconv.FormatFloat(m.SourceDay(), 'g', -1, 64),
		strconv.FormatFloat(m.TargetDay(), 'g', -1, 64))

	return filepath.Join(dir, name)
}

// writeMap writes m as TSV to path.
func writeMap(path string, m *transport.Map) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = transport.WriteTSV(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// loadChain reads every <prefix>_*.tsv map in dir.
func loadChain(dir, prefix string) (*transport.Chain, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"_*.tsv"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s_*.tsv maps in %s", prefix, dir)
	}
	sort.Strings(paths)

	maps := make([]*transport.Map, 0, len(paths))
	for _, p := range paths {
		m, err := readMap(p)
		if err != nil {
			return nil, err
		}
		maps = append(maps, m)
	}

	return transport.NewChain(maps...)
}

func readMap(path string) (*transport.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := transport.ReadTSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, nil
}

// output opens path for writing, or returns w when path is "" or "-".
func output(path string, w io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}

	return f, f.Close, nil
}

// parseDays parses a comma-separated day list such as "0,1.5,3".
func parseDays(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("day filter %q: %w", s, err)
		}
		out = append(out, v)
	}

	return out, nil
}
