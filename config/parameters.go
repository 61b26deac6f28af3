package config

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// FromParameters decodes a two-column parameter file: one "name value" pair
// per line, separated by tabs or spaces. Blank lines and lines starting with
// '#' are skipped. Names follow the YAML keys (epsilon, lambda1, max_iter, ...).
func FromParameters(r io.Reader) (Params, error) {
	raw := make(map[string]any)
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		if len(fields) != 2 {
			return Params{}, fmt.Errorf("%w: line %d: want 2 columns, got %d", ErrInvalidConfig, line, len(fields))
		}
		raw[fields[0]] = scalar(fields[1])
	}
	if err := sc.Err(); err != nil {
		return Params{}, err
	}

	return decodeParams(raw)
}

// scalar turns numeric text into float64 so "1e7" can land in an int field.
func scalar(s string) any {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

// decodeParams maps loosely typed values onto Params, rejecting unknown names.
func decodeParams(raw map[string]any) (Params, error) {
	var p Params
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return Params{}, err
	}
	if err = dec.Decode(raw); err != nil {
		return Params{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return p, nil
}
