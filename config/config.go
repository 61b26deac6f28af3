// Package config resolves solver parameters for each day pair from a YAML
// document, a two-column parameter file and LINEAGE_* environment variables.
//
// Precedence, lowest first: ot.DefaultOptions, Config.Defaults (after
// ApplyEnv and MergeDefaults), then the pair override keyed "t0_t1".
// Resolved options are plain values; nothing here is process-wide.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lineage/ot"
)

// ErrInvalidConfig indicates a document, parameter or override that cannot
// be turned into valid solver options.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// Params is a partial set of solver parameters; nil fields are unset.
type Params struct {
	Solver               *string  `yaml:"solver" mapstructure:"solver" env:"SOLVER"`
	Epsilon              *float64 `yaml:"epsilon" mapstructure:"epsilon" env:"EPSILON"`
	Lambda1              *float64 `yaml:"lambda1" mapstructure:"lambda1" env:"LAMBDA1"`
	Lambda2              *float64 `yaml:"lambda2" mapstructure:"lambda2" env:"LAMBDA2"`
	Epsilon0             *float64 `yaml:"epsilon0" mapstructure:"epsilon0" env:"EPSILON0"`
	Tau                  *float64 `yaml:"tau" mapstructure:"tau" env:"TAU"`
	ScalingIter          *int     `yaml:"scaling_iter" mapstructure:"scaling_iter" env:"SCALING_ITER"`
	InnerIterMax         *int     `yaml:"inner_iter_max" mapstructure:"inner_iter_max" env:"INNER_ITER_MAX"`
	MaxIter              *int     `yaml:"max_iter" mapstructure:"max_iter" env:"MAX_ITER"`
	BatchSize            *int     `yaml:"batch_size" mapstructure:"batch_size" env:"BATCH_SIZE"`
	Tolerance            *float64 `yaml:"tolerance" mapstructure:"tolerance" env:"TOLERANCE"`
	GrowthIters          *int     `yaml:"growth_iters" mapstructure:"growth_iters" env:"GROWTH_ITERS"`
	GrowthRatio          *float64 `yaml:"growth_ratio" mapstructure:"growth_ratio" env:"GROWTH_RATIO"`
	AdaptiveSearch       *bool    `yaml:"adaptive_search" mapstructure:"adaptive_search" env:"ADAPTIVE_SEARCH"`
	MinGrowthFit         *float64 `yaml:"min_growth_fit" mapstructure:"min_growth_fit" env:"MIN_GROWTH_FIT"`
	MinTransportFraction *float64 `yaml:"min_transport_fraction" mapstructure:"min_transport_fraction" env:"MIN_TRANSPORT_FRACTION"`
	MaxTransportFraction *float64 `yaml:"max_transport_fraction" mapstructure:"max_transport_fraction" env:"MAX_TRANSPORT_FRACTION"`
	L0Max                *float64 `yaml:"l0_max" mapstructure:"l0_max" env:"L0_MAX"`
}

// Merge returns p with every field set in over replacing p's.
func (p Params) Merge(over Params) Params {
	out := p
	if over.Solver != nil {
		out.Solver = over.Solver
	}
	mergeFloat(&out.Epsilon, over.Epsilon)
	mergeFloat(&out.Lambda1, over.Lambda1)
	mergeFloat(&out.Lambda2, over.Lambda2)
	mergeFloat(&out.Epsilon0, over.Epsilon0)
	mergeFloat(&out.Tau, over.Tau)
	mergeInt(&out.ScalingIter, over.ScalingIter)
	mergeInt(&out.InnerIterMax, over.InnerIterMax)
	mergeInt(&out.MaxIter, over.MaxIter)
	mergeInt(&out.BatchSize, over.BatchSize)
	mergeFloat(&out.Tolerance, over.Tolerance)
	mergeInt(&out.GrowthIters, over.GrowthIters)
	mergeFloat(&out.GrowthRatio, over.GrowthRatio)
	if over.AdaptiveSearch != nil {
		out.AdaptiveSearch = over.AdaptiveSearch
	}
	mergeFloat(&out.MinGrowthFit, over.MinGrowthFit)
	mergeFloat(&out.MinTransportFraction, over.MinTransportFraction)
	mergeFloat(&out.MaxTransportFraction, over.MaxTransportFraction)
	mergeFloat(&out.L0Max, over.L0Max)

	return out
}

func mergeFloat(dst **float64, v *float64) {
	if v != nil {
		*dst = v
	}
}

func mergeInt(dst **int, v *int) {
	if v != nil {
		*dst = v
	}
}

// apply writes the set fields into o.
func (p Params) apply(o *ot.Options) error {
	if p.Solver != nil {
		m, err := ot.ParseMethod(*p.Solver)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		o.Method = m
	}
	setFloat(&o.Epsilon, p.Epsilon)
	setFloat(&o.Lambda1, p.Lambda1)
	setFloat(&o.Lambda2, p.Lambda2)
	setFloat(&o.Epsilon0, p.Epsilon0)
	setFloat(&o.Tau, p.Tau)
	setInt(&o.ScalingIter, p.ScalingIter)
	setInt(&o.InnerIterMax, p.InnerIterMax)
	setInt(&o.MaxIter, p.MaxIter)
	setInt(&o.BatchSize, p.BatchSize)
	setFloat(&o.Tolerance, p.Tolerance)
	setInt(&o.GrowthIters, p.GrowthIters)
	setFloat(&o.GrowthRatio, p.GrowthRatio)
	if p.AdaptiveSearch != nil {
		o.AdaptiveSearch = *p.AdaptiveSearch
	}
	setFloat(&o.MinGrowthFit, p.MinGrowthFit)
	setFloat(&o.MinTransportFraction, p.MinTransportFraction)
	setFloat(&o.MaxTransportFraction, p.MaxTransportFraction)
	setFloat(&o.L0Max, p.L0Max)

	return nil
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

// Config is an immutable-by-convention run configuration.
type Config struct {
	Defaults Params            `yaml:"defaults"`
	Pairs    map[string]Params `yaml:"pairs"` // keyed by PairKey
}

// PairKey formats the override key of a day pair, e.g. "7_7.5".
func PairKey(source, target float64) string {
	return strconv.FormatFloat(source, 'g', -1, 64) + "_" + strconv.FormatFloat(target, 'g', -1, 64)
}

// parsePairKey is the inverse of PairKey.
func parsePairKey(key string) (source, target float64, err error) {
	a, b, ok := strings.Cut(key, "_")
	if !ok {
		return 0, 0, fmt.Errorf("%w: pair key %q is not <source>_<target>", ErrInvalidConfig, key)
	}
	if source, err = strconv.ParseFloat(a, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: pair key %q: %w", ErrInvalidConfig, key, err)
	}
	if target, err = strconv.ParseFloat(b, 64); err != nil {
		return 0, 0, fmt.Errorf("%w: pair key %q: %w", ErrInvalidConfig, key, err)
	}
	if !(target > source) {
		return 0, 0, fmt.Errorf("%w: pair key %q: target must follow source", ErrInvalidConfig, key)
	}

	return source, target, nil
}

// Load decodes a YAML document. Unknown fields and malformed pair keys are
// rejected. Pair keys are normalized to PairKey form.
func Load(r io.Reader) (*Config, error) {
	var c Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	pairs := make(map[string]Params, len(c.Pairs))
	for key, p := range c.Pairs {
		s, t, err := parsePairKey(key)
		if err != nil {
			return nil, err
		}
		pairs[PairKey(s, t)] = p
	}
	c.Pairs = pairs

	return &c, nil
}

// LoadFile reads and decodes the YAML file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(f)
}

// MergeDefaults layers p over the document defaults.
func (c *Config) MergeDefaults(p Params) {
	c.Defaults = c.Defaults.Merge(p)
}

// Options resolves the solver options of one day pair and validates them.
func (c *Config) Options(source, target float64) (ot.Options, error) {
	o := ot.DefaultOptions()
	p := c.Defaults
	if over, ok := c.Pairs[PairKey(source, target)]; ok {
		p = p.Merge(over)
	}
	if err := p.apply(&o); err != nil {
		return ot.Options{}, err
	}
	if err := o.Validate(); err != nil {
		return ot.Options{}, fmt.Errorf("%w: pair %s: %w", ErrInvalidConfig, PairKey(source, target), err)
	}

	return o, nil
}
