package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment override, e.g. LINEAGE_EPSILON.
const EnvPrefix = "LINEAGE_"

// FromEnv reads LINEAGE_* overrides from the process environment.
// Unset variables leave their field nil.
func FromEnv() (Params, error) {
	var p Params
	if err := env.ParseWithOptions(&p, env.Options{Prefix: EnvPrefix}); err != nil {
		return Params{}, fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}

	return p, nil
}

// ApplyEnv layers LINEAGE_* overrides over the document defaults.
func (c *Config) ApplyEnv() error {
	p, err := FromEnv()
	if err != nil {
		return err
	}
	c.MergeDefaults(p)

	return nil
}
