package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSource(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateTracking(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateSource() error {
	if strings.TrimSpace(c.Source.BaseURL) == "" {
		return errors.New("source.base_url must be set")
	}
	if len(c.Source.Categories) == 0 {
		return errors.New("source.categories must include at least one category")
	}
	if c.Source.RequestDelayMS < 0 {
		return errors.New("source.request_delay_ms must not be negative")
	}
	if c.Source.FetchTimeout <= 0 {
		return errors.New("source.fetch_timeout must be positive (seconds)")
	}
	if c.Source.MaxAttempts <= 0 {
		return errors.New("source.max_attempts must be positive")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.Workers <= 0 {
		return errors.New("pipeline.workers must be positive")
	}
	if c.Pipeline.ProductsPerCategory < 0 {
		return errors.New("pipeline.products_per_category must not be negative")
	}
	return nil
}

func (c *Config) validateTracking() error {
	if c.Tracking.Enabled && strings.TrimSpace(c.Tracking.Path) == "" {
		return errors.New("tracking.path must be set when tracking.enabled is true")
	}
	return nil
}

func (c *Config) validatePolicy() error {
	if c.Policy.Version == "" {
		return errors.New("policy.version must be set")
	}
	thresholds := map[string]float64{
		"policy.style_identity_min":  c.Policy.StyleIdentityMin,
		"policy.style_identity_auto": c.Policy.StyleIdentityAuto,
		"policy.silhouette_min":      c.Policy.SilhouetteMin,
		"policy.silhouette_auto":     c.Policy.SilhouetteAuto,
		"policy.context_min":         c.Policy.ContextMin,
		"policy.construction_min":    c.Policy.ConstructionMin,
		"policy.pattern_min":         c.Policy.PatternMin,
		"policy.formality_min":       c.Policy.FormalityMin,
		"policy.formality_auto":      c.Policy.FormalityAuto,
		"policy.weight_min":          c.Policy.WeightMin,
		"policy.shoe_type_min":       c.Policy.ShoeTypeMin,
		"policy.shoe_profile_min":    c.Policy.ShoeProfileMin,
		"policy.shoe_closure_min":    c.Policy.ShoeClosureMin,
	}
	for name, value := range thresholds {
		if value < 0 || value > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.Policy.StyleIdentityAuto < c.Policy.StyleIdentityMin {
		return errors.New("policy.style_identity_auto must not be below policy.style_identity_min")
	}
	if c.Policy.FormalityAuto < c.Policy.FormalityMin {
		return errors.New("policy.formality_auto must not be below policy.formality_min")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}
