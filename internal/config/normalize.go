package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	expanded, err := expandPath(c.Paths.DataDir)
	if err != nil {
		return fmt.Errorf("normalize data_dir: %w", err)
	}
	c.Paths.DataDir = expanded

	expanded, err = expandPath(c.Paths.LogDir)
	if err != nil {
		return fmt.Errorf("normalize log_dir: %w", err)
	}
	c.Paths.LogDir = expanded

	if c.Tracking.Path != "" {
		expanded, err = expandPath(c.Tracking.Path)
		if err != nil {
			return fmt.Errorf("normalize tracking.path: %w", err)
		}
		c.Tracking.Path = expanded
	}

	c.Source.BaseURL = strings.TrimRight(strings.TrimSpace(c.Source.BaseURL), "/")
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Policy.Version = strings.TrimSpace(c.Policy.Version)

	return nil
}
