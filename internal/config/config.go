package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
	LogDir  string `toml:"log_dir"`
}

// Source contains configuration for the retail listing source.
type Source struct {
	BaseURL        string            `toml:"base_url"`
	Categories     map[string]string `toml:"categories"`
	RequestDelayMS int               `toml:"request_delay_ms"`
	FetchTimeout   int               `toml:"fetch_timeout"`
	MaxAttempts    int               `toml:"max_attempts"`
}

// Pipeline contains configuration for batch execution.
type Pipeline struct {
	Workers             int `toml:"workers"`
	ProductsPerCategory int `toml:"products_per_category"`
}

// Catalog contains configuration for the product catalog database.
type Catalog struct {
	DSN string `toml:"dsn"`
}

// Tracking contains configuration for the local tracking store.
type Tracking struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Policy contains configuration for the tag policy engine.
type Policy struct {
	Version                         string  `toml:"version"`
	StyleIdentityMin                float64 `toml:"style_identity_min"`
	StyleIdentityAuto               float64 `toml:"style_identity_auto"`
	SilhouetteMin                   float64 `toml:"silhouette_min"`
	SilhouetteAuto                  float64 `toml:"silhouette_auto"`
	ContextMin                      float64 `toml:"context_min"`
	ConstructionMin                 float64 `toml:"construction_min"`
	PatternMin                      float64 `toml:"pattern_min"`
	FormalityMin                    float64 `toml:"formality_min"`
	FormalityAuto                   float64 `toml:"formality_auto"`
	WeightMin                       float64 `toml:"weight_min"`
	ShoeTypeMin                     float64 `toml:"shoe_type_min"`
	ShoeProfileMin                  float64 `toml:"shoe_profile_min"`
	ShoeClosureMin                  float64 `toml:"shoe_closure_min"`
	DemoteApprovedOnVersionMismatch bool    `toml:"demote_approved_on_version_mismatch"`
}

// Transform contains configuration for raw record transformation.
type Transform struct {
	// VariantsInheritParentAssets controls whether color variants receive the
	// parent's full image and size sets when the source does not distinguish
	// them per color. When false, variants start empty until confirmed.
	VariantsInheritParentAssets bool `toml:"variants_inherit_parent_assets"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Refit.
//
// Configuration sections by subsystem:
//   - Paths: data and log directories
//   - Source: listing source endpoints, rate limiting, retry budget
//   - Pipeline: worker count and per-category limits
//   - Catalog: product database connection
//   - Tracking: local already-ingested ledger
//   - Policy: tag policy thresholds and version
//   - Transform: variant expansion behavior
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	Source    Source    `toml:"source"`
	Pipeline  Pipeline  `toml:"pipeline"`
	Catalog   Catalog   `toml:"catalog"`
	Tracking  Tracking  `toml:"tracking"`
	Policy    Policy    `toml:"policy"`
	Transform Transform `toml:"transform"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/refit/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config
// has all path fields expanded and normalized. A .env file alongside the
// working directory is consulted for CATALOG_DSN before validation.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	_ = godotenv.Load()
	if dsn := strings.TrimSpace(os.Getenv("CATALOG_DSN")); dsn != "" {
		cfg.Catalog.DSN = dsn
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("refit.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for pipeline operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if c.Tracking.Enabled && strings.TrimSpace(c.Tracking.Path) != "" {
		if err := os.MkdirAll(filepath.Dir(c.Tracking.Path), 0o755); err != nil {
			return fmt.Errorf("create tracking directory: %w", err)
		}
	}
	return nil
}

// CategoryKeys returns the configured category keys in sorted order.
func (c *Config) CategoryKeys() []string {
	keys := make([]string, 0, len(c.Source.Categories))
	for key := range c.Source.Categories {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
