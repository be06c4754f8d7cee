package picks

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

// Paths are the storage locations used by the predictor and viewer.
type Paths struct {
	Raw       string `yaml:"raw"`
	Processed string `yaml:"processed"`
	Artifacts string `yaml:"artifacts"`
	Reports   string `yaml:"reports"`
}

// Config is the process-wide configuration, read once at startup.
type Config struct {
	Season   int    `yaml:"season"`
	Schedule string `yaml:"schedule"`
	Paths    Paths  `yaml:"paths"`
	Output   struct {
		ProbThreshold *float64 `yaml:"prob_threshold"`
	} `yaml:"output"`
}

// Threshold returns the configured probability threshold, or DefaultThreshold when unset.
func (c Config) Threshold() float64 {
	if c.Output.ProbThreshold == nil {
		return DefaultThreshold
	}
	return *c.Output.ProbThreshold
}

// ValidateThreshold checks that a winner threshold is a probability.
func ValidateThreshold(t float64) error {
	if !(t >= 0 && t <= 1) {
		return fmt.Errorf("threshold %v outside [0,1]", t)
	}
	return nil
}

// ModelPath is where the trained model artifact lives.
func (c Config) ModelPath() string {
	return filepath.Join(c.Paths.Artifacts, "baseline_logreg.yaml")
}

// PredictionsPath is where predictions for a season and week are written.
func (c Config) PredictionsPath(season, week int) string {
	return filepath.Join(c.Paths.Processed, FileName(season, week))
}

// LoadConfig parses a YAML config file. Unset paths default to directories under data/.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %v: %w", path, err, ErrStorage)
	}
	return ParseConfig(b)
}

// ParseConfig parses YAML config bytes.
func ParseConfig(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %v", err)
	}
	if c.Paths.Raw == "" {
		c.Paths.Raw = filepath.Join("data", "raw")
	}
	if c.Paths.Processed == "" {
		c.Paths.Processed = filepath.Join("data", "processed")
	}
	if c.Paths.Artifacts == "" {
		c.Paths.Artifacts = "artifacts"
	}
	if c.Paths.Reports == "" {
		c.Paths.Reports = "reports"
	}
	if err := ValidateThreshold(c.Threshold()); err != nil {
		return nil, fmt.Errorf("parse config: prob_threshold: %v", err)
	}
	return &c, nil
}

// EnsureDirs creates every configured directory.
func (c Config) EnsureDirs() error {
	for _, p := range []string{c.Paths.Raw, c.Paths.Processed, c.Paths.Artifacts, c.Paths.Reports} {
		if err := os.MkdirAll(p, 0755); err != nil {
			return fmt.Errorf("create %s: %v: %w", p, err, ErrStorage)
		}
	}
	return nil
}
