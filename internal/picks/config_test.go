package picks

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseConfig(t *testing.T) {
	c, err := ParseConfig([]byte(`
season: 2025
paths:
  raw: d/raw
  processed: d/processed
output:
  prob_threshold: 0.55
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.Season != 2025 || c.Threshold() != 0.55 {
		t.Errorf("unexpected config %+v", c)
	}
	if c.Paths.Artifacts != "artifacts" {
		t.Errorf("expected default artifacts path, got %s", c.Paths.Artifacts)
	}
	if got := c.PredictionsPath(2025, 5); got != filepath.Join("d", "processed", "predictions_2025_wk5.csv") {
		t.Errorf("unexpected predictions path %s", got)
	}
}

func TestParseConfigDefaults(t *testing.T) {
	c, err := ParseConfig([]byte("season: 2025\n"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Threshold() != DefaultThreshold {
		t.Errorf("expected default threshold, got %v", c.Threshold())
	}
	if _, err := ParseConfig([]byte("output:\n  prob_threshold: 1.5\n")); err == nil {
		t.Error("expected error for a threshold above 1")
	}
}

func TestEnsureDirs(t *testing.T) {
	root := t.TempDir()
	c := Config{Paths: Paths{
		Raw:       filepath.Join(root, "raw"),
		Processed: filepath.Join(root, "processed"),
		Artifacts: filepath.Join(root, "artifacts"),
		Reports:   filepath.Join(root, "reports"),
	}}
	if err := c.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	for _, p := range []string{c.Paths.Raw, c.Paths.Processed, c.Paths.Artifacts, c.Paths.Reports} {
		if info, err := os.Stat(p); err != nil || !info.IsDir() {
			t.Errorf("expected directory %s", p)
		}
	}
}

func TestValidateThreshold(t *testing.T) {
	tests := []struct {
		t       float64
		wantErr bool
	}{
		{0, false},
		{0.55, false},
		{1, false},
		{1.5, true},
		{-0.1, true},
		{math.NaN(), true},
	}
	for _, tt := range tests {
		if err := ValidateThreshold(tt.t); (err != nil) != tt.wantErr {
			t.Errorf("ValidateThreshold(%v): wantErr %v, got %v", tt.t, tt.wantErr, err)
		}
	}
}
