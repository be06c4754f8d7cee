package picks

import (
	"fmt"
	"math"
	"os"

	"github.com/atgjack/prob"
	yaml "gopkg.in/yaml.v2"
)

// ProbabilitySource produces one home win probability per feature row, in the same order.
type ProbabilitySource interface {
	PredictProbability(rows []FeatureRow) ([]float64, error)
}

// LogisticModel is a trained logistic regression over [spread_home, is_home].
// Features are divided by Scale before the linear term, as a scaler without centering would.
type LogisticModel struct {
	Scale        []float64 `yaml:"scale"`
	Coefficients []float64 `yaml:"coefficients"`
	Intercept    float64   `yaml:"intercept"`
}

// PredictProbability implements ProbabilitySource.
func (m LogisticModel) PredictProbability(rows []FeatureRow) ([]float64, error) {
	out := make([]float64, len(rows))
	for i, r := range rows {
		x := r.Features()
		if len(m.Coefficients) != len(x) {
			return nil, fmt.Errorf("logistic model: expected %d coefficients, have %d", len(x), len(m.Coefficients))
		}
		z := m.Intercept
		for j, v := range x {
			if j < len(m.Scale) && m.Scale[j] != 0 {
				v /= m.Scale[j]
			}
			z += m.Coefficients[j] * v
		}
		out[i] = 1 / (1 + math.Exp(-z))
	}
	return out, nil
}

// GaussianSpreadModel turns the home spread into a win probability with a normal distribution of game outcomes.
type GaussianSpreadModel struct {
	dist prob.Normal
}

// NewGaussianSpreadModel makes a model with the given home bias and standard deviation of outcomes around the spread.
func NewGaussianSpreadModel(bias, stdDev float64) *GaussianSpreadModel {
	return &GaussianSpreadModel{dist: prob.Normal{Mu: -bias, Sigma: stdDev}}
}

// PredictProbability implements ProbabilitySource.
func (m GaussianSpreadModel) PredictProbability(rows []FeatureRow) ([]float64, error) {
	if m.dist.Sigma <= 0 {
		return nil, fmt.Errorf("gaussian spread model: standard deviation must be positive, got %f", m.dist.Sigma)
	}
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = m.dist.Cdf(r.SpreadHome)
	}
	return out, nil
}

func (m GaussianSpreadModel) String() string {
	return fmt.Sprintf("gaussian spread model: bias %f; std dev %f", -m.dist.Mu, m.dist.Sigma)
}

// modelArtifact is the YAML form of a trained model.
type modelArtifact struct {
	Kind     string        `yaml:"kind"`
	Logistic LogisticModel `yaml:"logistic"`
	Gaussian struct {
		Bias   float64 `yaml:"bias"`
		StdDev float64 `yaml:"std_dev"`
	} `yaml:"gaussian"`
}

// LoadModel reads a model artifact. The artifact's kind selects "logistic" (the default) or "gaussian".
func LoadModel(path string) (ProbabilitySource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %v: %w", path, err, ErrStorage)
	}
	return ParseModel(b)
}

// ParseModel parses a YAML model artifact.
func ParseModel(b []byte) (ProbabilitySource, error) {
	var a modelArtifact
	if err := yaml.Unmarshal(b, &a); err != nil {
		return nil, fmt.Errorf("parse model: %v", err)
	}
	switch a.Kind {
	case "", "logistic":
		if len(a.Logistic.Coefficients) != 2 {
			return nil, fmt.Errorf("parse model: logistic model needs 2 coefficients, have %d", len(a.Logistic.Coefficients))
		}
		return a.Logistic, nil
	case "gaussian":
		if a.Gaussian.StdDev <= 0 {
			return nil, fmt.Errorf("parse model: gaussian model needs a positive std_dev")
		}
		return NewGaussianSpreadModel(a.Gaussian.Bias, a.Gaussian.StdDev), nil
	default:
		return nil, fmt.Errorf("parse model: unknown kind %q", a.Kind)
	}
}
