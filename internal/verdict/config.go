package verdict

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the decision policy: how the aggregator weighs the pipeline
// signals and where the verdict thresholds sit. It is loaded once at startup
// and passed by value, so a running server never changes policy mid-flight.
type Config struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`

	// ExpiryWindowYears bounds how far in the future a plausible document
	// expiry may lie; MaxAgeYears bounds the holder's age.
	ExpiryWindowYears int `yaml:"expiry_window_years"`
	MaxAgeYears       int `yaml:"max_age_years"`
}

// Weights are the relative importance of each signal in the final score.
// They must sum to 1.
type Weights struct {
	Rules    float64 `yaml:"rules"`
	Quality  float64 `yaml:"quality"`
	OCR      float64 `yaml:"ocr"`
	Advisory float64 `yaml:"advisory"`
}

// Thresholds partition the final score into verdicts. A score at or above
// Approve is APPROVED, at or above Review is REVIEW, at or above Suspicious
// is SUSPICIOUS, and anything below is REJECTED.
type Thresholds struct {
	Approve    float64 `yaml:"approve"`
	Review     float64 `yaml:"review"`
	Suspicious float64 `yaml:"suspicious"`
}

// DefaultConfig returns the shipped policy: even signal weights and the
// 0.85 / 0.60 / 0.40 verdict bands.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Rules:    0.25,
			Quality:  0.25,
			OCR:      0.25,
			Advisory: 0.25,
		},
		Thresholds: Thresholds{
			Approve:    0.85,
			Review:     0.60,
			Suspicious: 0.40,
		},
		ExpiryWindowYears: 15,
		MaxAgeYears:       150,
	}
}

// LoadConfig reads the decision policy from a YAML file. A missing file is
// not an error: the defaults apply. A present but invalid file is an error,
// so a typo in policy never silently falls back.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, fmt.Errorf("read policy file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse policy file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects policies the aggregator cannot interpret.
func (c Config) Validate() error {
	sum := c.Weights.Rules + c.Weights.Quality + c.Weights.OCR + c.Weights.Advisory
	if math.Abs(sum-1.0) > 1e-6 {
		return fmt.Errorf("weights must sum to 1, got %v", sum)
	}
	for name, w := range map[string]float64{
		"rules":    c.Weights.Rules,
		"quality":  c.Weights.Quality,
		"ocr":      c.Weights.OCR,
		"advisory": c.Weights.Advisory,
	} {
		if w < 0 {
			return fmt.Errorf("weight %s must not be negative", name)
		}
	}

	t := c.Thresholds
	if t.Approve <= t.Review || t.Review <= t.Suspicious {
		return fmt.Errorf("thresholds must be strictly ordered approve > review > suspicious, got %v > %v > %v",
			t.Approve, t.Review, t.Suspicious)
	}
	if t.Approve > 1 || t.Suspicious < 0 {
		return fmt.Errorf("thresholds must lie within [0, 1]")
	}

	if c.ExpiryWindowYears <= 0 {
		return fmt.Errorf("expiry_window_years must be positive")
	}
	if c.MaxAgeYears <= 0 {
		return fmt.Errorf("max_age_years must be positive")
	}
	return nil
}
