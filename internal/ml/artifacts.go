// Package ml wraps the pre-trained fee-payment classifier behind a single
// classify call. The scaler, classifier and label set travel together as
// one versioned artifact bundle that is loaded once at startup and treated
// as immutable for the life of the process.
package ml

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"feewatch/internal/features"
)

// Scaler holds the fitted standardization parameters for each feature.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes v using the fitted parameters.
func (s *Scaler) Transform(v []float64) ([]float64, error) {
	if len(v) != len(s.Mean) {
		return nil, fmt.Errorf("expected %d features, got %d", len(s.Mean), len(v))
	}
	out := make([]float64, len(v))
	for i, x := range v {
		if s.Scale[i] == 0 {
			return nil, fmt.Errorf("feature %d has zero scale", i)
		}
		out[i] = (x - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// LinearClassifier is a fitted linear model. One coefficient row per class
// for multinomial models; a single row for binary models, where a positive
// decision value selects class index 1.
type LinearClassifier struct {
	Coefficients [][]float64 `json:"coefficients"`
	Intercepts   []float64   `json:"intercepts"`
}

// Predict returns the raw class index for the scaled vector.
func (c *LinearClassifier) Predict(scaled []float64) (int, error) {
	if len(c.Coefficients) == 1 {
		score, err := dot(c.Coefficients[0], scaled)
		if err != nil {
			return 0, err
		}
		if score+c.Intercepts[0] > 0 {
			return 1, nil
		}
		return 0, nil
	}

	best, bestScore := 0, math.Inf(-1)
	for i, row := range c.Coefficients {
		score, err := dot(row, scaled)
		if err != nil {
			return 0, err
		}
		score += c.Intercepts[i]
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best, nil
}

func dot(w, v []float64) (float64, error) {
	if len(w) != len(v) {
		return 0, fmt.Errorf("coefficient row has %d weights, vector has %d", len(w), len(v))
	}
	var sum float64
	for i := range w {
		sum += w[i] * v[i]
	}
	return sum, nil
}

// LabelEncoder decodes raw class indices back to category names.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// InverseTransform maps a class index to its label.
func (e *LabelEncoder) InverseTransform(idx int) (string, error) {
	if idx < 0 || idx >= len(e.Classes) {
		return "", fmt.Errorf("class index %d outside label set of size %d", idx, len(e.Classes))
	}
	return e.Classes[idx], nil
}

// Bundle is the versioned artifact unit: scaler + classifier + labels.
type Bundle struct {
	Version    string            `json:"version"`
	Scaler     *Scaler           `json:"scaler"`
	Classifier *LinearClassifier `json:"classifier"`
	Encoder    *LabelEncoder     `json:"labels"`

	// ModTime of the artifact file, used for the model age metric.
	ModTime time.Time `json:"-"`
}

// LoadBundle reads and validates the artifact bundle at path. A missing or
// inconsistent section is a startup error; the caller must not serve
// requests without a complete bundle.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model bundle %s: %w", path, err)
	}

	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse model bundle %s: %w", path, err)
	}

	if info, err := os.Stat(path); err == nil {
		b.ModTime = info.ModTime()
	}

	if err := b.validate(); err != nil {
		return nil, fmt.Errorf("model bundle %s: %w", path, err)
	}
	return &b, nil
}

// validate checks that all three artifacts are present and dimensioned for
// the canonical feature order. Partial bundles are rejected outright.
func (b *Bundle) validate() error {
	if b.Scaler == nil {
		return fmt.Errorf("missing scaler section")
	}
	if b.Classifier == nil {
		return fmt.Errorf("missing classifier section")
	}
	if b.Encoder == nil || len(b.Encoder.Classes) == 0 {
		return fmt.Errorf("missing labels section")
	}

	if len(b.Scaler.Mean) != features.FeatureCount || len(b.Scaler.Scale) != features.FeatureCount {
		return fmt.Errorf("scaler fitted for %d features, classifier input requires %d",
			len(b.Scaler.Mean), features.FeatureCount)
	}

	rows := len(b.Classifier.Coefficients)
	if rows == 0 {
		return fmt.Errorf("classifier has no coefficient rows")
	}
	if len(b.Classifier.Intercepts) != rows {
		return fmt.Errorf("classifier has %d coefficient rows but %d intercepts",
			rows, len(b.Classifier.Intercepts))
	}
	for i, row := range b.Classifier.Coefficients {
		if len(row) != features.FeatureCount {
			return fmt.Errorf("coefficient row %d has %d weights, expected %d",
				i, len(row), features.FeatureCount)
		}
	}

	classes := rows
	if rows == 1 {
		classes = 2 // binary model: one decision row, two labels
	}
	if len(b.Encoder.Classes) != classes {
		return fmt.Errorf("classifier produces %d classes but label set has %d",
			classes, len(b.Encoder.Classes))
	}
	return nil
}
