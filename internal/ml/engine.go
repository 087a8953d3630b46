package ml

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"feewatch/internal/features"
)

// MetricsInterface defines the metrics methods the engine reports to.
type MetricsInterface interface {
	PredictionsInc()
	InferenceFailuresInc()
	InferenceLatencyObserve(float64)
	ModelAgeSet(float64)
}

// InferenceError reports a per-request classification failure together
// with the pipeline stage that produced it. It never escalates to a
// process crash; the request handler maps it to a degraded response.
type InferenceError struct {
	Stage string
	Err   error
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed at %s: %v", e.Stage, e.Err)
}

func (e *InferenceError) Unwrap() error { return e.Err }

// Engine runs the scale -> predict -> decode pipeline over an immutable
// artifact bundle. Safe for concurrent use: nothing mutates the bundle
// after construction.
type Engine struct {
	bundle  *Bundle
	metrics MetricsInterface
}

// NewEngine wraps a loaded bundle. metrics may be nil in tests.
func NewEngine(bundle *Bundle, metrics MetricsInterface) *Engine {
	if metrics != nil && !bundle.ModTime.IsZero() {
		metrics.ModelAgeSet(time.Since(bundle.ModTime).Seconds())
	}
	log.Info().
		Str("version", bundle.Version).
		Int("classes", len(bundle.Encoder.Classes)).
		Msg("model bundle loaded")
	return &Engine{bundle: bundle, metrics: metrics}
}

// Classify maps a canonical feature vector to a payment-behavior label.
// Every failure path returns an *InferenceError.
func (e *Engine) Classify(vector []float64) (string, error) {
	start := time.Now()
	defer func() {
		if e.metrics != nil {
			e.metrics.InferenceLatencyObserve(time.Since(start).Seconds())
		}
	}()

	if err := validateVector(vector); err != nil {
		return "", e.fail("validation", err)
	}

	scaled, err := e.bundle.Scaler.Transform(vector)
	if err != nil {
		return "", e.fail("scaling", err)
	}

	idx, err := e.bundle.Classifier.Predict(scaled)
	if err != nil {
		return "", e.fail("prediction", err)
	}

	label, err := e.bundle.Encoder.InverseTransform(idx)
	if err != nil {
		return "", e.fail("decoding", err)
	}

	if e.metrics != nil {
		e.metrics.PredictionsInc()
	}
	log.Debug().
		Floats64("features", vector).
		Int("class_index", idx).
		Str("label", label).
		Msg("classification complete")
	return label, nil
}

func (e *Engine) fail(stage string, err error) error {
	if e.metrics != nil {
		e.metrics.InferenceFailuresInc()
	}
	log.Error().Err(err).Str("stage", stage).Msg("classification failed")
	return &InferenceError{Stage: stage, Err: err}
}

func validateVector(v []float64) error {
	if len(v) != features.FeatureCount {
		return fmt.Errorf("expected %d features, got %d", features.FeatureCount, len(v))
	}
	for i, x := range v {
		if math.IsNaN(x) {
			return fmt.Errorf("feature %d is NaN", i)
		}
		if math.IsInf(x, 0) {
			return fmt.Errorf("feature %d is infinite", i)
		}
	}
	return nil
}
