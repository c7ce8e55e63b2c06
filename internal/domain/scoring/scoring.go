// Package scoring computes the silent dropout score and risk level from
// patient follow-up metrics.
//
// Scoring is a pure function: each input is clamped to its cap, the clamped
// values are combined with a fixed weight table, the sum is clamped to
// [0, 100] and classified against two strict thresholds.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"github.com/okian/silentdrop/internal/domain/model"
)

// Scorer computes a ScoreResult from patient metrics.
type Scorer interface {
	// Score fails with ErrInvalidInput when any field is negative or non-finite.
	Score(m model.PatientMetrics) (model.ScoreResult, error)
}

// RiskScorer implements Scorer with a validated Policy. It is immutable
// after construction and safe for concurrent use.
type RiskScorer struct {
	policy Policy
	errs   []error
}

// NewRiskScorer builds a scorer from the canonical policy with the given
// overrides applied. It fails with ErrInvalidPolicy if the result is invalid.
func NewRiskScorer(opts ...Option) (*RiskScorer, error) {
	s := &RiskScorer{policy: DefaultPolicy()}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	if err := errors.Join(s.errs...); err != nil {
		return nil, err
	}
	if err := s.policy.Validate(); err != nil {
		return nil, err
	}
	s.errs = nil
	return s, nil
}

// Policy returns a copy of the active policy.
func (s *RiskScorer) Policy() Policy {
	return s.policy.Clone()
}

// Score computes the silent dropout score for m.
func (s *RiskScorer) Score(m model.PatientMetrics) (model.ScoreResult, error) {
	if err := ValidateMetrics(m); err != nil {
		return model.ScoreResult{}, err
	}

	var score float64
	for _, f := range Fields {
		v := math.Min(f.Value(m), s.policy.Caps[f])
		score += s.policy.Weights[f] * v
	}

	// Normalize score to 0-100 range
	score = math.Max(MinScore, math.Min(MaxScore, score))

	return model.ScoreResult{
		Score:     score,
		RiskLevel: s.policy.Classify(score),
	}, nil
}

// ScoreBatch scores every row in order. The whole batch fails if any row is
// invalid; the error names the zero-based row index.
func (s *RiskScorer) ScoreBatch(rows []model.PatientMetrics) ([]model.ScoreResult, error) {
	out := make([]model.ScoreResult, len(rows))
	for i, m := range rows {
		res, err := s.Score(m)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = res
	}
	return out, nil
}

// ValidateMetrics reports the first negative or non-finite field of m.
func ValidateMetrics(m model.PatientMetrics) error {
	for _, f := range Fields {
		v := f.Value(m)
		switch {
		case !isFinite(v):
			return fmt.Errorf("%w: %s must be a finite number, got %v", ErrInvalidInput, f, v)
		case v < 0:
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidInput, f, v)
		}
	}
	return nil
}
