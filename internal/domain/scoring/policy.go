package scoring

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"strings"

	"github.com/okian/silentdrop/internal/domain/model"
	"github.com/okian/silentdrop/internal/domain/types"
)

// Field names one input of PatientMetrics. The string form matches the JSON
// and configuration keys.
type Field string

// Scored fields.
const (
	FieldDaysSinceLastContact Field = "days_since_last_contact"
	FieldRefillDelayDays      Field = "refill_delay_days"
	FieldMissedLabTests       Field = "missed_lab_tests"
	FieldDaysLateFollowUp     Field = "days_late_follow_up"
	FieldExpectedGapDays      Field = "expected_gap_days"
)

// Fields lists every scored field in summation order.
var Fields = []Field{
	FieldDaysSinceLastContact,
	FieldRefillDelayDays,
	FieldMissedLabTests,
	FieldDaysLateFollowUp,
	FieldExpectedGapDays,
}

// Score bounds and canonical thresholds. Classification is strict:
// a score equal to a threshold falls into the lower category.
const (
	MinScore               = 0.0
	MaxScore               = 100.0
	DefaultMediumThreshold = 30.0
	DefaultHighThreshold   = 60.0
)

// ParseField resolves a configuration or JSON key to a Field.
func ParseField(name string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Fields {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q", ErrInvalidPolicy, name)
}

// Value extracts the field from m.
func (f Field) Value(m model.PatientMetrics) float64 {
	switch f {
	case FieldDaysSinceLastContact:
		return m.DaysSinceLastContact
	case FieldRefillDelayDays:
		return m.RefillDelayDays
	case FieldMissedLabTests:
		return m.MissedLabTests
	case FieldDaysLateFollowUp:
		return m.DaysLateFollowUp
	case FieldExpectedGapDays:
		return m.ExpectedGapDays
	default:
		return 0
	}
}

// Policy is the coefficient table, per-field caps and thresholds used by
// the scorer.
type Policy struct {
	Weights         map[Field]float64 `json:"weights"`
	Caps            map[Field]float64 `json:"caps"`
	MediumThreshold float64           `json:"medium_threshold"`
	HighThreshold   float64           `json:"high_threshold"`
}

// DefaultPolicy returns the canonical scoring policy. Inputs at every cap
// sum to 107, so the full input range reaches the 100 ceiling.
func DefaultPolicy() Policy {
	return Policy{
		Weights: map[Field]float64{
			FieldDaysSinceLastContact: 0.60,
			FieldRefillDelayDays:      0.60,
			FieldMissedLabTests:       2.00,
			FieldDaysLateFollowUp:     0.30,
			FieldExpectedGapDays:      0.10,
		},
		Caps: map[Field]float64{
			FieldDaysSinceLastContact: 60,
			FieldRefillDelayDays:      60,
			FieldMissedLabTests:       10,
			FieldDaysLateFollowUp:     30,
			FieldExpectedGapDays:      60,
		},
		MediumThreshold: DefaultMediumThreshold,
		HighThreshold:   DefaultHighThreshold,
	}
}

// Clone returns a deep copy of p.
func (p Policy) Clone() Policy {
	return Policy{
		Weights:         maps.Clone(p.Weights),
		Caps:            maps.Clone(p.Caps),
		MediumThreshold: p.MediumThreshold,
		HighThreshold:   p.HighThreshold,
	}
}

// Validate checks that p keeps the score monotonic and the thresholds ordered.
func (p Policy) Validate() error {
	var errs []error
	for _, f := range Fields {
		w, ok := p.Weights[f]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: missing weight for %s", ErrInvalidPolicy, f))
		case !isFinite(w) || w < 0:
			errs = append(errs, fmt.Errorf("%w: weight for %s must be finite and non-negative, got %v", ErrInvalidPolicy, f, w))
		}
		c, ok := p.Caps[f]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("%w: missing cap for %s", ErrInvalidPolicy, f))
		case !isFinite(c) || c <= 0:
			errs = append(errs, fmt.Errorf("%w: cap for %s must be finite and positive, got %v", ErrInvalidPolicy, f, c))
		}
	}
	for f := range p.Weights {
		if _, err := ParseField(string(f)); err != nil {
			errs = append(errs, err)
		}
	}
	for f := range p.Caps {
		if _, err := ParseField(string(f)); err != nil {
			errs = append(errs, err)
		}
	}
	if !isFinite(p.MediumThreshold) || !isFinite(p.HighThreshold) ||
		p.MediumThreshold < MinScore || p.HighThreshold > MaxScore ||
		p.MediumThreshold >= p.HighThreshold {
		errs = append(errs, fmt.Errorf("%w: thresholds must satisfy %v <= medium < high <= %v, got medium=%v high=%v",
			ErrInvalidPolicy, MinScore, MaxScore, p.MediumThreshold, p.HighThreshold))
	}
	return errors.Join(errs...)
}

// Classify maps a score to its risk level: above HighThreshold is HIGH,
// above MediumThreshold is MEDIUM, anything else is LOW.
func (p Policy) Classify(score float64) types.RiskLevel {
	switch {
	case score > p.HighThreshold:
		return types.RiskHigh
	case score > p.MediumThreshold:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
