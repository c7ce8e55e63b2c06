// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/okian/silentdrop/internal/domain/types"
)

// PatientMetrics is the follow-up record scored for silent dropout risk.
// All fields are day-counts or counts and must be finite and non-negative.
type PatientMetrics struct {
	ExpectedGapDays      float64 `json:"expected_gap_days"`       // expected gap between visits
	RefillDelayDays      float64 `json:"refill_delay_days"`       // medicine refill delay
	DaysSinceLastContact float64 `json:"days_since_last_contact"` // days since any contact
	MissedLabTests       float64 `json:"missed_lab_tests"`        // missed lab tests
	DaysLateFollowUp     float64 `json:"days_late_follow_up"`     // days late for follow-up
}

// ScoreResult is the raw output of the risk scorer.
type ScoreResult struct {
	Score     float64         // bounded to [0, 100]
	RiskLevel types.RiskLevel // derived from Score via fixed thresholds
}

// Assessment is a ScoreResult prepared for display. It is never stored.
type Assessment struct {
	ID         string          `json:"id"`
	Score      float64         `json:"score"` // rounded to two decimals
	RiskLevel  types.RiskLevel `json:"risk_level"`
	Advisory   string          `json:"advisory"`
	AssessedAt time.Time       `json:"assessed_at"`
}
