package probe

import (
	"github.com/okian/silentdrop/internal/domain/model"
)

// ReferenceCases covers the scoring corners: zeros, caps, inputs past the
// caps, each risk band, and rejected records.
func ReferenceCases() []Case {
	return []Case{
		{Name: "all zero", Metrics: model.PatientMetrics{}},
		{Name: "all at cap", Metrics: model.PatientMetrics{
			ExpectedGapDays: 60, RefillDelayDays: 60, DaysSinceLastContact: 60, MissedLabTests: 10, DaysLateFollowUp: 30,
		}},
		{Name: "above caps", Metrics: model.PatientMetrics{
			ExpectedGapDays: 365, RefillDelayDays: 120, DaysSinceLastContact: 400, MissedLabTests: 25, DaysLateFollowUp: 90,
		}},
		{Name: "low engagement gap", Metrics: model.PatientMetrics{
			ExpectedGapDays: 30, RefillDelayDays: 3, DaysSinceLastContact: 10, MissedLabTests: 1, DaysLateFollowUp: 2,
		}},
		{Name: "moderate", Metrics: model.PatientMetrics{
			ExpectedGapDays: 30, RefillDelayDays: 20, DaysSinceLastContact: 40, MissedLabTests: 2, DaysLateFollowUp: 7,
		}},
		{Name: "contact and refill lapsed", Metrics: model.PatientMetrics{
			DaysSinceLastContact: 60, RefillDelayDays: 45,
		}},
		{Name: "labs only", Metrics: model.PatientMetrics{MissedLabTests: 10}},
		{Name: "fractional values", Metrics: model.PatientMetrics{
			ExpectedGapDays: 12.5, RefillDelayDays: 7.25, DaysSinceLastContact: 33.3, MissedLabTests: 1.5, DaysLateFollowUp: 4.75,
		}},
		{Name: "negative refill delay", Invalid: true, Metrics: model.PatientMetrics{RefillDelayDays: -1}},
		{Name: "negative missed labs", Invalid: true, Metrics: model.PatientMetrics{
			ExpectedGapDays: 10, DaysSinceLastContact: 10, MissedLabTests: -3,
		}},
	}
}
