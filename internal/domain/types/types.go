// Package types contains common types used across the application
package types

import (
	"fmt"
	"strings"
)

// RiskLevel is the ordered silent dropout risk category.
// The zero value is RiskUnknown and is never produced by the scorer.
type RiskLevel int

// Risk levels in increasing order of severity.
const (
	RiskUnknown RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
)

// Levels lists the known risk levels from lowest to highest.
var Levels = []RiskLevel{RiskLow, RiskMedium, RiskHigh}

var levelNames = map[RiskLevel]string{
	RiskUnknown: "UNKNOWN",
	RiskLow:     "LOW",
	RiskMedium:  "MEDIUM",
	RiskHigh:    "HIGH",
}

var advisories = map[RiskLevel]string{
	RiskLow:    "Low risk: patient engagement is healthy.",
	RiskMedium: "Moderate risk: monitor patient closely.",
	RiskHigh:   "High silent dropout risk: immediate intervention required.",
}

// String returns the upper-case name of the level.
func (l RiskLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("RiskLevel(%d)", int(l))
}

// Advisory returns the message shown to clinicians for the level.
func (l RiskLevel) Advisory() string {
	return advisories[l]
}

// IsValid reports whether l is one of LOW, MEDIUM or HIGH.
func (l RiskLevel) IsValid() bool {
	return l >= RiskLow && l <= RiskHigh
}

// MarshalText implements encoding.TextMarshaler.
func (l RiskLevel) MarshalText() ([]byte, error) {
	if !l.IsValid() {
		return nil, fmt.Errorf("invalid risk level: %d", int(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (l *RiskLevel) UnmarshalText(b []byte) error {
	parsed, err := ParseRiskLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseRiskLevel parses a level name, case-insensitively.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow, nil
	case "MEDIUM":
		return RiskMedium, nil
	case "HIGH":
		return RiskHigh, nil
	default:
		return RiskUnknown, fmt.Errorf("invalid risk level: %q", s)
	}
}
