package analyzer

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownSeverity indicates a severity label that does not exist.
var ErrUnknownSeverity = errors.New("unknown severity")

// Severity represents the danger level of a finding.
type Severity int

const (
	// Safe indicates no danger detected.
	Safe Severity = iota
	// Low indicates a minor concern.
	Low
	// Medium indicates moderate risk with workarounds available.
	Medium
	// High indicates significant risk: a long table lock or rewrite.
	High
	// Critical indicates data loss or a migration that cannot succeed.
	Critical
)

// String returns the uppercase label for the severity level.
func (s Severity) String() string {
	switch s {
	case Safe:
		return "SAFE"
	case Low:
		return "LOW"
	case Medium:
		return "MEDIUM"
	case High:
		return "HIGH"
	case Critical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity maps a case-insensitive label back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	for level := Safe; level <= Critical; level++ {
		if strings.EqualFold(s, level.String()) {
			return level, nil
		}
	}

	return Safe, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
}
