package model

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Severity represents the risk level reported by the vulnerability scanner.
//
// SeverityUnknown is the zero value so that a record without a severity
// field is never mistaken for an informational finding.
type Severity int

const (
	// SeverityUnknown is used when the record carries no severity or one
	// outside the scanner's taxonomy.
	SeverityUnknown Severity = iota

	// SeverityInfo indicates informational findings (technology detection, banners).
	SeverityInfo

	// SeverityLow indicates minor issues with limited impact.
	SeverityLow

	// SeverityMedium indicates issues that warrant attention.
	SeverityMedium

	// SeverityHigh indicates serious, likely exploitable issues.
	SeverityHigh

	// SeverityCritical indicates issues that require immediate attention.
	SeverityCritical
)

// String returns the upper-case label used in console output and summaries.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Label returns the lower-case name accepted by the scanner's -severity flag.
func (s Severity) Label() string {
	return strings.ToLower(s.String())
}

// Filterable reports whether the severity can be passed to the scanner as a filter value.
// SeverityUnknown is a classification bucket only.
func (s Severity) Filterable() bool {
	return s >= SeverityInfo && s <= SeverityCritical
}

// ParseSeverity maps a scanner severity string to a Severity.
// Matching is case-insensitive and ignores surrounding whitespace;
// anything unrecognised maps to SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch upperString(strings.TrimSpace(s)) {
	case "CRITICAL":
		return SeverityCritical
	case "HIGH":
		return SeverityHigh
	case "MEDIUM":
		return SeverityMedium
	case "LOW":
		return SeverityLow
	case "INFO":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}

// NormalizeSeverityLabel upper-cases a raw severity string the way the
// scanner's own output does, defaulting to "UNKNOWN" when empty.
func NormalizeSeverityLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return SeverityUnknown.String()
	}
	return upperString(s)
}

// upperString upper-cases s. A cases.Caser keeps state between calls,
// so each call builds its own.
func upperString(s string) string {
	return cases.Upper(language.Und).String(s)
}

// Severities returns every severity from most to least severe, ending with SeverityUnknown.
// Summaries and console output iterate in this order.
func Severities() []Severity {
	return []Severity{
		SeverityCritical,
		SeverityHigh,
		SeverityMedium,
		SeverityLow,
		SeverityInfo,
		SeverityUnknown,
	}
}
