package model

// Aggregate holds per-severity finding counts for one scan.
// It only grows: counts are changed through Add and never decremented.
// Aggregate is a plain value so it can be handed to the summary by copy.
type Aggregate struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
	Unknown  int `json:"unknown"`
	Total    int `json:"total"`
}

// Add increments the counter for the finding's severity and the total.
func (a *Aggregate) Add(f Finding) {
	switch f.Severity {
	case SeverityCritical:
		a.Critical++
	case SeverityHigh:
		a.High++
	case SeverityMedium:
		a.Medium++
	case SeverityLow:
		a.Low++
	case SeverityInfo:
		a.Info++
	default:
		a.Unknown++
	}
	a.Total++
}

// Count returns the number of findings recorded for a severity.
func (a Aggregate) Count(s Severity) int {
	switch s {
	case SeverityCritical:
		return a.Critical
	case SeverityHigh:
		return a.High
	case SeverityMedium:
		return a.Medium
	case SeverityLow:
		return a.Low
	case SeverityInfo:
		return a.Info
	default:
		return a.Unknown
	}
}

// IsEmpty reports whether no finding was recorded.
func (a Aggregate) IsEmpty() bool {
	return a.Total == 0
}
