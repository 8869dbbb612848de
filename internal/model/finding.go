package model

// Default values used when a scanner record omits a field.
const (
	// DefaultFindingName is used when the record has no info.name.
	DefaultFindingName = "Unknown"

	// DefaultFindingTarget is used when the record has neither host nor matched-at.
	DefaultFindingTarget = "Unknown"
)

// Finding is one decoded vulnerability record.
// Findings are built per line while the scanner runs and folded into an
// Aggregate immediately; they are not collected.
type Finding struct {
	// Severity is the classified severity bucket.
	Severity Severity `json:"-"`

	// SeverityText is the record's severity upper-cased as the scanner reported it
	// (for example "CRITICAL", or "UNKNOWN" when missing).
	SeverityText string `json:"severity"`

	// Name is the template's display name.
	Name string `json:"name"`

	// Target is the matched host or URL.
	Target string `json:"target"`

	// TemplateID is the scanner template identifier, if present.
	TemplateID string `json:"template_id,omitempty"`
}
