package classifier

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/nao1215/reconchain/internal/model"
)

// Record keys read from a scanner JSONL record.
const (
	keyInfo       = "info"
	keySeverity   = "severity"
	keyName       = "name"
	keyHost       = "host"
	keyMatchedAt  = "matched-at"
	keyTemplateID = "template-id"
)

var jsonNull = []byte("null")

// Classify decodes one output line into a Finding.
//
// It returns false for anything that is not a JSON object (banner text,
// progress lines, statistics). For JSON objects, missing fields fall back to
// defaults: severity "UNKNOWN", name "Unknown", and target taken from "host",
// then "matched-at", then "Unknown".
func Classify(line string) (model.Finding, bool) {
	trimmed := bytes.TrimSpace([]byte(line))
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.Finding{}, false
	}

	var record map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &record); err != nil {
		return model.Finding{}, false
	}

	var info map[string]json.RawMessage
	if raw, ok := record[keyInfo]; ok {
		// A non-object info is treated as absent.
		_ = json.Unmarshal(raw, &info) //nolint:errcheck // defaults apply on failure
	}

	severityText := model.NormalizeSeverityLabel(stringField(info, keySeverity))
	name, ok := lookupString(info, keyName)
	if !ok {
		name = model.DefaultFindingName
	}

	target, ok := lookupString(record, keyHost)
	if !ok {
		target, ok = lookupString(record, keyMatchedAt)
		if !ok {
			target = model.DefaultFindingTarget
		}
	}

	return model.Finding{
		Severity:     model.ParseSeverity(severityText),
		SeverityText: severityText,
		Name:         name,
		Target:       target,
		TemplateID:   stringField(record, keyTemplateID),
	}, true
}

// IsProgress reports whether a non-finding line is scanner progress worth
// showing to the operator.
func IsProgress(line string) bool {
	return strings.Contains(line, "[INF]") || strings.Contains(line, "Templates")
}

// lookupString returns the string value of key when it is present and a string.
// A JSON null counts as absent.
func lookupString(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), jsonNull) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// stringField is lookupString without the presence flag.
func stringField(fields map[string]json.RawMessage, key string) string {
	s, _ := lookupString(fields, key)
	return s
}
