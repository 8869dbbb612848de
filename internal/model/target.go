package model

import (
	"errors"
	"strings"
)

// Target errors.
var (
	// ErrEmptyTarget is returned when the target is empty after normalization.
	ErrEmptyTarget = errors.New("target cannot be empty")
	// ErrInvalidTarget is returned when the normalized target cannot be used as a directory name.
	ErrInvalidTarget = errors.New("invalid target")
)

// schemePrefixes are stripped from the front of a target.
var schemePrefixes = []string{"http://", "https://"}

// NormalizeTarget strips http:// and https:// prefixes and trailing slashes.
// It is idempotent: NormalizeTarget(NormalizeTarget(x)) == NormalizeTarget(x).
//
// Prefixes are stripped repeatedly so that an input like "https://http://a"
// does not leave a scheme behind for a second call to remove.
func NormalizeTarget(raw string) string {
	target := strings.TrimSpace(raw)
	for {
		stripped := false
		for _, prefix := range schemePrefixes {
			if len(target) >= len(prefix) && strings.EqualFold(target[:len(prefix)], prefix) {
				target = target[len(prefix):]
				stripped = true
			}
		}
		trimmed := strings.TrimRight(target, "/")
		if trimmed != target {
			target = trimmed
			stripped = true
		}
		if !stripped {
			return target
		}
	}
}

// Target is an immutable, normalized reconnaissance target.
type Target struct {
	value string
}

// NewTarget normalizes raw and validates that it can name an output directory.
func NewTarget(raw string) (Target, error) {
	value := NormalizeTarget(raw)
	if value == "" {
		return Target{}, ErrEmptyTarget
	}
	if strings.ContainsAny(value, " \t\r\n\\") {
		return Target{}, ErrInvalidTarget
	}
	for _, part := range strings.Split(value, "/") {
		if part == ".." || part == "." {
			return Target{}, ErrInvalidTarget
		}
	}
	return Target{value: value}, nil
}

// String returns the normalized target.
func (t Target) String() string {
	return t.value
}

// IsZero reports whether the target was never initialized.
func (t Target) IsZero() bool {
	return t.value == ""
}
