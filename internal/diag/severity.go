package diag

import "strings"

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	// SevUnknown covers levels the annotation protocol has no shape for
	// (note, help, failure-note, ICE banners).
	SevUnknown Severity = iota
	// SevWarning is for warning diagnostics.
	SevWarning
	SevError
)

// String returns the lowercase level name used by the annotation protocol.
func (s Severity) String() string {
	switch s {
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity maps a cargo message level onto Severity.
func ParseSeverity(level string) Severity {
	switch strings.TrimSpace(level) {
	case "warning":
		return SevWarning
	case "error":
		return SevError
	}
	return SevUnknown
}
