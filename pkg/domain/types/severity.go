package types

import "github.com/m-mizutani/goerr/v2"

// Severity rates the harm of a hazardous event per ISO 26262-3:2018 Table 1,
// from S0 (no injuries) to S3 (life-threatening or fatal injuries).
type Severity string

const (
	SeverityS0 Severity = "S0"
	SeverityS1 Severity = "S1"
	SeverityS2 Severity = "S2"
	SeverityS3 Severity = "S3"
)

// AllSeverities returns all valid severity ratings
func AllSeverities() []Severity {
	return []Severity{
		SeverityS0,
		SeverityS1,
		SeverityS2,
		SeverityS3,
	}
}

// IsValid checks if the severity rating is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityS0,
		SeverityS1,
		SeverityS2,
		SeverityS3:
		return true
	default:
		return false
	}
}

// Level returns the ordinal position of the rating (S0=0 .. S3=3), or -1 for
// an unknown symbol.
func (s Severity) Level() int {
	switch s {
	case SeverityS0:
		return 0
	case SeverityS1:
		return 1
	case SeverityS2:
		return 2
	case SeverityS3:
		return 3
	default:
		return -1
	}
}

// String returns the string representation of the severity rating
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", goerr.Wrap(ErrInvalidSeverity, "unknown severity symbol", goerr.V(RatingKey, s))
	}
	return sev, nil
}
