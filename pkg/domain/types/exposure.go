package types

import "github.com/m-mizutani/goerr/v2"

// Exposure rates the probability of being in an operational situation in
// which a hazardous event can occur, per ISO 26262-3:2018 Table 2. E0–E3 is
// the four-level scheme of the classification table; E4 (above 10% of
// operating time) is the extra top level of the five-level scheme and is
// collapsed to E3 before classification.
type Exposure string

const (
	ExposureE0 Exposure = "E0"
	ExposureE1 Exposure = "E1"
	ExposureE2 Exposure = "E2"
	ExposureE3 Exposure = "E3"
	ExposureE4 Exposure = "E4"
)

// AllExposures returns all valid exposure ratings
func AllExposures() []Exposure {
	return []Exposure{
		ExposureE0,
		ExposureE1,
		ExposureE2,
		ExposureE3,
		ExposureE4,
	}
}

// IsValid checks if the exposure rating is valid
func (e Exposure) IsValid() bool {
	switch e {
	case ExposureE0,
		ExposureE1,
		ExposureE2,
		ExposureE3,
		ExposureE4:
		return true
	default:
		return false
	}
}

// Level returns the ordinal position of the rating (E0=0 .. E4=4), or -1 for
// an unknown symbol.
func (e Exposure) Level() int {
	switch e {
	case ExposureE0:
		return 0
	case ExposureE1:
		return 1
	case ExposureE2:
		return 2
	case ExposureE3:
		return 3
	case ExposureE4:
		return 4
	default:
		return -1
	}
}

// Normalize collapses E4 to E3, the top of the four-level scheme the
// classification table is defined over. This mapping is deliberately lossy.
func (e Exposure) Normalize() Exposure {
	if e == ExposureE4 {
		return ExposureE3
	}
	return e
}

// String returns the string representation of the exposure rating
func (e Exposure) String() string {
	return string(e)
}

// ParseExposure parses a string into an Exposure
func ParseExposure(s string) (Exposure, error) {
	exp := Exposure(s)
	if !exp.IsValid() {
		return "", goerr.Wrap(ErrInvalidExposure, "unknown exposure symbol", goerr.V(RatingKey, s))
	}
	return exp, nil
}

// CombineExposures reduces the exposures of operational situations that must
// hold simultaneously to a single rating. The operating-time fraction of an
// intersection cannot exceed its smallest constituent, so the result is the
// ordinal minimum. The set must not be empty: a hazard always resolves to at
// least one situation.
func CombineExposures(exposures []Exposure) (Exposure, error) {
	if len(exposures) == 0 {
		return "", goerr.Wrap(ErrEmptyExposureSet, "at least one operational situation is required")
	}

	combined := exposures[0]
	for _, e := range exposures {
		if !e.IsValid() {
			return "", goerr.Wrap(ErrInvalidExposure, "unknown exposure symbol", goerr.V(RatingKey, e))
		}
		if e.Level() < combined.Level() {
			combined = e
		}
	}
	return combined, nil
}
