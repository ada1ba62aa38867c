package types

import "github.com/m-mizutani/goerr/v2"

// ASIL is the Automotive Safety Integrity Level determined from a
// (Severity, Exposure, Controllability) combination per ISO 26262-3:2018
// Table 4. QM means no ASIL requirement applies; required rigor increases
// strictly from A to D.
type ASIL string

const (
	ASILQM ASIL = "QM"
	ASILA  ASIL = "A"
	ASILB  ASIL = "B"
	ASILC  ASIL = "C"
	ASILD  ASIL = "D"
)

// AllASILs returns all valid ASIL values in ascending rigor order
func AllASILs() []ASIL {
	return []ASIL{
		ASILQM,
		ASILA,
		ASILB,
		ASILC,
		ASILD,
	}
}

// IsValid checks if the ASIL value is valid
func (a ASIL) IsValid() bool {
	switch a {
	case ASILQM,
		ASILA,
		ASILB,
		ASILC,
		ASILD:
		return true
	default:
		return false
	}
}

// Rank orders ASILs by required rigor (QM=0 .. D=4), or -1 for an unknown
// symbol.
func (a ASIL) Rank() int {
	switch a {
	case ASILQM:
		return 0
	case ASILA:
		return 1
	case ASILB:
		return 2
	case ASILC:
		return 3
	case ASILD:
		return 4
	default:
		return -1
	}
}

// RequiresSafetyGoal reports whether hazards at this level need a safety goal
// with safe state and FTTI. QM hazards are handled by standard quality
// management and need none.
func (a ASIL) RequiresSafetyGoal() bool {
	return a.IsValid() && a != ASILQM
}

// String returns the string representation of the ASIL value
func (a ASIL) String() string {
	return string(a)
}

// Label returns the display form used in tables and summaries: "QM" for
// quality management, "ASIL A" through "ASIL D" otherwise.
func (a ASIL) Label() string {
	if a == ASILQM {
		return string(ASILQM)
	}
	return "ASIL " + string(a)
}

// ParseASIL parses a string into an ASIL
func ParseASIL(s string) (ASIL, error) {
	a := ASIL(s)
	if !a.IsValid() {
		return "", goerr.New("unknown ASIL symbol", goerr.V(RatingKey, s))
	}
	return a, nil
}

// asilTable is ISO 26262-3:2018 Table 4, indexed by severity, exposure and
// controllability levels. Exposure uses the four-level scheme; E4 inputs are
// normalized to E3 before lookup. Built once, never mutated.
var asilTable = [4][4][4]ASIL{
	{ // S0
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E0
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E1
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E2
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E3
	},
	{ // S1
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E0
		{ASILQM, ASILA, ASILA, ASILA},    // E1
		{ASILQM, ASILA, ASILB, ASILB},    // E2
		{ASILQM, ASILA, ASILB, ASILC},    // E3
	},
	{ // S2
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E0
		{ASILQM, ASILA, ASILB, ASILC},    // E1
		{ASILQM, ASILB, ASILC, ASILC},    // E2
		{ASILQM, ASILB, ASILC, ASILD},    // E3
	},
	{ // S3
		{ASILQM, ASILQM, ASILQM, ASILQM}, // E0
		{ASILQM, ASILB, ASILC, ASILD},    // E1
		{ASILQM, ASILC, ASILD, ASILD},    // E2
		{ASILQM, ASILC, ASILD, ASILD},    // E3
	},
}

// ClassifyASIL determines the ASIL for the given ratings. Each rating is
// validated against its enumerated domain first; an out-of-domain symbol
// fails without any default value. E4 exposure is collapsed to E3. The
// result is a direct table lookup with no interpolation or fallback.
func ClassifyASIL(s Severity, e Exposure, c Controllability) (ASIL, error) {
	if !s.IsValid() {
		return "", goerr.Wrap(ErrInvalidSeverity, "cannot classify", goerr.V(RatingKey, s))
	}
	if !e.IsValid() {
		return "", goerr.Wrap(ErrInvalidExposure, "cannot classify", goerr.V(RatingKey, e))
	}
	if !c.IsValid() {
		return "", goerr.Wrap(ErrInvalidControllability, "cannot classify", goerr.V(RatingKey, c))
	}

	return asilTable[s.Level()][e.Normalize().Level()][c.Level()], nil
}
