package model

import (
	"fmt"

	"github.com/fusa-lab/talos/pkg/domain/types"
)

// HazardID identifies a hazard within a session, formatted HAZ-001.
type HazardID string

// NewHazardID formats the identifier of the n-th hazard of a session.
func NewHazardID(n int) HazardID {
	return HazardID(fmt.Sprintf("HAZ-%03d", n))
}

// String returns the string representation of the HazardID
func (id HazardID) String() string {
	return string(id)
}

// SituationRef ties a hazard to one operational situation and the exposure
// that situation contributes.
type SituationRef struct {
	ID       SituationID
	Name     string
	Exposure types.Exposure
}

// Hazard is one hazardous event identified during HAZOP. It accumulates
// fields across the workflow: guide word, malfunction and severity at
// identification, situations and combined exposure at the exposure step,
// controllability and ASIL at table generation, and the goal fields last.
// Hazards are never removed from a session.
type Hazard struct {
	ID          HazardID
	Function    string
	GuideWord   types.GuideWord
	Malfunction string
	Event       string

	Situations   []SituationRef
	Exposure     types.Exposure
	ExposureNote string

	Severity     types.Severity
	SeverityNote string

	Controllability     types.Controllability
	ControllabilityNote string

	ASIL types.ASIL

	SafetyGoal string
	SafeState  string
	FTTI       string
}

// SituationSummary renders the attached situations as a single operational
// situation description for table rows.
func (h *Hazard) SituationSummary() string {
	if len(h.Situations) == 0 {
		return ""
	}
	out := ""
	for i, ref := range h.Situations {
		if i > 0 {
			out += " + "
		}
		out += ref.Name
	}
	return out
}

// CombineSituationExposures derives the combined exposure from the attached
// situation set by the minimum rule.
func (h *Hazard) CombineSituationExposures() (types.Exposure, error) {
	exposures := make([]types.Exposure, 0, len(h.Situations))
	for _, ref := range h.Situations {
		exposures = append(exposures, ref.Exposure)
	}
	return types.CombineExposures(exposures)
}

// Classify determines the ASIL from the hazard's three ratings without
// recording it.
func (h *Hazard) Classify() (types.ASIL, error) {
	return types.ClassifyASIL(h.Severity, h.Exposure, h.Controllability)
}
