package model

import "github.com/fusa-lab/talos/pkg/domain/types"

// SafetyGoal is the top-level safety requirement derived for one hazard
// rated above QM. The goal inherits the ASIL of its hazardous event.
type SafetyGoal struct {
	HazardID  HazardID
	ASIL      types.ASIL
	Statement string
	SafeState string
	FTTI      string
}
