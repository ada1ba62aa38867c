package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// Stage tracks how far a session has progressed through the five HARA
// workflow steps. The sequence is strictly linear and a session never moves
// backward: re-running an earlier step overwrites that step's artifact but
// leaves the stage marker where it is.
type Stage string

const (
	StageNotStarted         Stage = "not_started"
	StageFunctionsExtracted Stage = "functions_extracted"
	StageHazopCompleted     Stage = "hazop_completed"
	StageExposureAssessed   Stage = "exposure_assessed"
	StageTableGenerated     Stage = "table_generated"
	StageSafetyGoalsDerived Stage = "safety_goals_derived"
)

// AllStages returns all workflow stages in order
func AllStages() []Stage {
	return []Stage{
		StageNotStarted,
		StageFunctionsExtracted,
		StageHazopCompleted,
		StageExposureAssessed,
		StageTableGenerated,
		StageSafetyGoalsDerived,
	}
}

// IsValid checks if the stage is valid
func (s Stage) IsValid() bool {
	switch s {
	case StageNotStarted,
		StageFunctionsExtracted,
		StageHazopCompleted,
		StageExposureAssessed,
		StageTableGenerated,
		StageSafetyGoalsDerived:
		return true
	default:
		return false
	}
}

// Normalize returns the stage, treating empty as StageNotStarted.
func (s Stage) Normalize() Stage {
	if s == "" {
		return StageNotStarted
	}
	return s
}

// Order returns the position in the workflow (not_started=0 ..
// safety_goals_derived=5), or -1 for an unknown stage.
func (s Stage) Order() int {
	switch s {
	case StageNotStarted:
		return 0
	case StageFunctionsExtracted:
		return 1
	case StageHazopCompleted:
		return 2
	case StageExposureAssessed:
		return 3
	case StageTableGenerated:
		return 4
	case StageSafetyGoalsDerived:
		return 5
	default:
		return -1
	}
}

// Prev returns the stage whose artifact gates entry into s. StageNotStarted
// has no predecessor and returns itself.
func (s Stage) Prev() Stage {
	switch s {
	case StageFunctionsExtracted:
		return StageNotStarted
	case StageHazopCompleted:
		return StageFunctionsExtracted
	case StageExposureAssessed:
		return StageHazopCompleted
	case StageTableGenerated:
		return StageExposureAssessed
	case StageSafetyGoalsDerived:
		return StageTableGenerated
	default:
		return StageNotStarted
	}
}

// Next returns the stage that follows s. The terminal stage returns itself.
func (s Stage) Next() Stage {
	switch s {
	case StageNotStarted:
		return StageFunctionsExtracted
	case StageFunctionsExtracted:
		return StageHazopCompleted
	case StageHazopCompleted:
		return StageExposureAssessed
	case StageExposureAssessed:
		return StageTableGenerated
	default:
		return StageSafetyGoalsDerived
	}
}

// Terminal reports whether the workflow is complete.
func (s Stage) Terminal() bool {
	return s == StageSafetyGoalsDerived
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// ParseStage parses a string into a Stage
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", goerr.Wrap(ErrInvalidStage, "unknown stage name", goerr.V(StageKey, s))
	}
	return stage, nil
}

// AdvanceStage validates a workflow transition and returns the resulting
// stage. Targets at or behind the current stage succeed as no-ops returning
// the current stage, keeping the marker monotone. Moving forward requires
// the artifact of the target's prior stage: a skipped stage or an absent
// artifact fails with ErrStagePrerequisite naming the stage to complete
// first, and the current stage is returned unchanged.
func AdvanceStage(current, target Stage, artifactPresent bool) (Stage, error) {
	current = current.Normalize()
	if !current.IsValid() {
		return current, goerr.New("unknown workflow stage", goerr.V(StageKey, current))
	}
	if !target.IsValid() || target == StageNotStarted {
		return current, goerr.New("invalid target stage", goerr.V(TargetKey, target))
	}

	if target.Order() <= current.Order() {
		return current, nil
	}

	prior := target.Prev()
	if current.Order() < prior.Order() {
		return current, goerr.Wrap(ErrStagePrerequisite, "earlier workflow step must be completed first",
			goerr.V(StageKey, prior), goerr.V(TargetKey, target))
	}
	if !artifactPresent {
		return current, goerr.Wrap(ErrStagePrerequisite, "required artifact has not been produced",
			goerr.V(StageKey, prior), goerr.V(TargetKey, target))
	}

	return target, nil
}
