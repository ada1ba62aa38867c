package types

import "github.com/m-mizutani/goerr/v2"

// Rating and workflow errors. All of these are recoverable signals for the
// caller, never process-fatal.
var (
	ErrInvalidSeverity        = goerr.New("invalid severity rating")
	ErrInvalidExposure        = goerr.New("invalid exposure rating")
	ErrInvalidControllability = goerr.New("invalid controllability rating")
	ErrEmptyExposureSet       = goerr.New("empty exposure set")
	ErrInvalidStage           = goerr.New("invalid workflow stage")
	ErrInvalidSituationGroup  = goerr.New("invalid situation group")
	ErrStagePrerequisite      = goerr.New("workflow stage prerequisite not met")
)

// Context keys for error values
const (
	RatingKey = "rating"
	StageKey  = "stage"
	TargetKey = "target"
)
