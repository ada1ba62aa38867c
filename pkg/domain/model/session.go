package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fusa-lab/talos/pkg/domain/types"
)

// SessionID is a UUID-based identifier for a HARA session
type SessionID string

// NewSessionID generates a new UUID v7 SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.Must(uuid.NewV7()).String())
}

// String returns the string representation of the SessionID
func (id SessionID) String() string {
	return string(id)
}

// Session is the working memory of one HARA engagement: the item under
// analysis and the artifacts of each workflow step, together with the stage
// marker. Re-running an earlier step overwrites that step's artifact in
// place; Stage only ever moves forward. Version supports optimistic
// concurrency in the repository layer.
type Session struct {
	ID             SessionID
	ItemName       string
	ItemDefinition string `masq:"secret"`
	Functions      []ItemFunction
	Hazards        []*Hazard
	Table          string
	SafetyGoals    []SafetyGoal
	GoalsDocument  string
	// NoGoalsRequired marks the terminal stage reached without safety goals
	// because no hazard exceeded QM.
	NoGoalsRequired bool
	Stage           types.Stage
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewSession creates a session for the named item in its initial stage.
func NewSession(itemName, itemDefinition string) *Session {
	return &Session{
		ID:             NewSessionID(),
		ItemName:       itemName,
		ItemDefinition: itemDefinition,
		Stage:          types.StageNotStarted,
	}
}

// Hazard returns the hazard with the given ID, or nil.
func (x *Session) Hazard(id HazardID) *Hazard {
	for _, h := range x.Hazards {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// NextHazardID returns the identifier for the next hazard to register.
// Hazards are never removed, so the sequence is dense.
func (x *Session) NextHazardID() HazardID {
	return NewHazardID(len(x.Hazards) + 1)
}

// ExposureAssessed reports whether every hazard carries a combined exposure.
func (x *Session) ExposureAssessed() bool {
	if len(x.Hazards) == 0 {
		return false
	}
	for _, h := range x.Hazards {
		if !h.Exposure.IsValid() {
			return false
		}
	}
	return true
}

// Classified reports whether every hazard carries an ASIL.
func (x *Session) Classified() bool {
	if len(x.Hazards) == 0 {
		return false
	}
	for _, h := range x.Hazards {
		if !h.ASIL.IsValid() {
			return false
		}
	}
	return true
}

// ASILDistribution counts hazards per risk class.
func (x *Session) ASILDistribution() map[types.ASIL]int {
	dist := make(map[types.ASIL]int)
	for _, h := range x.Hazards {
		if h.ASIL.IsValid() {
			dist[h.ASIL]++
		}
	}
	return dist
}

// RequiresSafetyGoals reports whether any classified hazard is rated above
// QM and therefore needs a safety goal.
func (x *Session) RequiresSafetyGoals() bool {
	for _, h := range x.Hazards {
		if h.ASIL.RequiresSafetyGoal() {
			return true
		}
	}
	return false
}

// ArtifactPresent reports whether the artifact gating entry into target
// exists. Each stage is gated by the product of its prior stage; the
// terminal stage additionally needs safety goals unless no hazard exceeds
// QM.
func (x *Session) ArtifactPresent(target types.Stage) bool {
	switch target {
	case types.StageFunctionsExtracted:
		return strings.TrimSpace(x.ItemDefinition) != ""
	case types.StageHazopCompleted:
		return len(x.Functions) > 0
	case types.StageExposureAssessed:
		return len(x.Hazards) > 0
	case types.StageTableGenerated:
		return x.ExposureAssessed()
	case types.StageSafetyGoalsDerived:
		if x.Table == "" {
			return false
		}
		return len(x.SafetyGoals) > 0 || !x.RequiresSafetyGoals()
	default:
		return false
	}
}

// Advance moves the session to target when the gating artifact exists,
// leaving the session unchanged otherwise. Reaching the terminal stage
// without any hazard above QM records the no-goals marker.
func (x *Session) Advance(target types.Stage) error {
	next, err := types.AdvanceStage(x.Stage, target, x.ArtifactPresent(target))
	if err != nil {
		return err
	}
	if next.Terminal() && !x.Stage.Terminal() && !x.RequiresSafetyGoals() {
		x.NoGoalsRequired = true
	}
	x.Stage = next
	return nil
}
