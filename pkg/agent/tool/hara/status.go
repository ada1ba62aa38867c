package hara

import (
	"context"

	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/agent/tool"
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

// stageDescriptions explains what each workflow stage produces, keyed by the
// stage reached after completing it.
var stageDescriptions = map[types.Stage]string{
	types.StageNotStarted:         "Nothing produced yet; the session only carries the item under analysis.",
	types.StageFunctionsExtracted: "The item's functions are extracted from the item definition (talos_extract_functions).",
	types.StageHazopCompleted:     "HAZOP guide words are applied to every function; hazards with severity ratings are identified (talos_hazop_analysis).",
	types.StageExposureAssessed:   "Every hazard carries operational situations and a combined exposure (talos_assess_exposure).",
	types.StageTableGenerated:     "Controllability is rated, every hazard is classified and the 12-column HARA table is rendered (talos_generate_table).",
	types.StageSafetyGoalsDerived: "Safety goals with safe states and FTTIs are derived for every hazard above QM (talos_derive_goals).",
}

// nextActions names the tool that completes the stage following the given
// one.
var nextActions = map[types.Stage]string{
	types.StageNotStarted:         "talos_extract_functions",
	types.StageFunctionsExtracted: "talos_hazop_analysis",
	types.StageHazopCompleted:     "talos_assess_exposure",
	types.StageExposureAssessed:   "talos_generate_table",
	types.StageTableGenerated:     "talos_derive_goals",
}

// workflowStatusTool explains the five-step HARA workflow and where the
// session currently stands.
type workflowStatusTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
}

func (t *workflowStatusTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_workflow_status",
		Description: "Report the session's current HARA workflow stage, what each of the five stages produces, and the next action to take.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *workflowStatusTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}

	current := sess.Stage.Normalize()
	tool.Update(ctx, "Checking workflow status...")

	stages := make([]map[string]any, 0, len(types.AllStages()))
	for _, s := range types.AllStages() {
		stages = append(stages, map[string]any{
			"stage":       s.String(),
			"order":       s.Order(),
			"description": stageDescriptions[s],
			"completed":   s.Order() <= current.Order(),
		})
	}

	result := map[string]any{
		"current_stage": current.String(),
		"complete":      current.Terminal(),
		"stages":        stages,
	}
	if next, ok := nextActions[current]; ok {
		result["next_action"] = next
	}
	return result, nil
}

// sessionBriefTool summarizes the session's working memory.
type sessionBriefTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
}

func (t *sessionBriefTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_session_brief",
		Description: "Summarize the session: item under analysis, workflow stage, function and hazard counts, and the ASIL distribution.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

func (t *sessionBriefTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}

	distribution := map[string]any{}
	for asil, n := range sess.ASILDistribution() {
		distribution[asil.String()] = n
	}

	return map[string]any{
		"session_id":        sess.ID.String(),
		"item_name":         sess.ItemName,
		"stage":             sess.Stage.Normalize().String(),
		"functions":         len(sess.Functions),
		"hazards":           len(sess.Hazards),
		"safety_goals":      len(sess.SafetyGoals),
		"no_goals_required": sess.NoGoalsRequired,
		"distribution":      distribution,
	}, nil
}
