package hara

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/agent/tool"
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/report"
)

// deriveGoalsTool runs workflow step 5: derive one safety goal per hazard
// rated above QM. When nothing exceeds QM the workflow completes with the
// no-goals-required marker instead.
type deriveGoalsTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
	llmClient gollem.LLMClient
}

func (t *deriveGoalsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_derive_goals",
		Description: "HARA step 5: derives a safety goal with safe state and FTTI for every hazard rated ASIL A or above and completes the safety_goals_derived stage. When all hazards are QM the workflow completes without goals. Requires the generated HARA table.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

type goalsPromptData struct {
	ItemName string
	Hazards  []*model.Hazard
}

func (t *deriveGoalsTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Table == "" {
		return nil, goerr.Wrap(types.ErrStagePrerequisite, "no HARA table generated yet; run talos_generate_table first",
			goerr.V(types.StageKey, types.StageTableGenerated))
	}

	if !sess.RequiresSafetyGoals() {
		tool.Update(ctx, "All hazards are QM, no safety goals required")
		sess.SafetyGoals = nil
		sess.GoalsDocument = ""
		if err := sess.Advance(types.StageSafetyGoalsDerived); err != nil {
			return nil, err
		}
		sess.GoalsDocument = report.Goals(sess)
		if _, err := saveSession(ctx, t.repo, sess); err != nil {
			return nil, err
		}
		return map[string]any{
			"stage":             sess.Stage.String(),
			"no_goals_required": true,
			"message":           "All hazards are classified as QM. No safety goals are required per ISO 26262-3:2018.",
		}, nil
	}

	data := goalsPromptData{ItemName: sess.ItemName}
	for _, h := range sess.Hazards {
		if h.ASIL.RequiresSafetyGoal() {
			data.Hazards = append(data.Hazards, h)
		}
	}
	systemPrompt, err := renderPrompt(goalsPrompt, data)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Deriving safety goals for %d hazards...", len(data.Hazards)))
	var parsed struct {
		Goals []struct {
			HazardID  string `json:"hazard_id"`
			Statement string `json:"safety_goal"`
			SafeState string `json:"safe_state"`
			FTTI      string `json:"ftti"`
		} `json:"goals"`
	}
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"goals": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"hazard_id":   {Type: gollem.TypeString, Description: "Hazard ID, e.g. HAZ-001"},
						"safety_goal": {Type: gollem.TypeString, Description: "Top-level safety goal statement"},
						"safe_state":  {Type: gollem.TypeString, Description: "Safe state the item shall reach"},
						"ftti":        {Type: gollem.TypeString, Description: "Fault-tolerant time interval, or N/A"},
					},
				},
			},
		},
	}
	if err := generateObject(ctx, t.llmClient, systemPrompt, "Derive the safety goals.", schema, &parsed); err != nil {
		return nil, err
	}

	sess.SafetyGoals = nil
	for _, g := range parsed.Goals {
		h := sess.Hazard(model.HazardID(g.HazardID))
		if h == nil {
			return nil, goerr.New("LLM referenced an unknown hazard", goerr.V("hazard_id", g.HazardID))
		}
		if !h.ASIL.RequiresSafetyGoal() {
			continue
		}
		h.SafetyGoal = strings.TrimSpace(g.Statement)
		h.SafeState = strings.TrimSpace(g.SafeState)
		h.FTTI = strings.TrimSpace(g.FTTI)
		sess.SafetyGoals = append(sess.SafetyGoals, model.SafetyGoal{
			HazardID:  h.ID,
			ASIL:      h.ASIL,
			Statement: h.SafetyGoal,
			SafeState: h.SafeState,
			FTTI:      h.FTTI,
		})
	}

	for _, h := range sess.Hazards {
		if h.ASIL.RequiresSafetyGoal() && h.SafetyGoal == "" {
			return nil, goerr.New("LLM left a hazard above QM without a safety goal", goerr.V("hazard_id", h.ID))
		}
	}

	// Hazard rows now carry goal columns; refresh the stored table.
	sess.Table = report.Table(sess)
	sess.GoalsDocument = report.Goals(sess)

	if err := sess.Advance(types.StageSafetyGoalsDerived); err != nil {
		return nil, err
	}
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(sess.SafetyGoals))
	for i, g := range sess.SafetyGoals {
		items[i] = map[string]any{
			"hazard_id":   g.HazardID.String(),
			"asil":        g.ASIL.String(),
			"safety_goal": g.Statement,
			"safe_state":  g.SafeState,
			"ftti":        g.FTTI,
		}
	}
	return map[string]any{
		"stage":        sess.Stage.String(),
		"safety_goals": items,
	}, nil
}
