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
	"github.com/fusa-lab/talos/pkg/service/catalog"
)

// assessExposureTool runs workflow step 3: attach operational situations to
// every hazard and derive combined exposures by the minimum rule.
type assessExposureTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
	llmClient gollem.LLMClient
	catalog   *catalog.Service
}

func (t *assessExposureTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_assess_exposure",
		Description: "HARA step 3: situation analysis and exposure assessment. Selects the relevant operational situations for every hazard from the reference catalog, derives each hazard's combined exposure by the minimum rule, and completes the exposure_assessed stage. Requires completed HAZOP.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

type exposurePromptData struct {
	ItemName   string
	Criteria   []exposureCriterion
	Rule       string
	Situations []*model.OperationalSituation
	Hazards    []*model.Hazard
}

type exposureCriterion struct {
	Level string
	Text  string
}

func (t *assessExposureTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Hazards) == 0 {
		return nil, goerr.Wrap(types.ErrStagePrerequisite, "no hazards identified yet; run talos_hazop_analysis first",
			goerr.V(types.StageKey, types.StageHazopCompleted))
	}

	data := exposurePromptData{
		ItemName:   sess.ItemName,
		Rule:       t.catalog.Rule().ExposureCalculation,
		Situations: t.catalog.List(),
		Hazards:    sess.Hazards,
	}
	for _, e := range types.AllExposures() {
		data.Criteria = append(data.Criteria, exposureCriterion{Level: e.String(), Text: t.catalog.Criterion(e)})
	}
	systemPrompt, err := renderPrompt(exposurePrompt, data)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Assessing exposure for %d hazards...", len(sess.Hazards)))
	var parsed struct {
		Assessments []struct {
			HazardID   string   `json:"hazard_id"`
			Situations []string `json:"situation_ids"`
			Note       string   `json:"rationale"`
		} `json:"assessments"`
	}
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"assessments": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"hazard_id": {Type: gollem.TypeString, Description: "Hazard ID, e.g. HAZ-001"},
						"situation_ids": {
							Type:        gollem.TypeArray,
							Description: "2 to 4 catalog situation IDs that can hold simultaneously",
							Items:       &gollem.Parameter{Type: gollem.TypeString},
						},
						"rationale": {Type: gollem.TypeString, Description: "Why these situations apply"},
					},
				},
			},
		},
	}
	if err := generateObject(ctx, t.llmClient, systemPrompt, "Assess the exposure of every hazard.", schema, &parsed); err != nil {
		return nil, err
	}

	for _, a := range parsed.Assessments {
		h := sess.Hazard(model.HazardID(a.HazardID))
		if h == nil {
			return nil, goerr.New("LLM referenced an unknown hazard", goerr.V("hazard_id", a.HazardID))
		}

		h.Situations = nil
		for _, id := range a.Situations {
			situation, err := t.catalog.Get(model.SituationID(strings.TrimSpace(id)))
			if err != nil {
				return nil, goerr.Wrap(err, "LLM referenced an unknown situation",
					goerr.V("hazard_id", a.HazardID), goerr.V("situation_id", id))
			}
			h.Situations = append(h.Situations, situation.Ref())
		}

		combined, err := h.CombineSituationExposures()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to combine situation exposures", goerr.V("hazard_id", a.HazardID))
		}
		h.Exposure = combined
		h.ExposureNote = strings.TrimSpace(a.Note)
	}

	if !sess.ExposureAssessed() {
		return nil, goerr.New("LLM left hazards without an exposure assessment; re-run the assessment")
	}

	if err := sess.Advance(types.StageExposureAssessed); err != nil {
		return nil, err
	}
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(sess.Hazards))
	for i, h := range sess.Hazards {
		ids := make([]string, len(h.Situations))
		for j, ref := range h.Situations {
			ids[j] = ref.ID.String()
		}
		items[i] = map[string]any{
			"hazard_id":         h.ID.String(),
			"situation_ids":     ids,
			"combined_exposure": h.Exposure.String(),
		}
	}
	return map[string]any{
		"stage":       sess.Stage.String(),
		"assessments": items,
	}, nil
}
