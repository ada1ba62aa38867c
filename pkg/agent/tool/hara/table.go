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

// generateTableTool runs workflow step 4: rate controllability per hazard,
// classify every hazard through the ASIL table and render the HARA table.
type generateTableTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
	llmClient gollem.LLMClient
}

func (t *generateTableTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_generate_table",
		Description: "HARA step 4: rates controllability for every hazard, determines each ASIL from the ISO 26262-3:2018 Table 4 classification, renders the 12-column HARA table and completes the table_generated stage. Requires assessed exposures.",
		Parameters:  map[string]*gollem.Parameter{},
	}
}

type controllabilityPromptData struct {
	ItemName string
	Hazards  []controllabilityPromptHazard
}

type controllabilityPromptHazard struct {
	ID        model.HazardID
	Event     string
	Severity  types.Severity
	Exposure  types.Exposure
	Situation string
}

func (t *generateTableTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.ExposureAssessed() {
		return nil, goerr.Wrap(types.ErrStagePrerequisite, "exposure assessment is incomplete; run talos_assess_exposure first",
			goerr.V(types.StageKey, types.StageExposureAssessed))
	}

	data := controllabilityPromptData{ItemName: sess.ItemName}
	for _, h := range sess.Hazards {
		data.Hazards = append(data.Hazards, controllabilityPromptHazard{
			ID:        h.ID,
			Event:     h.Event,
			Severity:  h.Severity,
			Exposure:  h.Exposure,
			Situation: h.SituationSummary(),
		})
	}
	systemPrompt, err := renderPrompt(controllabilityPrompt, data)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Rating controllability for %d hazards...", len(sess.Hazards)))
	var parsed struct {
		Assessments []struct {
			HazardID        string `json:"hazard_id"`
			Controllability string `json:"controllability"`
			Note            string `json:"rationale"`
		} `json:"assessments"`
	}
	levels := make([]string, 0, len(types.AllControllabilities()))
	for _, c := range types.AllControllabilities() {
		levels = append(levels, c.String())
	}
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"assessments": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"hazard_id":       {Type: gollem.TypeString, Description: "Hazard ID, e.g. HAZ-001"},
						"controllability": {Type: gollem.TypeString, Enum: levels},
						"rationale":       {Type: gollem.TypeString, Description: "Why this controllability applies"},
					},
				},
			},
		},
	}
	if err := generateObject(ctx, t.llmClient, systemPrompt, "Rate the controllability of every hazard.", schema, &parsed); err != nil {
		return nil, err
	}

	for _, a := range parsed.Assessments {
		h := sess.Hazard(model.HazardID(a.HazardID))
		if h == nil {
			return nil, goerr.New("LLM referenced an unknown hazard", goerr.V("hazard_id", a.HazardID))
		}
		c, err := types.ParseControllability(a.Controllability)
		if err != nil {
			return nil, goerr.Wrap(err, "LLM returned an invalid controllability", goerr.V("hazard_id", a.HazardID))
		}
		h.Controllability = c
		h.ControllabilityNote = strings.TrimSpace(a.Note)
	}

	// The classification itself never goes through the LLM.
	for _, h := range sess.Hazards {
		asil, err := h.Classify()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to classify hazard", goerr.V("hazard_id", h.ID))
		}
		h.ASIL = asil
	}

	sess.Table = report.Table(sess)

	if err := sess.Advance(types.StageTableGenerated); err != nil {
		return nil, err
	}
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	distribution := map[string]any{}
	for asil, n := range sess.ASILDistribution() {
		distribution[asil.String()] = n
	}
	return map[string]any{
		"stage":        sess.Stage.String(),
		"table":        sess.Table,
		"distribution": distribution,
	}, nil
}
