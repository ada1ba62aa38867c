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
)

// hazopTool runs workflow step 2: guide-word based hazard identification
// over the extracted functions. Re-running replaces the hazard list.
type hazopTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
	llmClient gollem.LLMClient
}

func (t *hazopTool) Spec() gollem.ToolSpec {
	words := make([]string, 0, len(types.AllGuideWords()))
	for _, g := range types.AllGuideWords() {
		words = append(words, g.String())
	}
	return gollem.ToolSpec{
		Name: "talos_hazop_analysis",
		Description: "HARA step 2: HAZOP analysis. Applies the guide words (" + strings.Join(words, ", ") +
			") to every extracted function, identifies malfunctioning behaviors and hazardous events with severity ratings, and completes the hazop_completed stage. Requires extracted functions.",
		Parameters: map[string]*gollem.Parameter{},
	}
}

type hazopPromptData struct {
	ItemName   string
	GuideWords []hazopGuideWord
	Functions  []model.ItemFunction
}

type hazopGuideWord struct {
	Word    string
	Meaning string
}

func (t *hazopTool) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}
	if len(sess.Functions) == 0 {
		return nil, goerr.Wrap(types.ErrStagePrerequisite, "no functions extracted yet; run talos_extract_functions first",
			goerr.V(types.StageKey, types.StageFunctionsExtracted))
	}

	data := hazopPromptData{ItemName: sess.ItemName, Functions: sess.Functions}
	for _, g := range types.AllGuideWords() {
		data.GuideWords = append(data.GuideWords, hazopGuideWord{Word: g.String(), Meaning: g.Meaning()})
	}
	systemPrompt, err := renderPrompt(hazopPrompt, data)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Running HAZOP over %d functions...", len(sess.Functions)))
	var parsed struct {
		Hazards []struct {
			Function     string `json:"function"`
			GuideWord    string `json:"guide_word"`
			Malfunction  string `json:"malfunction"`
			Event        string `json:"hazardous_event"`
			Severity     string `json:"severity"`
			SeverityNote string `json:"severity_rationale"`
		} `json:"hazards"`
	}
	severities := make([]string, 0, len(types.AllSeverities()))
	for _, s := range types.AllSeverities() {
		severities = append(severities, s.String())
	}
	guideWords := make([]string, 0, len(types.AllGuideWords()))
	for _, g := range types.AllGuideWords() {
		guideWords = append(guideWords, g.String())
	}
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"hazards": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"function":           {Type: gollem.TypeString, Description: "Name of the affected item function"},
						"guide_word":         {Type: gollem.TypeString, Enum: guideWords},
						"malfunction":        {Type: gollem.TypeString, Description: "Malfunctioning behavior"},
						"hazardous_event":    {Type: gollem.TypeString, Description: "Vehicle-level hazardous event"},
						"severity":           {Type: gollem.TypeString, Enum: severities},
						"severity_rationale": {Type: gollem.TypeString, Description: "Why this severity applies"},
					},
				},
			},
		},
	}
	if err := generateObject(ctx, t.llmClient, systemPrompt, "Perform the HAZOP analysis.", schema, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Hazards) == 0 {
		return nil, goerr.New("LLM identified no hazards; review the function list")
	}

	// Re-running HAZOP rebuilds the hazard list in place; later-stage fields
	// are re-derived from scratch on the new set.
	sess.Hazards = nil
	for _, h := range parsed.Hazards {
		severity, err := types.ParseSeverity(h.Severity)
		if err != nil {
			return nil, goerr.Wrap(err, "LLM returned an invalid severity", goerr.V("event", h.Event))
		}
		guideWord, err := types.ParseGuideWord(h.GuideWord)
		if err != nil {
			return nil, goerr.Wrap(err, "LLM returned an invalid guide word", goerr.V("event", h.Event))
		}
		sess.Hazards = append(sess.Hazards, &model.Hazard{
			ID:           sess.NextHazardID(),
			Function:     strings.TrimSpace(h.Function),
			GuideWord:    guideWord,
			Malfunction:  strings.TrimSpace(h.Malfunction),
			Event:        strings.TrimSpace(h.Event),
			Severity:     severity,
			SeverityNote: strings.TrimSpace(h.SeverityNote),
		})
	}

	if err := sess.Advance(types.StageHazopCompleted); err != nil {
		return nil, err
	}
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	items := make([]map[string]any, len(sess.Hazards))
	for i, h := range sess.Hazards {
		items[i] = map[string]any{
			"hazard_id":   h.ID.String(),
			"function":    h.Function,
			"guide_word":  h.GuideWord.String(),
			"malfunction": h.Malfunction,
			"event":       h.Event,
			"severity":    h.Severity.String(),
		}
	}
	return map[string]any{
		"stage":   sess.Stage.String(),
		"hazards": items,
	}, nil
}
