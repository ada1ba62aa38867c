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

// classifyTool determines the ASIL of one S/E/C combination. Ratings come
// either as typed parameters or as free assessment text run through the
// rating adapter. With a hazard_id the result is recorded on that hazard.
type classifyTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
}

func (t *classifyTool) Spec() gollem.ToolSpec {
	severities := make([]string, 0, len(types.AllSeverities()))
	for _, s := range types.AllSeverities() {
		severities = append(severities, s.String())
	}
	exposures := make([]string, 0, len(types.AllExposures()))
	for _, e := range types.AllExposures() {
		exposures = append(exposures, e.String())
	}
	controllabilities := make([]string, 0, len(types.AllControllabilities()))
	for _, c := range types.AllControllabilities() {
		controllabilities = append(controllabilities, c.String())
	}

	return gollem.ToolSpec{
		Name:        "talos_classify_asil",
		Description: "Determine the ASIL for a severity/exposure/controllability combination per ISO 26262-3:2018 Table 4. Provide the three ratings, or assessment_text containing them in 'Severity (S): S2' style. E4 exposure is treated as E3. Optionally records the result on a hazard.",
		Parameters: map[string]*gollem.Parameter{
			"severity": {
				Type:        gollem.TypeString,
				Description: "Severity rating",
				Required:    false,
				Enum:        severities,
			},
			"exposure": {
				Type:        gollem.TypeString,
				Description: "Exposure rating",
				Required:    false,
				Enum:        exposures,
			},
			"controllability": {
				Type:        gollem.TypeString,
				Description: "Controllability rating",
				Required:    false,
				Enum:        controllabilities,
			},
			"assessment_text": {
				Type:        gollem.TypeString,
				Description: "Free assessment text to extract the three ratings from, used when the typed ratings are not given",
				Required:    false,
			},
			"hazard_id": {
				Type:        gollem.TypeString,
				Description: "Hazard to record the ratings and ASIL on, e.g. HAZ-001",
				Required:    false,
			},
		},
	}
}

func (t *classifyTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	s, e, c, err := resolveRatings(args)
	if err != nil {
		return nil, err
	}

	asil, err := types.ClassifyASIL(s, e, c)
	if err != nil {
		return nil, err
	}

	verdict := fmt.Sprintf("ASIL determination: %s (%s, %s, %s)", asil.Label(), s, e, c)
	tool.Update(ctx, verdict)

	result := map[string]any{
		"asil":            asil.String(),
		"severity":        s.String(),
		"exposure":        e.String(),
		"controllability": c.String(),
		"verdict":         verdict,
	}

	hazardID, _ := args["hazard_id"].(string)
	if hazardID == "" {
		return result, nil
	}

	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}
	h := sess.Hazard(model.HazardID(hazardID))
	if h == nil {
		return nil, goerr.New("hazard not found in session", goerr.V("hazard_id", hazardID))
	}
	h.Severity = s
	h.Exposure = e
	h.Controllability = c
	h.ASIL = asil
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}
	result["hazard_id"] = hazardID
	return result, nil
}

// resolveRatings takes the typed parameters when all three are present and
// falls back to the text adapter otherwise.
func resolveRatings(args map[string]any) (types.Severity, types.Exposure, types.Controllability, error) {
	sevArg, _ := args["severity"].(string)
	expArg, _ := args["exposure"].(string)
	conArg, _ := args["controllability"].(string)

	if sevArg != "" && expArg != "" && conArg != "" {
		s, err := types.ParseSeverity(sevArg)
		if err != nil {
			return "", "", "", err
		}
		e, err := types.ParseExposure(expArg)
		if err != nil {
			return "", "", "", err
		}
		c, err := types.ParseControllability(conArg)
		if err != nil {
			return "", "", "", err
		}
		return s, e, c, nil
	}

	text, _ := args["assessment_text"].(string)
	if strings.TrimSpace(text) == "" {
		return "", "", "", goerr.New("provide severity, exposure and controllability, or assessment_text")
	}
	return ParseRatings(text)
}
