package hara

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/agent/tool"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/catalog"
)

func situationToMap(s *model.OperationalSituation) map[string]any {
	return map[string]any{
		"id":                  s.ID.String(),
		"group":               s.Group.String(),
		"name":                s.Name,
		"exposure":            s.Exposure.String(),
		"exposure_percentage": s.ExposurePercentage,
		"description":         s.Description,
		"frequency":           s.Frequency,
		"duration":            s.Duration,
		"rationale":           s.Rationale,
	}
}

// listSituationsTool lists the operational situation catalog.
type listSituationsTool struct {
	catalog *catalog.Service
}

func (t *listSituationsTool) Spec() gollem.ToolSpec {
	groups := make([]string, 0, len(types.AllSituationGroups()))
	for _, g := range types.AllSituationGroups() {
		groups = append(groups, g.String())
	}
	return gollem.ToolSpec{
		Name:        "talos_list_situations",
		Description: "List the reference catalog of basic operational situations with their exposure ratings, optionally filtered by group.",
		Parameters: map[string]*gollem.Parameter{
			"group": {
				Type:        gollem.TypeString,
				Description: "Restrict the listing to one situation group",
				Required:    false,
				Enum:        groups,
			},
		},
	}
}

func (t *listSituationsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	var situations []*model.OperationalSituation
	if g, ok := args["group"].(string); ok && g != "" {
		group, err := types.ParseSituationGroup(g)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid situation group")
		}
		tool.Update(ctx, fmt.Sprintf("Listing %s situations...", group))
		situations = t.catalog.ListGroup(group)
	} else {
		tool.Update(ctx, "Listing operational situation catalog...")
		situations = t.catalog.List()
	}

	items := make([]map[string]any, len(situations))
	for i, s := range situations {
		items[i] = map[string]any{
			"id":       s.ID.String(),
			"group":    s.Group.String(),
			"name":     s.Name,
			"exposure": s.Exposure.String(),
		}
	}

	criteria := map[string]any{}
	for _, e := range types.AllExposures() {
		criteria[e.String()] = t.catalog.Criterion(e)
	}

	return map[string]any{
		"situations":        items,
		"exposure_criteria": criteria,
	}, nil
}

// getSituationTool returns the full detail of one catalog entry.
type getSituationTool struct {
	catalog *catalog.Service
}

func (t *getSituationTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_get_situation",
		Description: "Get the full detail of one operational situation from the reference catalog by its ID.",
		Parameters: map[string]*gollem.Parameter{
			"situation_id": {
				Type:        gollem.TypeString,
				Description: "Catalog situation ID, e.g. URB-001",
				Required:    true,
			},
		},
	}
}

func (t *getSituationTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	id, _ := args["situation_id"].(string)
	if id == "" {
		return nil, goerr.New("situation_id is required")
	}

	s, err := t.catalog.Get(model.SituationID(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get situation", goerr.V("situation_id", id))
	}
	return situationToMap(s), nil
}

// combineSituationsTool builds a custom scenario from catalog entries with
// the minimum-rule exposure.
type combineSituationsTool struct {
	catalog *catalog.Service
}

func (t *combineSituationsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_combine_situations",
		Description: "Combine basic operational situations from the catalog into one specific driving scenario. The combined exposure is the minimum of the constituents, because an intersection of conditions cannot occur more often than its rarest one.",
		Parameters: map[string]*gollem.Parameter{
			"name": {
				Type:        gollem.TypeString,
				Description: "Name of the combined scenario",
				Required:    true,
			},
			"situation_ids": {
				Type:        gollem.TypeArray,
				Description: "Catalog situation IDs to combine (at least one)",
				Required:    true,
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
		},
	}
}

func (t *combineSituationsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, _ := args["name"].(string)
	if name == "" {
		return nil, goerr.New("name is required")
	}

	var ids []model.SituationID
	if raw, ok := args["situation_ids"].([]any); ok {
		for _, v := range raw {
			if s, ok := v.(string); ok && s != "" {
				ids = append(ids, model.SituationID(s))
			}
		}
	}
	if len(ids) == 0 {
		return nil, goerr.Wrap(types.ErrEmptyExposureSet, "situation_ids must name at least one catalog entry")
	}

	tool.Update(ctx, fmt.Sprintf("Combining %d situations into %q...", len(ids), name))
	combined, err := t.catalog.Combine(name, ids)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to combine situations")
	}

	constituents := make([]map[string]any, len(combined.Components))
	for i, s := range combined.Components {
		constituents[i] = map[string]any{
			"id":       s.ID.String(),
			"name":     s.Name,
			"exposure": s.Exposure.String(),
		}
	}
	return map[string]any{
		"name":              combined.Name,
		"combined_exposure": combined.Exposure.String(),
		"constituents":      constituents,
		"rule":              t.catalog.Rule().ExposureCalculation,
	}, nil
}
