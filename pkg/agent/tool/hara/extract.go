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
	"github.com/fusa-lab/talos/pkg/service/itemdef"
)

// extractFunctionsTool runs workflow step 1: extract the item's functions
// from its item definition document.
type extractFunctionsTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
	llmClient gollem.LLMClient
	itemdef   *itemdef.Service
}

func (t *extractFunctionsTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_extract_functions",
		Description: "HARA step 1: extract the functions of the item under analysis from its item definition document. Stores the function list and completes the functions_extracted stage.",
		Parameters: map[string]*gollem.Parameter{
			"item_definition": {
				Type:        gollem.TypeString,
				Description: "Item definition text. Optional when the session already carries one or an item definition directory is configured.",
				Required:    false,
			},
		},
	}
}

func (t *extractFunctionsTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}

	if def, _ := args["item_definition"].(string); strings.TrimSpace(def) != "" {
		sess.ItemDefinition = def
	}
	if strings.TrimSpace(sess.ItemDefinition) == "" && t.itemdef != nil {
		tool.Update(ctx, fmt.Sprintf("Looking up item definition for %q...", sess.ItemName))
		def, err := t.itemdef.Lookup(ctx, sess.ItemName)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to resolve item definition", goerr.V("item", sess.ItemName))
		}
		sess.ItemDefinition = def.Content
	}
	if strings.TrimSpace(sess.ItemDefinition) == "" {
		return nil, goerr.New("no item definition available; provide item_definition or configure an item definition directory")
	}

	systemPrompt, err := renderPrompt(extractFunctionsPrompt, map[string]string{
		"ItemName":       sess.ItemName,
		"ItemDefinition": sess.ItemDefinition,
	})
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Extracting functions of %q...", sess.ItemName))
	var parsed struct {
		Functions []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"functions"`
	}
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"functions": {
				Type: gollem.TypeArray,
				Items: &gollem.Parameter{
					Type: gollem.TypeObject,
					Properties: map[string]*gollem.Parameter{
						"name":        {Type: gollem.TypeString, Description: "Short function name"},
						"description": {Type: gollem.TypeString, Description: "One sentence describing the function"},
					},
				},
			},
		},
	}
	if err := generateObject(ctx, t.llmClient, systemPrompt, "Extract the item functions.", schema, &parsed); err != nil {
		return nil, err
	}

	functions := make([]model.ItemFunction, 0, len(parsed.Functions))
	for _, f := range parsed.Functions {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		functions = append(functions, model.ItemFunction{
			Number:      len(functions) + 1,
			Name:        strings.TrimSpace(f.Name),
			Description: strings.TrimSpace(f.Description),
		})
	}

	// Some models ignore the schema and answer with a numbered list; parse
	// that before giving up.
	if len(functions) == 0 {
		text, err := generateText(ctx, t.llmClient, systemPrompt, "Extract the item functions as a numbered list.")
		if err != nil {
			return nil, err
		}
		functions = ParseFunctionList(text)
	}
	if len(functions) == 0 {
		return nil, goerr.New("LLM proposed no functions; review the item definition")
	}
	sess.Functions = functions

	if err := sess.Advance(types.StageFunctionsExtracted); err != nil {
		return nil, err
	}
	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	return map[string]any{
		"stage":     sess.Stage.String(),
		"functions": functionsToMaps(sess.Functions),
	}, nil
}

// addFunctionTool appends a function the engineer identified manually.
type addFunctionTool struct {
	repo      interfaces.Repository
	sessionID model.SessionID
}

func (t *addFunctionTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "talos_add_function",
		Description: "Append one manually identified function to the session's function list. Use when the engineer names a function the extraction missed.",
		Parameters: map[string]*gollem.Parameter{
			"name": {
				Type:        gollem.TypeString,
				Description: "Short function name",
				Required:    true,
			},
			"description": {
				Type:        gollem.TypeString,
				Description: "One sentence describing the function",
				Required:    false,
			},
		},
	}
}

func (t *addFunctionTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	name, _ := args["name"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, goerr.New("name is required")
	}
	description, _ := args["description"].(string)

	sess, err := loadSession(ctx, t.repo, t.sessionID)
	if err != nil {
		return nil, err
	}

	tool.Update(ctx, fmt.Sprintf("Adding function: %s", name))
	sess.Functions = append(sess.Functions, model.ItemFunction{
		Number:      len(sess.Functions) + 1,
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Manual:      true,
	})

	// A manual function satisfies stage 1 when extraction was skipped but an
	// item definition is on file.
	if sess.Stage.Normalize() == types.StageNotStarted && sess.ArtifactPresent(types.StageFunctionsExtracted) {
		if err := sess.Advance(types.StageFunctionsExtracted); err != nil {
			return nil, err
		}
	}

	if _, err := saveSession(ctx, t.repo, sess); err != nil {
		return nil, err
	}

	return map[string]any{
		"stage":     sess.Stage.String(),
		"functions": functionsToMaps(sess.Functions),
	}, nil
}

func functionsToMaps(functions []model.ItemFunction) []map[string]any {
	items := make([]map[string]any, len(functions))
	for i, f := range functions {
		items[i] = map[string]any{
			"number":      f.Number,
			"name":        f.Name,
			"description": f.Description,
			"manual":      f.Manual,
		}
	}
	return items
}
