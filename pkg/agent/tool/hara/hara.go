// Package hara provides the agent tools that drive a HARA session through
// its five workflow steps, plus the support tools for classification and the
// operational situation catalog. Each tool loads the session, mutates it and
// stores it back through the versioned repository; the deterministic pieces
// (ASIL table, exposure combination, stage machine) stay in the domain layer
// and are never delegated to the LLM.
package hara

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
)

// New builds the tool suite for one HARA session. itemdefSvc may be nil when
// no item definition directory is configured; the extraction tool then
// requires the definition to be present on the session.
func New(repo interfaces.Repository, sessionID model.SessionID, llmClient gollem.LLMClient, catalogSvc *catalog.Service, itemdefSvc *itemdef.Service) []gollem.Tool {
	return []gollem.Tool{
		&extractFunctionsTool{repo: repo, sessionID: sessionID, llmClient: llmClient, itemdef: itemdefSvc},
		&addFunctionTool{repo: repo, sessionID: sessionID},
		&hazopTool{repo: repo, sessionID: sessionID, llmClient: llmClient},
		&assessExposureTool{repo: repo, sessionID: sessionID, llmClient: llmClient, catalog: catalogSvc},
		&generateTableTool{repo: repo, sessionID: sessionID, llmClient: llmClient},
		&deriveGoalsTool{repo: repo, sessionID: sessionID, llmClient: llmClient},
		&workflowStatusTool{repo: repo, sessionID: sessionID},
		&classifyTool{repo: repo, sessionID: sessionID},
		&listSituationsTool{catalog: catalogSvc},
		&getSituationTool{catalog: catalogSvc},
		&combineSituationsTool{catalog: catalogSvc},
		&sessionBriefTool{repo: repo, sessionID: sessionID},
	}
}

// loadSession fetches the tool's session.
func loadSession(ctx context.Context, repo interfaces.Repository, id model.SessionID) (*model.Session, error) {
	sess, err := repo.Session().Get(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load session", goerr.V("session_id", id))
	}
	return sess, nil
}

// saveSession stores the mutated session back with its version check.
func saveSession(ctx context.Context, repo interfaces.Repository, sess *model.Session) (*model.Session, error) {
	updated, err := repo.Session().Update(ctx, sess)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to store session", goerr.V("session_id", sess.ID))
	}
	return updated, nil
}
