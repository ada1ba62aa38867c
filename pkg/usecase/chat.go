package usecase

import (
	"bytes"
	"context"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/agent/tool/hara"
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
	"github.com/fusa-lab/talos/pkg/utils/async"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

//go:embed prompt/agent_system.md
var agentSystemPromptTmpl string

var agentSystemPrompt = template.Must(template.New("agent_system").Parse(agentSystemPromptTmpl))

// ChatUseCase runs the conversational HARA agent against one session
type ChatUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	catalog   *catalog.Service
	itemdef   *itemdef.Service
}

// NewChatUseCase creates a new ChatUseCase instance
func NewChatUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, catalogSvc *catalog.Service, itemdefSvc *itemdef.Service) *ChatUseCase {
	return &ChatUseCase{
		repo:      repo,
		llmClient: llmClient,
		catalog:   catalogSvc,
		itemdef:   itemdefSvc,
	}
}

// agentPromptData holds the session snapshot for the system prompt template
type agentPromptData struct {
	CurrentTime   string
	SessionID     model.SessionID
	ItemName      string
	Stage         string
	FunctionCount int
	HazardCount   int
	GoalCount     int
}

// Chat sends one engineer message to the agent and returns its reply. Tool
// executions are recorded as session activities so the run can be audited
// afterwards.
func (uc *ChatUseCase) Chat(ctx context.Context, sessionID model.SessionID, message string) (string, error) {
	logger := logging.From(ctx)

	sess, err := getSession(ctx, uc.repo, sessionID)
	if err != nil {
		return "", err
	}

	systemPrompt, err := uc.buildSystemPrompt(sess)
	if err != nil {
		return "", err
	}

	tools := hara.New(uc.repo, sessionID, uc.llmClient, uc.catalog, uc.itemdef)

	agent := gollem.New(uc.llmClient,
		gollem.WithSystemPrompt(systemPrompt),
		gollem.WithTools(tools...),
		gollem.WithToolMiddleware(
			func(next gollem.ToolHandler) gollem.ToolHandler {
				return func(ctx context.Context, req *gollem.ToolExecRequest) (*gollem.ToolExecResponse, error) {
					resp, err := next(ctx, req)
					uc.recordActivity(ctx, sessionID, req, resp)
					return resp, err
				}
			},
		),
	)

	resp, err := agent.Execute(ctx, gollem.Text(message))
	if err != nil {
		return "", goerr.Wrap(err, "failed to execute agent", goerr.V(SessionIDKey, sessionID))
	}

	reply := strings.Join(resp.Texts, "\n")
	logger.Info("agent turn completed",
		"session_id", sessionID,
		"reply_length", len(reply),
	)
	return reply, nil
}

func (uc *ChatUseCase) buildSystemPrompt(sess *model.Session) (string, error) {
	data := agentPromptData{
		CurrentTime:   time.Now().UTC().Format(time.RFC3339),
		SessionID:     sess.ID,
		ItemName:      sess.ItemName,
		Stage:         string(sess.Stage),
		FunctionCount: len(sess.Functions),
		HazardCount:   len(sess.Hazards),
		GoalCount:     len(sess.SafetyGoals),
	}

	var buf bytes.Buffer
	if err := agentSystemPrompt.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute agent system prompt template")
	}
	return buf.String(), nil
}

// recordActivity appends one trail entry per tool execution. Failures are
// logged and swallowed so a broken trail never aborts the agent run.
func (uc *ChatUseCase) recordActivity(ctx context.Context, sessionID model.SessionID, req *gollem.ToolExecRequest, resp *gollem.ToolExecResponse) {
	msg := "ok"
	if resp != nil && resp.Error != nil {
		msg = "error: " + resp.Error.Error()
	}

	entry := &model.Activity{
		ID:        model.NewActivityID(),
		SessionID: sessionID,
		Tool:      req.Tool.Name,
		Message:   msg,
		CreatedAt: time.Now().UTC(),
	}
	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.repo.Activity().Create(ctx, entry); err != nil {
			logging.From(ctx).Warn("failed to record tool activity",
				"session_id", sessionID,
				"tool", req.Tool.Name,
				logging.ErrAttr(err),
			)
		}
		return nil
	})
}
