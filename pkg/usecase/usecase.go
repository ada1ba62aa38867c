package usecase

import (
	"github.com/m-mizutani/gollem"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
)

// UseCases aggregates the application flows over one repository. Chat and
// Assess are nil when no LLM client is configured; everything else works
// without one.
type UseCases struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	catalog   *catalog.Service
	itemdef   *itemdef.Service

	Session  *SessionUseCase
	Workflow *WorkflowUseCase
	Risk     *RiskUseCase
	Report   *ReportUseCase
	Chat     *ChatUseCase
	Assess   *AssessUseCase
}

type Option func(*UseCases)

// WithLLMClient enables the agent-driven flows (Chat, Assess)
func WithLLMClient(llmClient gollem.LLMClient) Option {
	return func(uc *UseCases) {
		uc.llmClient = llmClient
	}
}

// WithItemDef enables item definition lookup from local directories
func WithItemDef(svc *itemdef.Service) Option {
	return func(uc *UseCases) {
		uc.itemdef = svc
	}
}

func New(repo interfaces.Repository, catalogSvc *catalog.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:    repo,
		catalog: catalogSvc,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Session = NewSessionUseCase(repo, uc.itemdef)
	uc.Workflow = NewWorkflowUseCase(repo)
	uc.Risk = NewRiskUseCase(repo, catalogSvc)
	uc.Report = NewReportUseCase(repo)

	if uc.llmClient != nil {
		uc.Chat = NewChatUseCase(repo, uc.llmClient, catalogSvc, uc.itemdef)
		uc.Assess = NewAssessUseCase(repo, uc.llmClient, catalogSvc, uc.itemdef)
	}

	return uc
}
