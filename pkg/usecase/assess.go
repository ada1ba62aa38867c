package usecase

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"golang.org/x/sync/errgroup"

	"github.com/fusa-lab/talos/pkg/agent/tool/hara"
	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

// stagePipeline is the tool order of one unattended HARA run
var stagePipeline = []string{
	"talos_extract_functions",
	"talos_hazop_analysis",
	"talos_assess_exposure",
	"talos_generate_table",
	"talos_derive_goals",
}

// AssessOption holds options for the batch assess command
type AssessOption struct {
	Items    []string
	Parallel int
	Output   string
}

// AssessResult is the outcome of one item's unattended run
type AssessResult struct {
	ItemName  string
	SessionID model.SessionID
	Stage     types.Stage
	Goals     int
	Report    string
	Err       error
}

// AssessUseCase runs the five-step HARA pipeline unattended, one session
// per item, without the conversational agent loop in between.
type AssessUseCase struct {
	repo      interfaces.Repository
	llmClient gollem.LLMClient
	catalog   *catalog.Service
	itemdef   *itemdef.Service
}

// NewAssessUseCase creates a new AssessUseCase instance
func NewAssessUseCase(repo interfaces.Repository, llmClient gollem.LLMClient, catalogSvc *catalog.Service, itemdefSvc *itemdef.Service) *AssessUseCase {
	return &AssessUseCase{
		repo:      repo,
		llmClient: llmClient,
		catalog:   catalogSvc,
		itemdef:   itemdefSvc,
	}
}

// Run assesses the items with bounded parallelism and returns one result
// per item in input order. Per-item failures are reported in the result,
// not returned, so one broken item definition never aborts the batch.
func (uc *AssessUseCase) Run(ctx context.Context, opts AssessOption) ([]*AssessResult, error) {
	if len(opts.Items) == 0 {
		return nil, goerr.New("no items to assess")
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}

	results := make([]*AssessResult, len(opts.Items))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Parallel)

	for i, item := range opts.Items {
		g.Go(func() error {
			r := uc.assessItem(ctx, item, opts.Output)
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (uc *AssessUseCase) assessItem(ctx context.Context, itemName, output string) *AssessResult {
	logger := logging.From(ctx)
	r := &AssessResult{ItemName: itemName}

	sessions := NewSessionUseCase(uc.repo, uc.itemdef)
	sess, err := sessions.Create(ctx, itemName, "")
	if err != nil {
		r.Err = err
		return r
	}
	r.SessionID = sess.ID

	tools := hara.New(uc.repo, sess.ID, uc.llmClient, uc.catalog, uc.itemdef)
	byName := make(map[string]gollem.Tool, len(tools))
	for _, t := range tools {
		byName[t.Spec().Name] = t
	}

	for _, name := range stagePipeline {
		t, ok := byName[name]
		if !ok {
			r.Err = goerr.New("pipeline tool is missing", goerr.V("tool", name))
			return r
		}

		logger.Info("running pipeline step", "item", itemName, "session_id", sess.ID, "tool", name)
		if _, err := t.Run(ctx, map[string]any{}); err != nil {
			r.Err = goerr.Wrap(err, "pipeline step failed",
				goerr.V("tool", name), goerr.V(SessionIDKey, sess.ID))
			return r
		}
	}

	final, err := getSession(ctx, uc.repo, sess.ID)
	if err != nil {
		r.Err = err
		return r
	}
	r.Stage = final.Stage.Normalize()
	r.Goals = len(final.SafetyGoals)

	if output != "" {
		reports := NewReportUseCase(uc.repo)
		loc, err := reports.Export(ctx, sess.ID, output)
		if err != nil {
			r.Err = err
			return r
		}
		r.Report = loc
	}

	return r
}
