package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/repository/memory"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/usecase"
)

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{Texts: []string{"{}"}}, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient returns the queued responses one session at a time.
type mockLLMClient struct {
	responses []string
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	next := "{}"
	if len(c.responses) > 0 {
		next = c.responses[0]
		c.responses = c.responses[1:]
	}
	return &mockLLMSession{
		generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{next}}, nil
		},
	}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func newTestUseCases(t *testing.T, opts ...usecase.Option) (*usecase.UseCases, *memory.Memory) {
	t.Helper()
	repo := memory.New()
	catalogSvc, err := catalog.New()
	gt.NoError(t, err).Required()
	return usecase.New(repo, catalogSvc, opts...), repo
}

func TestNew_AgentFlowsRequireLLM(t *testing.T) {
	uc, _ := newTestUseCases(t)
	gt.Bool(t, uc.Session != nil).True()
	gt.Bool(t, uc.Workflow != nil).True()
	gt.Bool(t, uc.Risk != nil).True()
	gt.Bool(t, uc.Report != nil).True()
	gt.Bool(t, uc.Chat == nil).True()
	gt.Bool(t, uc.Assess == nil).True()

	withLLM, _ := newTestUseCases(t, usecase.WithLLMClient(&mockLLMClient{}))
	gt.Bool(t, withLLM.Chat != nil).True()
	gt.Bool(t, withLLM.Assess != nil).True()
}
