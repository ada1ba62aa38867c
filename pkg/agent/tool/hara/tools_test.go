package hara_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/agent/tool"
	"github.com/fusa-lab/talos/pkg/agent/tool/hara"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/repository/memory"
	"github.com/fusa-lab/talos/pkg/service/catalog"
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

// mockLLMClient returns the queued JSON responses one session at a time.
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

func newCtxWithUpdateCapture() (context.Context, *[]string) {
	var messages []string
	ctx := tool.WithUpdate(context.Background(), func(_ context.Context, msg string) {
		messages = append(messages, msg)
	})
	return ctx, &messages
}

func findTool(t *testing.T, tools []gollem.Tool, name string) gollem.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Spec().Name == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func newTestSuite(t *testing.T, llm *mockLLMClient) (*memory.Memory, model.SessionID, []gollem.Tool) {
	t.Helper()
	repo := memory.New()
	sess, err := repo.Session().Create(context.Background(),
		model.NewSession("Electric Power Steering", "The EPS item provides steering assist torque based on driver input and vehicle speed."))
	gt.NoError(t, err).Required()

	catalogSvc, err := catalog.New()
	gt.NoError(t, err).Required()

	return repo, sess.ID, hara.New(repo, sess.ID, llm, catalogSvc, nil)
}

const hazopResponse = `{"hazards":[
  {"function":"Steering Assist","guide_word":"NO","malfunction":"No assist torque provided","hazardous_event":"Sudden loss of steering assist at speed","severity":"S3","severity_rationale":"Loss of control can cause fatal collisions"},
  {"function":"Steering Assist","guide_word":"REVERSE","malfunction":"Assist torque in the opposite direction","hazardous_event":"Vehicle steered against driver intent","severity":"S3","severity_rationale":"Directly induces lane departure"}
]}`

const exposureResponse = `{"assessments":[
  {"hazard_id":"HAZ-001","situation_ids":["URB-001","ENV-007"],"rationale":"Assist loss matters most in dense traffic and heat-stressed electronics"},
  {"hazard_id":"HAZ-002","situation_ids":["HWY-001","ENV-007"],"rationale":"Reverse assist is most dangerous at highway speed"}
]}`

const controllabilityResponse = `{"assessments":[
  {"hazard_id":"HAZ-001","controllability":"C3","rationale":"Abrupt effort change overwhelms most drivers"},
  {"hazard_id":"HAZ-002","controllability":"C3","rationale":"Counter-steering against the system is difficult"}
]}`

const goalsResponse = `{"goals":[
  {"hazard_id":"HAZ-001","safety_goal":"The item shall not lose assist torque without prior degradation warning","safe_state":"Gradual assist ramp-down with driver warning","ftti":"100 ms"},
  {"hazard_id":"HAZ-002","safety_goal":"The item shall not apply assist torque opposing driver input","safe_state":"Assist disabled, manual steering retained","ftti":"50 ms"}
]}`

func TestTools_FiveStageWorkflow(t *testing.T) {
	llm := &mockLLMClient{responses: []string{
		`{"functions":[{"name":"Steering Assist","description":"Provides assist torque proportional to driver input"},{"name":"Return Control","description":"Returns the wheel to center"}]}`,
		hazopResponse,
		exposureResponse,
		controllabilityResponse,
		goalsResponse,
	}}
	repo, sessionID, tools := newTestSuite(t, llm)
	ctx, messages := newCtxWithUpdateCapture()

	// Stage 1: extract functions
	out, err := findTool(t, tools, "talos_extract_functions").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("functions_extracted")

	// Stage 2: HAZOP
	out, err = findTool(t, tools, "talos_hazop_analysis").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("hazop_completed")

	sess, err := repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Array(t, sess.Hazards).Length(2)
	gt.Value(t, sess.Hazards[0].ID).Equal(model.HazardID("HAZ-001"))
	gt.Value(t, sess.Hazards[0].Severity).Equal(types.SeverityS3)

	// Stage 3: exposure, combined by the minimum rule
	out, err = findTool(t, tools, "talos_assess_exposure").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("exposure_assessed")

	sess, err = repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	// URB-001 is E4 and ENV-007 is E2: the combination cannot exceed E2.
	gt.Value(t, sess.Hazards[0].Exposure).Equal(types.ExposureE2)

	// Stage 4: controllability, classification, table
	out, err = findTool(t, tools, "talos_generate_table").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("table_generated")

	sess, err = repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, sess.Hazards[0].ASIL).Equal(types.ASILD) // S3, E2, C3
	gt.Value(t, sess.Table).NotEqual("")

	// Stage 5: safety goals
	out, err = findTool(t, tools, "talos_derive_goals").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("safety_goals_derived")

	sess, err = repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Array(t, sess.SafetyGoals).Length(2)
	gt.Value(t, sess.NoGoalsRequired).Equal(false)
	gt.Value(t, sess.Stage).Equal(types.StageSafetyGoalsDerived)

	gt.Number(t, len(*messages)).Greater(0)
}

func TestTools_StageSkipFails(t *testing.T) {
	llm := &mockLLMClient{}
	_, _, tools := newTestSuite(t, llm)
	ctx := context.Background()

	t.Run("hazop before extraction", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_hazop_analysis").Run(ctx, map[string]any{})
		gt.Error(t, err).Is(types.ErrStagePrerequisite)
	})

	t.Run("exposure before hazop", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_assess_exposure").Run(ctx, map[string]any{})
		gt.Error(t, err).Is(types.ErrStagePrerequisite)
	})

	t.Run("table before exposure", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_generate_table").Run(ctx, map[string]any{})
		gt.Error(t, err).Is(types.ErrStagePrerequisite)
	})

	t.Run("goals before table", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_derive_goals").Run(ctx, map[string]any{})
		gt.Error(t, err).Is(types.ErrStagePrerequisite)
	})
}

func TestTools_GoalsWithoutASILHazards(t *testing.T) {
	llm := &mockLLMClient{}
	repo, sessionID, tools := newTestSuite(t, llm)
	ctx := context.Background()

	// Seed a session whose single hazard stayed at QM.
	sess, err := repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	sess.Functions = []model.ItemFunction{{Number: 1, Name: "Ambient Lighting"}}
	sess.Hazards = []*model.Hazard{{
		ID:              "HAZ-001",
		Function:        "Ambient Lighting",
		GuideWord:       types.GuideWordNo,
		Malfunction:     "No ambient light",
		Event:           "Cabin lighting unavailable",
		Severity:        types.SeverityS0,
		Exposure:        types.ExposureE4,
		Controllability: types.ControllabilityC0,
		ASIL:            types.ASILQM,
	}}
	sess.Table = "| stub |"
	sess.Stage = types.StageTableGenerated
	_, err = repo.Session().Update(ctx, sess)
	gt.NoError(t, err).Required()

	out, err := findTool(t, tools, "talos_derive_goals").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["stage"]).Equal("safety_goals_derived")
	gt.Value(t, out["no_goals_required"]).Equal(true)

	stored, err := repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	gt.Value(t, stored.NoGoalsRequired).Equal(true)
	gt.Array(t, stored.SafetyGoals).Length(0)
}

func TestClassifyTool(t *testing.T) {
	llm := &mockLLMClient{}

	t.Run("typed ratings", func(t *testing.T) {
		_, _, tools := newTestSuite(t, llm)
		out, err := findTool(t, tools, "talos_classify_asil").Run(context.Background(), map[string]any{
			"severity":        "S3",
			"exposure":        "E2",
			"controllability": "C3",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out["asil"]).Equal("D")
	})

	t.Run("E4 collapses to E3", func(t *testing.T) {
		_, _, tools := newTestSuite(t, llm)
		classify := findTool(t, tools, "talos_classify_asil")

		e4, err := classify.Run(context.Background(), map[string]any{
			"severity": "S2", "exposure": "E4", "controllability": "C2",
		})
		gt.NoError(t, err).Required()
		e3, err := classify.Run(context.Background(), map[string]any{
			"severity": "S2", "exposure": "E3", "controllability": "C2",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, e4["asil"]).Equal(e3["asil"])
	})

	t.Run("assessment text adapter", func(t *testing.T) {
		_, _, tools := newTestSuite(t, llm)
		out, err := findTool(t, tools, "talos_classify_asil").Run(context.Background(), map[string]any{
			"assessment_text": "Severity (S): S1\nExposure (E): E3\nControllability (C): C3",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out["asil"]).Equal("C")
	})

	t.Run("records on hazard", func(t *testing.T) {
		repo, sessionID, tools := newTestSuite(t, llm)
		ctx := context.Background()

		sess, err := repo.Session().Get(ctx, sessionID)
		gt.NoError(t, err).Required()
		sess.Hazards = []*model.Hazard{{ID: "HAZ-001", Event: "Loss of assist"}}
		_, err = repo.Session().Update(ctx, sess)
		gt.NoError(t, err).Required()

		out, err := findTool(t, tools, "talos_classify_asil").Run(ctx, map[string]any{
			"severity": "S3", "exposure": "E2", "controllability": "C3",
			"hazard_id": "HAZ-001",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out["hazard_id"]).Equal("HAZ-001")

		stored, err := repo.Session().Get(ctx, sessionID)
		gt.NoError(t, err).Required()
		gt.Value(t, stored.Hazards[0].ASIL).Equal(types.ASILD)
	})

	t.Run("missing inputs", func(t *testing.T) {
		_, _, tools := newTestSuite(t, llm)
		_, err := findTool(t, tools, "talos_classify_asil").Run(context.Background(), map[string]any{})
		gt.Error(t, err)
	})
}

func TestSituationTools(t *testing.T) {
	llm := &mockLLMClient{}
	_, _, tools := newTestSuite(t, llm)
	ctx := context.Background()

	t.Run("list by group", func(t *testing.T) {
		out, err := findTool(t, tools, "talos_list_situations").Run(ctx, map[string]any{
			"group": "urban_driving",
		})
		gt.NoError(t, err).Required()
		items, ok := out["situations"].([]map[string]any)
		gt.Bool(t, ok).True()
		gt.Number(t, len(items)).Greater(0)
		for _, item := range items {
			gt.Value(t, item["group"]).Equal("urban_driving")
		}
	})

	t.Run("get entry", func(t *testing.T) {
		out, err := findTool(t, tools, "talos_get_situation").Run(ctx, map[string]any{
			"situation_id": "URB-001",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out["name"]).Equal("City Traffic Driving")
		gt.Value(t, out["exposure"]).Equal("E4")
	})

	t.Run("get unknown entry", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_get_situation").Run(ctx, map[string]any{
			"situation_id": "XXX-999",
		})
		gt.Error(t, err).Is(model.ErrSituationNotFound)
	})

	t.Run("combine by minimum rule", func(t *testing.T) {
		out, err := findTool(t, tools, "talos_combine_situations").Run(ctx, map[string]any{
			"name":          "Hot highway cruising",
			"situation_ids": []any{"HWY-001", "ENV-007"},
		})
		gt.NoError(t, err).Required()
		gt.Value(t, out["combined_exposure"]).Equal("E2")
	})

	t.Run("combine with empty set", func(t *testing.T) {
		_, err := findTool(t, tools, "talos_combine_situations").Run(ctx, map[string]any{
			"name":          "Nothing",
			"situation_ids": []any{},
		})
		gt.Error(t, err).Is(types.ErrEmptyExposureSet)
	})
}

func TestWorkflowStatusTool(t *testing.T) {
	llm := &mockLLMClient{}
	repo, sessionID, tools := newTestSuite(t, llm)
	ctx := context.Background()

	out, err := findTool(t, tools, "talos_workflow_status").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["current_stage"]).Equal("not_started")
	gt.Value(t, out["next_action"]).Equal("talos_extract_functions")
	gt.Value(t, out["complete"]).Equal(false)

	sess, err := repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	sess.Functions = []model.ItemFunction{{Number: 1, Name: "Steering Assist"}}
	sess.Stage = types.StageFunctionsExtracted
	_, err = repo.Session().Update(ctx, sess)
	gt.NoError(t, err).Required()

	out, err = findTool(t, tools, "talos_workflow_status").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["current_stage"]).Equal("functions_extracted")
	gt.Value(t, out["next_action"]).Equal("talos_hazop_analysis")
}

func TestSessionBriefTool(t *testing.T) {
	llm := &mockLLMClient{}
	repo, sessionID, tools := newTestSuite(t, llm)
	ctx := context.Background()

	sess, err := repo.Session().Get(ctx, sessionID)
	gt.NoError(t, err).Required()
	sess.Hazards = []*model.Hazard{
		{ID: "HAZ-001", ASIL: types.ASILD},
		{ID: "HAZ-002", ASIL: types.ASILQM},
	}
	_, err = repo.Session().Update(ctx, sess)
	gt.NoError(t, err).Required()

	out, err := findTool(t, tools, "talos_session_brief").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Value(t, out["item_name"]).Equal("Electric Power Steering")
	gt.Value(t, out["hazards"]).Equal(2)

	distribution, ok := out["distribution"].(map[string]any)
	gt.Bool(t, ok).True()
	gt.Value(t, distribution["D"]).Equal(1)
	gt.Value(t, distribution["QM"]).Equal(1)
}
