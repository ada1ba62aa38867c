package usecase_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/usecase"
)

func TestWorkflow_CurrentStage(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	sess, err := uc.Session.Create(ctx, "Electric Power Steering", "def")
	gt.NoError(t, err).Required()

	stage, err := uc.Workflow.CurrentStage(ctx, sess.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stage).Equal(types.StageNotStarted)
}

func TestWorkflow_AdvanceRequiresArtifact(t *testing.T) {
	uc, _ := newTestUseCases(t)
	ctx := context.Background()

	// No item definition, so function extraction has nothing to work on
	sess, err := uc.Session.Create(ctx, "Electric Power Steering", "")
	gt.NoError(t, err).Required()

	_, err = uc.Workflow.TryAdvance(ctx, sess.ID, types.StageFunctionsExtracted)
	gt.Error(t, err).Is(types.ErrStagePrerequisite)

	// Session is untouched
	stage, err := uc.Workflow.CurrentStage(ctx, sess.ID)
	gt.NoError(t, err).Required()
	gt.Value(t, stage).Equal(types.StageNotStarted)
}

func TestWorkflow_AdvanceWithArtifact(t *testing.T) {
	uc, repo := newTestUseCases(t)
	ctx := context.Background()

	sess, err := uc.Session.Create(ctx, "Electric Power Steering", "def")
	gt.NoError(t, err).Required()

	stored, err := repo.Session().Get(ctx, sess.ID)
	gt.NoError(t, err).Required()
	stored.Functions = []model.ItemFunction{{Number: 1, Name: "Steering Assist", Description: "Provides assist torque"}}
	_, err = repo.Session().Update(ctx, stored)
	gt.NoError(t, err).Required()

	stage, err := uc.Workflow.TryAdvance(ctx, sess.ID, types.StageFunctionsExtracted)
	gt.NoError(t, err).Required()
	gt.Value(t, stage).Equal(types.StageFunctionsExtracted)

	// Re-advancing to the same target is a no-op
	stage, err = uc.Workflow.TryAdvance(ctx, sess.ID, types.StageFunctionsExtracted)
	gt.NoError(t, err).Required()
	gt.Value(t, stage).Equal(types.StageFunctionsExtracted)
}

func TestWorkflow_UnknownSession(t *testing.T) {
	uc, _ := newTestUseCases(t)

	_, err := uc.Workflow.TryAdvance(context.Background(), model.SessionID("missing"), types.StageFunctionsExtracted)
	gt.Error(t, err).Is(usecase.ErrSessionNotFound)
}
