package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

// WorkflowUseCase exposes the HARA stage machine over stored sessions.
// Every advance is one version-guarded read-modify-write of the session.
type WorkflowUseCase struct {
	repo interfaces.Repository
}

// NewWorkflowUseCase creates a new WorkflowUseCase instance
func NewWorkflowUseCase(repo interfaces.Repository) *WorkflowUseCase {
	return &WorkflowUseCase{repo: repo}
}

// CurrentStage returns the workflow stage of a session
func (uc *WorkflowUseCase) CurrentStage(ctx context.Context, id model.SessionID) (types.Stage, error) {
	sess, err := getSession(ctx, uc.repo, id)
	if err != nil {
		return "", err
	}
	return sess.Stage.Normalize(), nil
}

// TryAdvance moves the session to the target stage when its gating artifact
// exists and returns the resulting stage. Targets at or behind the current
// stage return the current stage unchanged; a missing prerequisite fails
// with ErrStagePrerequisite and leaves the session untouched.
func (uc *WorkflowUseCase) TryAdvance(ctx context.Context, id model.SessionID, target types.Stage) (types.Stage, error) {
	sess, err := getSession(ctx, uc.repo, id)
	if err != nil {
		return "", err
	}

	before := sess.Stage.Normalize()
	if err := sess.Advance(target); err != nil {
		return before, err
	}
	if sess.Stage == before {
		return before, nil
	}

	updated, err := uc.repo.Session().Update(ctx, sess)
	if err != nil {
		return before, goerr.Wrap(err, "failed to store advanced session", goerr.V(SessionIDKey, id))
	}
	return updated.Stage, nil
}
