package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/repository/firestore"
	"github.com/fusa-lab/talos/pkg/repository/memory"
)

// Sentinel errors for use case layer
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrHazardNotFound   = errors.New("hazard not found")
	ErrItemNameRequired = errors.New("item name is required")
	ErrLLMNotConfigured = errors.New("LLM client is not configured")
)

// Context keys for error values
const (
	SessionIDKey = "session_id"
	HazardIDKey  = "hazard_id"
)

// getSession resolves a session and folds the backend not-found sentinels
// into ErrSessionNotFound so callers and the HTTP layer match one error.
func getSession(ctx context.Context, repo interfaces.Repository, id model.SessionID) (*model.Session, error) {
	sess, err := repo.Session().Get(ctx, id)
	if err != nil {
		if errors.Is(err, memory.ErrNotFound) || errors.Is(err, firestore.ErrNotFound) {
			return nil, goerr.Wrap(ErrSessionNotFound, "unknown session", goerr.V(SessionIDKey, id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V(SessionIDKey, id))
	}
	return sess, nil
}
