package interfaces

import (
	"context"

	"github.com/fusa-lab/talos/pkg/domain/model"
)

// SessionRepository defines the interface for Session data access. Update is
// guarded by the session Version so that stage advances stay atomic
// read-modify-write operations when talos runs as a service.
type SessionRepository interface {
	// Create stores a new session and returns the stored copy
	Create(ctx context.Context, sess *model.Session) (*model.Session, error)

	// Get retrieves a session by ID
	Get(ctx context.Context, id model.SessionID) (*model.Session, error)

	// List retrieves all sessions ordered by creation time descending
	List(ctx context.Context) ([]*model.Session, error)

	// Update stores the session if its Version still matches the stored one,
	// then bumps the version. A stale version fails with ErrVersionMismatch.
	Update(ctx context.Context, sess *model.Session) (*model.Session, error)
}

// ActivityRepository defines the interface for the assistant progress trail
type ActivityRepository interface {
	// Create appends one activity entry
	Create(ctx context.Context, entry *model.Activity) (*model.Activity, error)

	// List retrieves activities of a session ordered by CreatedAt ascending
	List(ctx context.Context, sessionID model.SessionID) ([]*model.Activity, error)
}
