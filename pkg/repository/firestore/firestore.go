package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	sessions   *sessionRepository
	activities *activityRepository
}

var _ interfaces.Repository = &Firestore{}

type settings struct {
	databaseID       string
	collectionPrefix string
}

type Option func(*settings)

func WithCollectionPrefix(prefix string) Option {
	return func(s *settings) {
		s.collectionPrefix = prefix
	}
}

// WithDatabaseID selects a named Firestore database instead of "(default)".
func WithDatabaseID(databaseID string) Option {
	return func(s *settings) {
		s.databaseID = databaseID
	}
}

func New(ctx context.Context, projectID string, opts ...Option) (*Firestore, error) {
	var cfg settings
	for _, opt := range opts {
		opt(&cfg)
	}

	var client *firestore.Client
	var err error
	if cfg.databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, cfg.databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", cfg.databaseID))
	}

	f := &Firestore{
		client:     client,
		sessions:   newSessionRepository(client),
		activities: newActivityRepository(client),
	}
	f.sessions.collectionPrefix = cfg.collectionPrefix
	f.activities.collectionPrefix = cfg.collectionPrefix

	return f, nil
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.sessions
}

func (f *Firestore) Activity() interfaces.ActivityRepository {
	return f.activities
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
