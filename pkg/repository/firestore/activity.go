package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/fusa-lab/talos/pkg/domain/model"
)

// activityDoc is the Firestore document representation of model.Activity.
type activityDoc struct {
	ID        string    `firestore:"ID"`
	SessionID string    `firestore:"SessionID"`
	Tool      string    `firestore:"Tool"`
	Message   string    `firestore:"Message"`
	CreatedAt time.Time `firestore:"CreatedAt"`
}

func toActivityDoc(a *model.Activity) *activityDoc {
	return &activityDoc{
		ID:        string(a.ID),
		SessionID: string(a.SessionID),
		Tool:      a.Tool,
		Message:   a.Message,
		CreatedAt: a.CreatedAt,
	}
}

func fromActivityDoc(d *activityDoc) *model.Activity {
	return &model.Activity{
		ID:        model.ActivityID(d.ID),
		SessionID: model.SessionID(d.SessionID),
		Tool:      d.Tool,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}

type activityRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newActivityRepository(client *firestore.Client) *activityRepository {
	return &activityRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *activityRepository) sessionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_sessions"
	}
	return "sessions"
}

// activitiesCollection returns the subcollection path:
// sessions/{sessionID}/activities
func (r *activityRepository) activitiesCollection(sessionID model.SessionID) *firestore.CollectionRef {
	return r.client.Collection(r.sessionsCollection()).
		Doc(string(sessionID)).
		Collection("activities")
}

func (r *activityRepository) Create(ctx context.Context, entry *model.Activity) (*model.Activity, error) {
	created := *entry
	if created.ID == "" {
		created.ID = model.NewActivityID()
	}
	created.CreatedAt = time.Now().UTC()

	docRef := r.activitiesCollection(created.SessionID).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toActivityDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create activity", goerr.V("session_id", created.SessionID))
	}

	return &created, nil
}

func (r *activityRepository) List(ctx context.Context, sessionID model.SessionID) ([]*model.Activity, error) {
	iter := r.activitiesCollection(sessionID).
		OrderBy("CreatedAt", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	activities := make([]*model.Activity, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate activities")
		}

		var d activityDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode activity", goerr.V("doc_id", docSnap.Ref.ID))
		}

		activities = append(activities, fromActivityDoc(&d))
	}

	return activities, nil
}
