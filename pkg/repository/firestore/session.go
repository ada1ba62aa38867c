package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

type functionDoc struct {
	Number      int    `firestore:"Number"`
	Name        string `firestore:"Name"`
	Description string `firestore:"Description"`
	Manual      bool   `firestore:"Manual"`
}

type situationRefDoc struct {
	ID       string `firestore:"ID"`
	Name     string `firestore:"Name"`
	Exposure string `firestore:"Exposure"`
}

type hazardDoc struct {
	ID          string `firestore:"ID"`
	Function    string `firestore:"Function"`
	GuideWord   string `firestore:"GuideWord"`
	Malfunction string `firestore:"Malfunction"`
	Event       string `firestore:"Event"`

	Situations   []situationRefDoc `firestore:"Situations"`
	Exposure     string            `firestore:"Exposure"`
	ExposureNote string            `firestore:"ExposureNote"`

	Severity     string `firestore:"Severity"`
	SeverityNote string `firestore:"SeverityNote"`

	Controllability     string `firestore:"Controllability"`
	ControllabilityNote string `firestore:"ControllabilityNote"`

	ASIL string `firestore:"ASIL"`

	SafetyGoal string `firestore:"SafetyGoal"`
	SafeState  string `firestore:"SafeState"`
	FTTI       string `firestore:"FTTI"`
}

type safetyGoalDoc struct {
	HazardID  string `firestore:"HazardID"`
	ASIL      string `firestore:"ASIL"`
	Statement string `firestore:"Statement"`
	SafeState string `firestore:"SafeState"`
	FTTI      string `firestore:"FTTI"`
}

// sessionDoc is the Firestore document representation of model.Session.
type sessionDoc struct {
	ID              string          `firestore:"ID"`
	ItemName        string          `firestore:"ItemName"`
	ItemDefinition  string          `firestore:"ItemDefinition"`
	Functions       []functionDoc   `firestore:"Functions"`
	Hazards         []hazardDoc     `firestore:"Hazards"`
	Table           string          `firestore:"Table"`
	SafetyGoals     []safetyGoalDoc `firestore:"SafetyGoals"`
	GoalsDocument   string          `firestore:"GoalsDocument"`
	NoGoalsRequired bool            `firestore:"NoGoalsRequired"`
	Stage           string          `firestore:"Stage"`
	Version         int64           `firestore:"Version"`
	CreatedAt       time.Time       `firestore:"CreatedAt"`
	UpdatedAt       time.Time       `firestore:"UpdatedAt"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	d := &sessionDoc{
		ID:              string(s.ID),
		ItemName:        s.ItemName,
		ItemDefinition:  s.ItemDefinition,
		Table:           s.Table,
		GoalsDocument:   s.GoalsDocument,
		NoGoalsRequired: s.NoGoalsRequired,
		Stage:           string(s.Stage),
		Version:         s.Version,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}

	for _, fn := range s.Functions {
		d.Functions = append(d.Functions, functionDoc{
			Number:      fn.Number,
			Name:        fn.Name,
			Description: fn.Description,
			Manual:      fn.Manual,
		})
	}

	for _, h := range s.Hazards {
		hd := hazardDoc{
			ID:                  string(h.ID),
			Function:            h.Function,
			GuideWord:           string(h.GuideWord),
			Malfunction:         h.Malfunction,
			Event:               h.Event,
			Exposure:            string(h.Exposure),
			ExposureNote:        h.ExposureNote,
			Severity:            string(h.Severity),
			SeverityNote:        h.SeverityNote,
			Controllability:     string(h.Controllability),
			ControllabilityNote: h.ControllabilityNote,
			ASIL:                string(h.ASIL),
			SafetyGoal:          h.SafetyGoal,
			SafeState:           h.SafeState,
			FTTI:                h.FTTI,
		}
		for _, ref := range h.Situations {
			hd.Situations = append(hd.Situations, situationRefDoc{
				ID:       string(ref.ID),
				Name:     ref.Name,
				Exposure: string(ref.Exposure),
			})
		}
		d.Hazards = append(d.Hazards, hd)
	}

	for _, g := range s.SafetyGoals {
		d.SafetyGoals = append(d.SafetyGoals, safetyGoalDoc{
			HazardID:  string(g.HazardID),
			ASIL:      string(g.ASIL),
			Statement: g.Statement,
			SafeState: g.SafeState,
			FTTI:      g.FTTI,
		})
	}

	return d
}

func fromSessionDoc(d *sessionDoc) *model.Session {
	s := &model.Session{
		ID:              model.SessionID(d.ID),
		ItemName:        d.ItemName,
		ItemDefinition:  d.ItemDefinition,
		Table:           d.Table,
		GoalsDocument:   d.GoalsDocument,
		NoGoalsRequired: d.NoGoalsRequired,
		Stage:           types.Stage(d.Stage),
		Version:         d.Version,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}

	for _, fd := range d.Functions {
		s.Functions = append(s.Functions, model.ItemFunction{
			Number:      fd.Number,
			Name:        fd.Name,
			Description: fd.Description,
			Manual:      fd.Manual,
		})
	}

	for _, hd := range d.Hazards {
		h := &model.Hazard{
			ID:                  model.HazardID(hd.ID),
			Function:            hd.Function,
			GuideWord:           types.GuideWord(hd.GuideWord),
			Malfunction:         hd.Malfunction,
			Event:               hd.Event,
			Exposure:            types.Exposure(hd.Exposure),
			ExposureNote:        hd.ExposureNote,
			Severity:            types.Severity(hd.Severity),
			SeverityNote:        hd.SeverityNote,
			Controllability:     types.Controllability(hd.Controllability),
			ControllabilityNote: hd.ControllabilityNote,
			ASIL:                types.ASIL(hd.ASIL),
			SafetyGoal:          hd.SafetyGoal,
			SafeState:           hd.SafeState,
			FTTI:                hd.FTTI,
		}
		for _, rd := range hd.Situations {
			h.Situations = append(h.Situations, model.SituationRef{
				ID:       model.SituationID(rd.ID),
				Name:     rd.Name,
				Exposure: types.Exposure(rd.Exposure),
			})
		}
		s.Hazards = append(s.Hazards, h)
	}

	for _, gd := range d.SafetyGoals {
		s.SafetyGoals = append(s.SafetyGoals, model.SafetyGoal{
			HazardID:  model.HazardID(gd.HazardID),
			ASIL:      types.ASIL(gd.ASIL),
			Statement: gd.Statement,
			SafeState: gd.SafeState,
			FTTI:      gd.FTTI,
		})
	}

	return s
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{
		client:           client,
		collectionPrefix: "",
	}
}

func (r *sessionRepository) sessionsCollection() string {
	if r.collectionPrefix != "" {
		return r.collectionPrefix + "_sessions"
	}
	return "sessions"
}

func (r *sessionRepository) Create(ctx context.Context, sess *model.Session) (*model.Session, error) {
	created := *sess
	if created.ID == "" {
		created.ID = model.NewSessionID()
	}

	now := time.Now().UTC()
	created.Version = 1
	created.CreatedAt = now
	created.UpdatedAt = now

	docRef := r.client.Collection(r.sessionsCollection()).Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toSessionDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *sessionRepository) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	docSnap, err := r.client.Collection(r.sessionsCollection()).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	var d sessionDoc
	if err := docSnap.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to decode session", goerr.V("id", id))
	}

	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) List(ctx context.Context) ([]*model.Session, error) {
	iter := r.client.Collection(r.sessionsCollection()).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	sessions := make([]*model.Session, 0)
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate sessions")
		}

		var d sessionDoc
		if err := docSnap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to decode session", goerr.V("doc_id", docSnap.Ref.ID))
		}

		sessions = append(sessions, fromSessionDoc(&d))
	}

	return sessions, nil
}

func (r *sessionRepository) Update(ctx context.Context, sess *model.Session) (*model.Session, error) {
	docRef := r.client.Collection(r.sessionsCollection()).Doc(string(sess.ID))

	updated := *sess
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docSnap, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", sess.ID))
			}
			return goerr.Wrap(err, "failed to get session", goerr.V("id", sess.ID))
		}

		var stored sessionDoc
		if err := docSnap.DataTo(&stored); err != nil {
			return goerr.Wrap(err, "failed to decode session", goerr.V("id", sess.ID))
		}

		if stored.Version != sess.Version {
			return goerr.Wrap(ErrVersionMismatch, "session was modified concurrently",
				goerr.V("id", sess.ID),
				goerr.V("expected", sess.Version),
				goerr.V("actual", stored.Version))
		}

		updated.Version = stored.Version + 1
		updated.CreatedAt = stored.CreatedAt
		updated.UpdatedAt = time.Now().UTC()

		return tx.Set(docRef, toSessionDoc(&updated))
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}
