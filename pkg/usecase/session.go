package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
	"github.com/fusa-lab/talos/pkg/utils/logging"
)

// SessionUseCase manages HARA session lifecycle
type SessionUseCase struct {
	repo    interfaces.Repository
	itemdef *itemdef.Service
}

// NewSessionUseCase creates a new SessionUseCase instance
func NewSessionUseCase(repo interfaces.Repository, itemdefSvc *itemdef.Service) *SessionUseCase {
	return &SessionUseCase{repo: repo, itemdef: itemdefSvc}
}

// Create starts a session for the named item. When no definition text is
// given and an item definition directory is configured, the document is
// resolved from there; a failed lookup is not fatal, the definition can
// still arrive through the extraction tool.
func (uc *SessionUseCase) Create(ctx context.Context, itemName, itemDefinition string) (*model.Session, error) {
	if strings.TrimSpace(itemName) == "" {
		return nil, goerr.Wrap(ErrItemNameRequired, "cannot create session")
	}

	if strings.TrimSpace(itemDefinition) == "" && uc.itemdef != nil {
		def, err := uc.itemdef.Lookup(ctx, itemName)
		switch {
		case err == nil:
			itemDefinition = def.Content
			logging.From(ctx).Info("Resolved item definition", "item", itemName, "source", def.Source)
		case errors.Is(err, itemdef.ErrDefinitionNotFound):
			logging.From(ctx).Info("No item definition document found", "item", itemName)
		default:
			return nil, goerr.Wrap(err, "failed to look up item definition", goerr.V("item", itemName))
		}
	}

	created, err := uc.repo.Session().Create(ctx, model.NewSession(itemName, itemDefinition))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("item", itemName))
	}
	return created, nil
}

// Get retrieves a session by ID
func (uc *SessionUseCase) Get(ctx context.Context, id model.SessionID) (*model.Session, error) {
	return getSession(ctx, uc.repo, id)
}

// List retrieves all sessions, newest first
func (uc *SessionUseCase) List(ctx context.Context) ([]*model.Session, error) {
	sessions, err := uc.repo.Session().List(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list sessions")
	}
	return sessions, nil
}

// Activities retrieves the assistant progress trail of a session
func (uc *SessionUseCase) Activities(ctx context.Context, id model.SessionID) ([]*model.Activity, error) {
	if _, err := uc.Get(ctx, id); err != nil {
		return nil, err
	}
	entries, err := uc.repo.Activity().List(ctx, id)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list activities", goerr.V(SessionIDKey, id))
	}
	return entries, nil
}
