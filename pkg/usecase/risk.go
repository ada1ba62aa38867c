package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/interfaces"
	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/catalog"
)

// RiskUseCase exposes the deterministic risk operations: ASIL
// classification, exposure combination and recording a reviewed assessment
// on a hazard.
type RiskUseCase struct {
	repo    interfaces.Repository
	catalog *catalog.Service
}

// NewRiskUseCase creates a new RiskUseCase instance
func NewRiskUseCase(repo interfaces.Repository, catalogSvc *catalog.Service) *RiskUseCase {
	return &RiskUseCase{repo: repo, catalog: catalogSvc}
}

// Classify determines the ASIL for the rating symbols per ISO 26262-3:2018
// Table 4. Each symbol is validated first; E4 is collapsed to E3.
func (uc *RiskUseCase) Classify(severity, exposure, controllability string) (types.ASIL, error) {
	s, err := types.ParseSeverity(severity)
	if err != nil {
		return "", err
	}
	e, err := types.ParseExposure(exposure)
	if err != nil {
		return "", err
	}
	c, err := types.ParseControllability(controllability)
	if err != nil {
		return "", err
	}
	return types.ClassifyASIL(s, e, c)
}

// CombineExposure reduces the exposure symbols to their ordinal minimum
func (uc *RiskUseCase) CombineExposure(symbols []string) (types.Exposure, error) {
	exposures := make([]types.Exposure, 0, len(symbols))
	for _, s := range symbols {
		e, err := types.ParseExposure(s)
		if err != nil {
			return "", err
		}
		exposures = append(exposures, e)
	}
	return types.CombineExposures(exposures)
}

// Situations lists the operational situation catalog, optionally filtered
// by group name. An empty group lists everything.
func (uc *RiskUseCase) Situations(group string) ([]*model.OperationalSituation, error) {
	if group == "" {
		return uc.catalog.List(), nil
	}
	g, err := types.ParseSituationGroup(group)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid situation group", goerr.V("group", group))
	}
	return uc.catalog.ListGroup(g), nil
}

// RecordAssessment stores an engineer-reviewed S/E/C rating on a hazard and
// re-derives its ASIL.
func (uc *RiskUseCase) RecordAssessment(ctx context.Context, sessionID model.SessionID, hazardID model.HazardID,
	severity, exposure, controllability string) (*model.Hazard, error) {

	asil, err := uc.Classify(severity, exposure, controllability)
	if err != nil {
		return nil, err
	}

	sess, err := getSession(ctx, uc.repo, sessionID)
	if err != nil {
		return nil, err
	}

	h := sess.Hazard(hazardID)
	if h == nil {
		return nil, goerr.Wrap(ErrHazardNotFound, "hazard is not in this session",
			goerr.V(SessionIDKey, sessionID), goerr.V(HazardIDKey, hazardID))
	}

	h.Severity = types.Severity(severity)
	h.Exposure = types.Exposure(exposure)
	h.Controllability = types.Controllability(controllability)
	h.ASIL = asil

	if _, err := uc.repo.Session().Update(ctx, sess); err != nil {
		return nil, goerr.Wrap(err, "failed to store assessment", goerr.V(SessionIDKey, sessionID))
	}
	return h, nil
}
