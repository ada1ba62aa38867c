package catalog

import (
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
)

//go:embed data/situations.toml
var defaultCatalogTOML []byte

// entry mirrors one [[situation]] table of the catalog file
type entry struct {
	ID                 string `toml:"id"`
	Group              string `toml:"group"`
	Name               string `toml:"name"`
	Exposure           string `toml:"exposure"`
	ExposurePercentage string `toml:"exposure_percentage"`
	Description        string `toml:"description"`
	Frequency          string `toml:"frequency"`
	Duration           string `toml:"duration"`
	Rationale          string `toml:"rationale"`
}

type catalogFile struct {
	ExposureCriteria map[string]string `toml:"exposure_criteria"`
	CombinationRule  CombinationRule   `toml:"combination_rule"`
	Situations       []entry           `toml:"situation"`
}

// CombinationRule describes how basic situations merge into one scenario
type CombinationRule struct {
	Description         string `toml:"description"`
	ExposureCalculation string `toml:"exposure_calculation"`
	Rationale           string `toml:"rationale"`
}

// Service serves the operational situation catalog: the built-in reference
// entries plus any custom situations added from policy configuration.
type Service struct {
	catalog  *model.Catalog
	criteria map[types.Exposure]string
	rule     CombinationRule
}

// Option is a functional option for Service configuration
type Option func(*Service) error

// WithSituations appends custom situations to the catalog. Entries are
// validated and must not collide with built-in IDs.
func WithSituations(custom []*model.OperationalSituation) Option {
	return func(s *Service) error {
		for _, c := range custom {
			if err := s.catalog.Add(c); err != nil {
				return goerr.Wrap(err, "invalid custom situation")
			}
		}
		return nil
	}
}

// New builds the catalog service from the embedded reference data
func New(opts ...Option) (*Service, error) {
	var f catalogFile
	if err := toml.Unmarshal(defaultCatalogTOML, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse built-in situation catalog")
	}

	svc := &Service{
		catalog:  model.NewCatalog(),
		criteria: make(map[types.Exposure]string, len(f.ExposureCriteria)),
		rule:     f.CombinationRule,
	}

	for level, text := range f.ExposureCriteria {
		e := types.Exposure(level)
		if !e.IsValid() {
			return nil, goerr.Wrap(types.ErrInvalidExposure, "invalid level in exposure criteria",
				goerr.V(types.RatingKey, level))
		}
		svc.criteria[e] = text
	}

	for i := range f.Situations {
		s, err := toSituation(&f.Situations[i])
		if err != nil {
			return nil, err
		}
		if err := svc.catalog.Add(s); err != nil {
			return nil, goerr.Wrap(err, "invalid built-in situation")
		}
	}

	for _, opt := range opts {
		if err := opt(svc); err != nil {
			return nil, err
		}
	}

	return svc, nil
}

func toSituation(e *entry) (*model.OperationalSituation, error) {
	group, err := types.ParseSituationGroup(e.Group)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid situation group in catalog", goerr.V("id", e.ID))
	}

	return &model.OperationalSituation{
		ID:                 model.SituationID(e.ID),
		Group:              group,
		Name:               e.Name,
		Exposure:           types.Exposure(e.Exposure),
		ExposurePercentage: e.ExposurePercentage,
		Description:        e.Description,
		Frequency:          e.Frequency,
		Duration:           e.Duration,
		Rationale:          e.Rationale,
	}, nil
}

// Get retrieves one situation by catalog ID
func (s *Service) Get(id model.SituationID) (*model.OperationalSituation, error) {
	return s.catalog.Get(id)
}

// List returns all situations in catalog order
func (s *Service) List() []*model.OperationalSituation {
	return s.catalog.List()
}

// ListGroup returns the situations of one group in catalog order
func (s *Service) ListGroup(g types.SituationGroup) []*model.OperationalSituation {
	return s.catalog.ListGroup(g)
}

// Len returns the number of catalog entries
func (s *Service) Len() int {
	return s.catalog.Len()
}

// Combine assembles a custom situation from catalog IDs with the minimum
// exposure rule
func (s *Service) Combine(name string, ids []model.SituationID) (*model.CombinedSituation, error) {
	return s.catalog.Combine(name, ids)
}

// Criterion returns the catalog's definition text of one exposure level
func (s *Service) Criterion(e types.Exposure) string {
	return s.criteria[e]
}

// Rule returns the combination rule text of the catalog
func (s *Service) Rule() CombinationRule {
	return s.rule
}
