package model

import (
	"regexp"

	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/types"
)

// SituationID identifies a catalog operational situation, e.g. URB-001.
type SituationID string

var situationIDPattern = regexp.MustCompile(`^[A-Z]{2,4}-[0-9]{3}$`)

// Validate checks if the SituationID is valid
func (id SituationID) Validate() error {
	if id == "" {
		return goerr.New("situation ID cannot be empty")
	}
	if !situationIDPattern.MatchString(string(id)) {
		return goerr.New("situation ID must be an uppercase prefix and a three-digit number", goerr.V("id", id))
	}
	return nil
}

// String returns the string representation of the SituationID
func (id SituationID) String() string {
	return string(id)
}

// OperationalSituation is a reusable driving or vehicle context with the
// fraction of operating time it covers, drawn from the reference catalog.
type OperationalSituation struct {
	ID                 SituationID
	Group              types.SituationGroup
	Name               string
	Exposure           types.Exposure
	ExposurePercentage string
	Description        string
	Frequency          string
	Duration           string
	Rationale          string
}

// Validate checks the catalog entry fields.
func (s *OperationalSituation) Validate() error {
	if err := s.ID.Validate(); err != nil {
		return err
	}
	if s.Name == "" {
		return goerr.New("situation name cannot be empty", goerr.V("id", s.ID))
	}
	if !s.Group.IsValid() {
		return goerr.New("unknown situation group", goerr.V("id", s.ID), goerr.V("group", s.Group))
	}
	if !s.Exposure.IsValid() {
		return goerr.Wrap(types.ErrInvalidExposure, "situation exposure is not a valid rating",
			goerr.V("id", s.ID), goerr.V(types.RatingKey, s.Exposure))
	}
	return nil
}

// Ref returns the situation as a hazard attachment.
func (s *OperationalSituation) Ref() SituationRef {
	return SituationRef{
		ID:       s.ID,
		Name:     s.Name,
		Exposure: s.Exposure,
	}
}

// ErrSituationNotFound is returned when a situation ID is not in the catalog
var ErrSituationNotFound = goerr.New("operational situation not found")

// Catalog holds the reference operational situations in registration order.
type Catalog struct {
	entries map[SituationID]*OperationalSituation
	order   []SituationID
}

// NewCatalog creates a new empty Catalog
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[SituationID]*OperationalSituation),
	}
}

// Add registers a situation, validating it and rejecting duplicate IDs.
func (c *Catalog) Add(s *OperationalSituation) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, exists := c.entries[s.ID]; exists {
		return goerr.New("duplicate situation ID", goerr.V("id", s.ID))
	}
	c.entries[s.ID] = s
	c.order = append(c.order, s.ID)
	return nil
}

// Get retrieves a situation by ID
func (c *Catalog) Get(id SituationID) (*OperationalSituation, error) {
	s, ok := c.entries[id]
	if !ok {
		return nil, goerr.Wrap(ErrSituationNotFound, "not in catalog", goerr.V("id", id))
	}
	return s, nil
}

// List returns all situations in registration order
func (c *Catalog) List() []*OperationalSituation {
	result := make([]*OperationalSituation, 0, len(c.order))
	for _, id := range c.order {
		result = append(result, c.entries[id])
	}
	return result
}

// ListGroup returns the situations of one group in registration order
func (c *Catalog) ListGroup(g types.SituationGroup) []*OperationalSituation {
	var result []*OperationalSituation
	for _, id := range c.order {
		if c.entries[id].Group == g {
			result = append(result, c.entries[id])
		}
	}
	return result
}

// Len returns the number of catalog entries
func (c *Catalog) Len() int {
	return len(c.order)
}

// CombinedSituation is a custom operational situation assembled from catalog
// entries. Its exposure is the minimum of the constituents: the combined
// operating-time fraction cannot exceed the rarest condition.
type CombinedSituation struct {
	Name       string
	Components []SituationRef
	Exposure   types.Exposure
}

// Combine resolves the listed catalog IDs into a combined situation. Unknown
// IDs fail with ErrSituationNotFound; an empty list fails with
// ErrEmptyExposureSet via the combinator.
func (c *Catalog) Combine(name string, ids []SituationID) (*CombinedSituation, error) {
	refs := make([]SituationRef, 0, len(ids))
	exposures := make([]types.Exposure, 0, len(ids))
	for _, id := range ids {
		s, err := c.Get(id)
		if err != nil {
			return nil, err
		}
		refs = append(refs, s.Ref())
		exposures = append(exposures, s.Exposure)
	}

	combined, err := types.CombineExposures(exposures)
	if err != nil {
		return nil, err
	}

	return &CombinedSituation{
		Name:       name,
		Components: refs,
		Exposure:   combined,
	}, nil
}
