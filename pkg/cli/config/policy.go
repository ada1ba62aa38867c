package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/fusa-lab/talos/pkg/domain/model"
	"github.com/fusa-lab/talos/pkg/domain/types"
	"github.com/fusa-lab/talos/pkg/service/catalog"
	"github.com/fusa-lab/talos/pkg/service/itemdef"
)

// Policy holds CLI flags for assessment policy configuration: a TOML file
// with project-specific operational situations, and directories holding
// item definition documents.
type Policy struct {
	path        string
	itemdefDirs []string
}

// Flags returns CLI flags for policy configuration
func (p *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "policy",
			Usage:       "Path to a TOML policy file with custom operational situations",
			Sources:     cli.EnvVars("TALOS_POLICY"),
			Destination: &p.path,
		},
		&cli.StringSliceFlag{
			Name:        "itemdef-dir",
			Usage:       "Directory holding item definition documents (repeatable)",
			Sources:     cli.EnvVars("TALOS_ITEMDEF_DIR"),
			Destination: &p.itemdefDirs,
		},
	}
}

// Path returns the configured policy file path
func (p *Policy) Path() string {
	return p.path
}

// PolicySituation is one custom [[situation]] table of a policy file
type PolicySituation struct {
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

// ToSituation converts the policy entry to a catalog situation
func (s *PolicySituation) ToSituation() (*model.OperationalSituation, error) {
	group, err := types.ParseSituationGroup(s.Group)
	if err != nil {
		return nil, goerr.Wrap(err, "invalid situation group in policy", goerr.V("id", s.ID))
	}

	sit := &model.OperationalSituation{
		ID:                 model.SituationID(s.ID),
		Group:              group,
		Name:               s.Name,
		Exposure:           types.Exposure(s.Exposure),
		ExposurePercentage: s.ExposurePercentage,
		Description:        s.Description,
		Frequency:          s.Frequency,
		Duration:           s.Duration,
		Rationale:          s.Rationale,
	}
	if err := sit.Validate(); err != nil {
		return nil, goerr.Wrap(ErrInvalidPolicy, err.Error(), goerr.V("id", s.ID))
	}
	return sit, nil
}

// PolicyFile is the parsed policy document
type PolicyFile struct {
	Situations []PolicySituation `toml:"situation"`
}

// Load parses and validates the policy file. A missing --policy flag
// yields an empty policy, not an error.
func (p *Policy) Load() (*PolicyFile, error) {
	if p.path == "" {
		return &PolicyFile{}, nil
	}

	// #nosec G304 -- path comes from CLI configuration
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, goerr.Wrap(ErrPolicyNotFound, "failed to read policy file", goerr.V(PolicyPathKey, p.path))
	}

	var f PolicyFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, goerr.Wrap(err, "failed to parse policy file", goerr.V(PolicyPathKey, p.path))
	}

	seen := make(map[string]bool, len(f.Situations))
	for i := range f.Situations {
		if _, err := f.Situations[i].ToSituation(); err != nil {
			return nil, err
		}
		if seen[f.Situations[i].ID] {
			return nil, goerr.Wrap(ErrDuplicateSituationID, "duplicate situation in policy",
				goerr.V("id", f.Situations[i].ID), goerr.V(PolicyPathKey, p.path))
		}
		seen[f.Situations[i].ID] = true
	}

	return &f, nil
}

// Catalog builds the situation catalog: the built-in reference entries
// extended by the policy's custom situations.
func (p *Policy) Catalog() (*catalog.Service, error) {
	f, err := p.Load()
	if err != nil {
		return nil, err
	}

	custom := make([]*model.OperationalSituation, 0, len(f.Situations))
	for i := range f.Situations {
		s, err := f.Situations[i].ToSituation()
		if err != nil {
			return nil, err
		}
		custom = append(custom, s)
	}

	if len(custom) == 0 {
		return catalog.New()
	}
	return catalog.New(catalog.WithSituations(custom))
}

// ItemDef returns the item definition lookup service, or nil when no
// directory is configured.
func (p *Policy) ItemDef() *itemdef.Service {
	if len(p.itemdefDirs) == 0 {
		return nil
	}
	return itemdef.New(p.itemdefDirs...)
}
