package types

import "github.com/m-mizutani/goerr/v2"

// SituationGroup is a category of the operational situation catalog.
type SituationGroup string

const (
	SituationGroupUrban         SituationGroup = "urban_driving"
	SituationGroupHighway       SituationGroup = "highway_driving"
	SituationGroupEnvironmental SituationGroup = "environmental_conditions"
	SituationGroupSpecial       SituationGroup = "special_operations"
	SituationGroupCritical      SituationGroup = "critical_maneuvers"
	SituationGroupVehicleState  SituationGroup = "vehicle_states"
)

// AllSituationGroups returns all catalog groups
func AllSituationGroups() []SituationGroup {
	return []SituationGroup{
		SituationGroupUrban,
		SituationGroupHighway,
		SituationGroupEnvironmental,
		SituationGroupSpecial,
		SituationGroupCritical,
		SituationGroupVehicleState,
	}
}

// IsValid checks if the situation group is valid
func (g SituationGroup) IsValid() bool {
	switch g {
	case SituationGroupUrban,
		SituationGroupHighway,
		SituationGroupEnvironmental,
		SituationGroupSpecial,
		SituationGroupCritical,
		SituationGroupVehicleState:
		return true
	default:
		return false
	}
}

// DisplayName returns the human-readable group title.
func (g SituationGroup) DisplayName() string {
	switch g {
	case SituationGroupUrban:
		return "Urban Driving"
	case SituationGroupHighway:
		return "Highway Driving"
	case SituationGroupEnvironmental:
		return "Environmental Conditions"
	case SituationGroupSpecial:
		return "Special Operations"
	case SituationGroupCritical:
		return "Critical Maneuvers"
	case SituationGroupVehicleState:
		return "Vehicle States"
	default:
		return string(g)
	}
}

// String returns the string representation of the situation group
func (g SituationGroup) String() string {
	return string(g)
}

// ParseSituationGroup parses a string into a SituationGroup. Short aliases
// used in conversation (urban, highway, environmental, special, critical,
// states) are accepted alongside the canonical names.
func ParseSituationGroup(s string) (SituationGroup, error) {
	switch s {
	case "urban":
		return SituationGroupUrban, nil
	case "highway":
		return SituationGroupHighway, nil
	case "environmental":
		return SituationGroupEnvironmental, nil
	case "special":
		return SituationGroupSpecial, nil
	case "critical":
		return SituationGroupCritical, nil
	case "states":
		return SituationGroupVehicleState, nil
	}

	g := SituationGroup(s)
	if !g.IsValid() {
		return "", goerr.Wrap(ErrInvalidSituationGroup, "unknown group name", goerr.V("group", s))
	}
	return g, nil
}
