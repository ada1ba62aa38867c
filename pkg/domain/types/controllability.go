package types

import "github.com/m-mizutani/goerr/v2"

// Controllability rates the ability of the driver or other traffic
// participants to avoid the harm, per ISO 26262-3:2018 Table 3. C0 means
// controllable in general, C3 difficult to control or uncontrollable.
type Controllability string

const (
	ControllabilityC0 Controllability = "C0"
	ControllabilityC1 Controllability = "C1"
	ControllabilityC2 Controllability = "C2"
	ControllabilityC3 Controllability = "C3"
)

// AllControllabilities returns all valid controllability ratings
func AllControllabilities() []Controllability {
	return []Controllability{
		ControllabilityC0,
		ControllabilityC1,
		ControllabilityC2,
		ControllabilityC3,
	}
}

// IsValid checks if the controllability rating is valid
func (c Controllability) IsValid() bool {
	switch c {
	case ControllabilityC0,
		ControllabilityC1,
		ControllabilityC2,
		ControllabilityC3:
		return true
	default:
		return false
	}
}

// Level returns the ordinal position of the rating (C0=0 .. C3=3), or -1 for
// an unknown symbol.
func (c Controllability) Level() int {
	switch c {
	case ControllabilityC0:
		return 0
	case ControllabilityC1:
		return 1
	case ControllabilityC2:
		return 2
	case ControllabilityC3:
		return 3
	default:
		return -1
	}
}

// String returns the string representation of the controllability rating
func (c Controllability) String() string {
	return string(c)
}

// ParseControllability parses a string into a Controllability
func ParseControllability(s string) (Controllability, error) {
	ctrl := Controllability(s)
	if !ctrl.IsValid() {
		return "", goerr.Wrap(ErrInvalidControllability, "unknown controllability symbol", goerr.V(RatingKey, s))
	}
	return ctrl, nil
}
