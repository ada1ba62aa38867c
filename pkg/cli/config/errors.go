package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrPolicyNotFound       = goerr.New("policy file not found")
	ErrInvalidPolicy        = goerr.New("invalid policy")
	ErrDuplicateSituationID = goerr.New("duplicate situation ID")
)

// Context keys for error values
const (
	PolicyPathKey = "policy_path"
)
