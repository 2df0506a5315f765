package models

import "errors"

// Custom errors
var (
	ErrInconsistentData     = errors.New("data is inconsistent")
	ErrEmptyDataset         = errors.New("dataset is empty")
	ErrInvalidMatch         = errors.New("invalid match record")
	ErrNumericDomain        = errors.New("numeric domain error")
	ErrUnknownTeam          = errors.New("team not found in parameters")
	ErrNotConverged         = errors.New("optimisation did not converge")
	ErrInvalidOdds          = errors.New("decimal odds must be greater than 1.0")
	ErrOddsOutOfRange       = errors.New("odds outside the configured range")
	ErrInvalidKellyFraction = errors.New("kelly fraction must be in (0, 1]")
	ErrInvalidProbability   = errors.New("probability must be in [0, 1]")
	ErrInvalidConstraint    = errors.New("invalid identifiability constraint")
	ErrInvalidInitialValues = errors.New("invalid initial parameter vector")
)
