package model

import "errors"

var (
	// ErrVehicleNotFound is returned when the registry has no such vehicle.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrInvalidDate is returned when a maintenance date is inconsistent with
	// the evaluation date, or a date cannot be parsed.
	ErrInvalidDate = errors.New("invalid date")
	// ErrUnknownVehicleType is returned for types outside the codebook.
	ErrUnknownVehicleType = errors.New("unknown vehicle type")
	// ErrInsufficientData marks a training pass that had too few rows. It is
	// carried in a TrainingOutcome and never returned from training.
	ErrInsufficientData = errors.New("insufficient training data")
)
