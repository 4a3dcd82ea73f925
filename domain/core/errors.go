package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound         = errors.New("resource not found")
	ErrArtifactNotFound = fmt.Errorf("%w: model artifact", ErrNotFound)

	// Input contract violations - fail fast, never coerced
	ErrDuplicateRecord     = errors.New("duplicate (player, season, week) record")
	ErrMissingColumn       = errors.New("required column missing")
	ErrInsufficientHistory = errors.New("ranking requested outside loaded data range")
	ErrSchemaMismatch      = errors.New("feature schema mismatch")

	// Leakage guards
	ErrLeakage    = errors.New("data leakage detected")
	ErrFutureData = errors.New("future data in training fold")

	// Versioning errors - always fatal, never auto-corrected
	ErrVersionMismatch = errors.New("pipeline version mismatch")

	// Training errors
	ErrAllTrialsFailed = errors.New("all search trials failed")
	ErrEmptyDataset    = errors.New("empty training dataset")
)

// Error constructors with context

func NewDuplicateRecordError(playerID string, season, week int) error {
	return fmt.Errorf("%w: %s season=%d week=%d", ErrDuplicateRecord, playerID, season, week)
}

func NewMissingColumnError(column string) error {
	return fmt.Errorf("%w: %s", ErrMissingColumn, column)
}

func NewSchemaMismatchError(position string, missing []string) error {
	return fmt.Errorf("%w: position %s missing columns %v", ErrSchemaMismatch, position, missing)
}

func NewVersionMismatchError(want, got string) error {
	return fmt.Errorf("%w: artifact built with %s, pipeline is %s", ErrVersionMismatch, got, want)
}

// Error checking helpers

func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsContractViolation(err error) bool {
	return errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInsufficientHistory) ||
		errors.Is(err, ErrSchemaMismatch)
}

func IsVersionError(err error) bool {
	return errors.Is(err, ErrVersionMismatch)
}
