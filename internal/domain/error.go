package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrConfigMissing      = errors.New("required configuration is missing")
	ErrBadSignature       = errors.New("webhook signature mismatch")
	ErrStateConflict      = errors.New("entity is already finalized")
	ErrUniqueViolation    = errors.New("unique constraint violated")
	ErrOperationFailed    = errors.New("operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid query execution context")
)
