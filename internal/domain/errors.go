package domain

import "errors"

var (
	// Batch errors
	ErrEmptyBatch    = errors.New("batch must contain at least one item")
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")

	// Query errors
	ErrInvalidLimit          = errors.New("limit must be between 1 and the maximum page size")
	ErrInvalidTimestampRange = errors.New("timestamp_min must not be greater than timestamp_max")
	ErrInvalidAccountID      = errors.New("account id must not be zero")

	// Wire errors
	ErrInvalidID        = errors.New("invalid 128-bit identifier")
	ErrInvalidAmount    = errors.New("invalid 128-bit amount")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
)
