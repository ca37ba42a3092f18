// Provides common content store error definitions.
package store_errors

import "errors"

var (
	ErrNotFound      = errors.New("contentstore: record not found")
	ErrInvalidRecord = errors.New("contentstore: invalid record")
	ErrCorruptRecord = errors.New("contentstore: corrupt stored record")

	ErrUnauthorized   = errors.New("contentstore: unauthorized")
	ErrCountsDisabled = errors.New("contentstore: counts backend not configured")
)
