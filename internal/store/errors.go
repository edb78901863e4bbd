package store

import "errors"

// Stale sequences are not errors: Upsert and Tombstone report them as
// unapplied no-ops so the watermark still advances.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrTombstoned     = errors.New("document is tombstoned")
)
