package persistence

import (
	"context"
	"errors"

	"github.com/petrijr/quizforge/pkg/api"
)

var (
	// ErrRecordNotFound is returned when no record exists for a key.
	ErrRecordNotFound = errors.New("cache record not found")

	// ErrCorruptRecord is returned when a stored record cannot be decoded.
	ErrCorruptRecord = errors.New("cache record is corrupt")
)

// RecordStore is durable key/value storage for cache records. Save replaces
// any previous record for the key wholesale. Implementations must be safe for
// concurrent use; concurrent saves to one key leave the last writer's record.
type RecordStore interface {
	Load(ctx context.Context, key string) (api.CacheRecord, error)
	Save(ctx context.Context, key string, rec api.CacheRecord) error
	Close() error
}
