package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/petrijr/quizforge/pkg/api"
)

// RedisStore is a RecordStore backed by Redis. Each record lives under
//
//	<prefix>rec:<key>  => JSON encoded api.CacheRecord
//
// Keys are written without a Redis expiry; staleness is decided by the
// cache from the record timestamp.
type RedisStore struct {
	client *redis.Client
	prefix string
}

var _ RecordStore = (*RedisStore)(nil)

// NewRedisStore creates a RedisStore.
// prefix is optional but recommended (e.g. "quizforge:").
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "quizforge:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisStore) keyRecord(key string) string {
	return s.prefix + "rec:" + key
}

func (s *RedisStore) Load(ctx context.Context, key string) (api.CacheRecord, error) {
	data, err := s.client.Get(ctx, s.keyRecord(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return api.CacheRecord{}, ErrRecordNotFound
		}
		return api.CacheRecord{}, err
	}
	return DecodeRecord(data)
}

func (s *RedisStore) Save(ctx context.Context, key string, rec api.CacheRecord) error {
	data, err := EncodeRecord(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.keyRecord(key), data, 0).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
