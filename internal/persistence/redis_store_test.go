package persistence

import (
	"context"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/petrijr/quizforge/internal/testutil"
)

const prefix = "quizforge:test:"

type RedisStoreTestSuite struct {
	suite.Suite
	endpoint string
	store    *RedisStore
	client   *redis.Client
}

func TestRedisTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testsuite := new(RedisStoreTestSuite)
	testsuite.endpoint = testutil.GetRedisAddress(t)
	initTestRedisStore(t, testsuite)
	suite.Run(t, testsuite)
}

func (r *RedisStoreTestSuite) SetupTest() {
	ctx := context.Background()

	// Clean up all keys with this prefix.
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		err := r.client.Del(ctx, iter.Val()).Err()
		r.NoErrorf(err, "redis DEL %q failed: %v", iter.Val(), err)
	}
	r.NoError(iter.Err(), "redis SCAN failed")
}

func initTestRedisStore(t *testing.T, ts *RedisStoreTestSuite) {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: ts.endpoint,
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("redis ping failed: %v", err)
	}

	ts.client = client
	ts.store = NewRedisStore(client, prefix)
}

func (r *RedisStoreTestSuite) TestContract() {
	exerciseRecordStore(r.T(), r.store)
}

func (r *RedisStoreTestSuite) TestKeysAreNamespacedAndPersistent() {
	exerciseRecordStore(r.T(), r.store)

	ctx := context.Background()
	ttl, err := r.client.TTL(ctx, prefix+"rec:k1").Result()
	r.Require().NoError(err)
	// -1 means the key exists without an expiry.
	r.Equal(int64(-1), int64(ttl))
}
