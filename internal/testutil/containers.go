package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// shared starts a container at most once per test binary. The container is
// left to the testcontainers reaper so that later tests can reuse it.
type shared struct {
	once     sync.Once
	endpoint string
	err      error
}

func (s *shared) get(t *testing.T, start func(ctx context.Context) (string, error)) string {
	t.Helper()

	s.once.Do(func() {
		// Give generous timeout in CI environments
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
		defer cancel()
		s.endpoint, s.err = start(ctx)
	})
	if s.err != nil {
		t.Fatalf("starting test container: %v", s.err)
	}
	return s.endpoint
}

var (
	redisC    shared
	postgresC shared
	mongoC    shared
)

// GetRedisAddress returns host:port of a running Redis container.
func GetRedisAddress(t *testing.T) string {
	t.Helper()
	return redisC.get(t, func(ctx context.Context) (string, error) {
		c, err := testcontainers.Run(
			ctx, "redis:latest",
			testcontainers.WithExposedPorts("6379/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("6379/tcp"),
				wait.ForLog("Ready to accept connections"),
			),
		)
		if err != nil {
			return "", err
		}
		return c.Endpoint(ctx, "")
	})
}

// GetPostgresEndpoint returns a DSN for a running Postgres container.
func GetPostgresEndpoint(t *testing.T) string {
	t.Helper()
	return postgresC.get(t, func(ctx context.Context) (string, error) {
		c, err := testcontainers.Run(
			ctx, "postgres:16",
			testcontainers.WithExposedPorts("5432/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForAll(
					wait.ForListeningPort("5432/tcp"),
					wait.ForLog("ready to accept connections"),
					wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
						return fmt.Sprintf("postgres://quizforge:quizforge@%s:%s/quizforge_test?sslmode=disable", host, port.Port())
					}).WithQuery("SELECT 1"),
				).WithDeadline(2*time.Minute),
			),
			testcontainers.WithEnv(map[string]string{
				"POSTGRES_USER":     "quizforge",
				"POSTGRES_PASSWORD": "quizforge",
				"POSTGRES_DB":       "quizforge_test",
			}),
		)
		if err != nil {
			return "", err
		}
		endpoint, err := c.Endpoint(ctx, "")
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("postgres://quizforge:quizforge@%s/quizforge_test?sslmode=disable", endpoint), nil
	})
}

// GetMongoURI returns a connection URI for a running MongoDB container.
func GetMongoURI(t *testing.T) string {
	t.Helper()
	return mongoC.get(t, func(ctx context.Context) (string, error) {
		c, err := testcontainers.Run(
			ctx, "mongo:7",
			testcontainers.WithExposedPorts("27017/tcp"),
			testcontainers.WithWaitStrategy(
				wait.ForListeningPort("27017/tcp"),
				wait.ForLog("mongod startup complete"),
			),
		)
		if err != nil {
			return "", err
		}
		endpoint, err := c.Endpoint(ctx, "")
		if err != nil {
			return "", err
		}
		return "mongodb://" + endpoint, nil
	})
}
