package persistence

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	_ "modernc.org/sqlite"
)

// Backend names a RecordStore implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendMemory   Backend = "memory"
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
	BackendMongo    Backend = "mongo"
)

// Options configures Open.
type Options struct {
	// Dir is the directory used by the file backend.
	Dir string

	// DSN is the SQLite path, Postgres DSN, Redis URL or MongoDB URI.
	DSN string

	// Prefix namespaces Redis keys.
	Prefix string

	// Database and Collection select the MongoDB collection.
	Database   string
	Collection string
}

// Open builds the RecordStore for backend.
func Open(ctx context.Context, backend Backend, opts Options) (RecordStore, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(opts.Dir)

	case BackendMemory:
		return NewInMemoryStore(), nil

	case BackendSQLite:
		dsn := opts.DSN
		if dsn == "" {
			dsn = "quizforge-cache.db"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := NewSQLiteStore(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init sqlite schema: %w", err)
		}
		return s, nil

	case BackendPostgres:
		db, err := sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		s, err := NewPostgresStore(db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init postgres schema: %w", err)
		}
		return s, nil

	case BackendRedis:
		ropts, err := redis.ParseURL(opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(ropts)
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisStore(client, opts.Prefix), nil

	case BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.DSN))
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		return NewMongoStore(client, opts.Database, opts.Collection), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", backend)
}

// Valid reports whether b names a known backend. The empty name selects the
// file backend.
func (b Backend) Valid() bool {
	switch b {
	case "", BackendFile, BackendMemory, BackendSQLite, BackendPostgres, BackendRedis, BackendMongo:
		return true
	}
	return false
}
