package persistence

import (
	"context"
	"database/sql"
	"errors"

	"github.com/petrijr/quizforge/pkg/api"
)

// PostgresStore is a RecordStore backed by PostgreSQL.
//
// It expects an *sql.DB that uses a PostgreSQL driver (for example,
// "github.com/jackc/pgx/v5/stdlib").
//
// The caller is responsible for:
//   - importing the driver for its side effects, e.g.:
//     _ "github.com/jackc/pgx/v5/stdlib"
//   - providing a DSN via sql.Open.
type PostgresStore struct {
	db *sql.DB
}

// Ensure PostgresStore implements RecordStore.
var _ RecordStore = (*PostgresStore)(nil)

// NewPostgresStore initializes the required schema in the given database and
// returns a new PostgresStore.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	s := &PostgresStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_records (
			key TEXT PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL,
			payload TEXT NOT NULL
		);
	`)
	return err
}

func (s *PostgresStore) Load(ctx context.Context, key string) (api.CacheRecord, error) {
	var rec api.CacheRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, payload FROM cache_records WHERE key = $1`, key,
	).Scan(&rec.Timestamp, &rec.Payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.CacheRecord{}, ErrRecordNotFound
		}
		return api.CacheRecord{}, err
	}
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, key string, rec api.CacheRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_records (key, created_at, payload)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET created_at = EXCLUDED.created_at, payload = EXCLUDED.payload`,
		key,
		rec.Timestamp,
		rec.Payload,
	)
	return err
}

// Close closes the underlying database.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
