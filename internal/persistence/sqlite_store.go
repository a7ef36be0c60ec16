package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/petrijr/quizforge/pkg/api"
)

// SQLiteStore is a RecordStore backed by SQLite.
//
// It expects an *sql.DB that uses a SQLite driver (for example,
// "modernc.org/sqlite"). The caller is responsible for importing
// the driver, e.g.:
//
//	import _ "modernc.org/sqlite"
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements RecordStore.
var _ RecordStore = (*SQLiteStore)(nil)

// NewSQLiteStore initializes the required schema in the given database and
// returns a new SQLiteStore.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS cache_records (
			key TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			payload TEXT NOT NULL
		);`,
	)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, key string) (api.CacheRecord, error) {
	var (
		createdAt int64
		payload   string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT created_at, payload FROM cache_records WHERE key = ?`, key,
	).Scan(&createdAt, &payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return api.CacheRecord{}, ErrRecordNotFound
		}
		return api.CacheRecord{}, err
	}
	return api.CacheRecord{Timestamp: time.Unix(0, createdAt).UTC(), Payload: payload}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, key string, rec api.CacheRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cache_records (key, created_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET created_at = excluded.created_at, payload = excluded.payload`,
		key,
		rec.Timestamp.UnixNano(),
		rec.Payload,
	)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
