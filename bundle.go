package quizforge

import (
	"database/sql"

	"github.com/petrijr/quizforge/internal/persistence"
)

// NewSQLiteRunner builds a LocalRunner whose fingerprint cache survives
// restarts in the provided SQLite database.
//
// Typical usage:
//
//	db, _ := sql.Open("sqlite", "file:quizforge.db?_journal=WAL")
//	runner, err := quizforge.NewSQLiteRunner(db, gen, quizforge.LocalOptions{})
func NewSQLiteRunner(db *sql.DB, gen Generator, opts LocalOptions) (*LocalRunner, error) {
	store, err := persistence.NewSQLiteStore(db)
	if err != nil {
		return nil, err
	}
	return newLocalRunner(gen, store, opts)
}
