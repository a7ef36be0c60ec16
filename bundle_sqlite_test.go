package quizforge

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// The cache outlives the runner: a new runner on the same database does not
// call the generator again.
func TestSQLiteRunner_CacheSurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	inputs := map[string]any{"subject": "biology", "count": 2, "types": "fillBlank", "topics": "cells,genes"}

	var calls atomic.Int32
	for i := 0; i < 2; i++ {
		db, err := sql.Open("sqlite", path)
		require.NoError(t, err)

		runner, err := NewSQLiteRunner(db, cannedGenerator(&calls), LocalOptions{RenderDir: t.TempDir()})
		require.NoError(t, err)

		_, err = runner.Run(context.Background(), inputs)
		require.NoError(t, err)
		require.NoError(t, runner.Close())
	}

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 generator calls across restarts, got %d", got)
	}
}
