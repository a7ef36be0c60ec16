package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/petrijr/quizforge/pkg/api"
)

// exerciseRecordStore runs the behavior every RecordStore must provide.
func exerciseRecordStore(t *testing.T, store RecordStore) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Load(ctx, "missing-key"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound for missing key, got %v", err)
	}

	first := api.CacheRecord{
		Timestamp: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload:   "## SingleChoice\n\n1+1=?\n\n- (x) 2\n- ( ) 3",
	}
	if err := store.Save(ctx, "k1", first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Load(ctx, "k1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Payload != first.Payload {
		t.Fatalf("expected payload %q, got %q", first.Payload, got.Payload)
	}
	if !got.Timestamp.Equal(first.Timestamp) {
		t.Fatalf("expected timestamp %v, got %v", first.Timestamp, got.Timestamp)
	}

	// Save overwrites wholesale.
	second := api.CacheRecord{
		Timestamp: first.Timestamp.Add(time.Hour),
		Payload:   "replacement",
	}
	if err := store.Save(ctx, "k1", second); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, err = store.Load(ctx, "k1")
	if err != nil {
		t.Fatalf("Load after overwrite failed: %v", err)
	}
	if got.Payload != "replacement" || !got.Timestamp.Equal(second.Timestamp) {
		t.Fatalf("expected overwritten record, got %+v", got)
	}

	// Unicode payloads survive untouched.
	uni := api.CacheRecord{Timestamp: first.Timestamp, Payload: "## 单选题\n\n加法：1+1=?\n\n- (x) 2"}
	if err := store.Save(ctx, "k2", uni); err != nil {
		t.Fatalf("Save unicode failed: %v", err)
	}
	got, err = store.Load(ctx, "k2")
	if err != nil {
		t.Fatalf("Load unicode failed: %v", err)
	}
	if got.Payload != uni.Payload {
		t.Fatalf("unicode payload mismatch: %q", got.Payload)
	}
}
