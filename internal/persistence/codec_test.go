package persistence

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrijr/quizforge/pkg/api"
)

func TestEncodeRecord_Shape(t *testing.T) {
	data, err := EncodeRecord(api.CacheRecord{
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   "p",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2025-01-02T03:04:05Z","payload":"p"}`, string(data))
}

func TestDecodeRecord_RejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "{", `{"payload":"no timestamp"}`, `[]`} {
		_, err := DecodeRecord([]byte(in))
		assert.True(t, errors.Is(err, ErrCorruptRecord), "input %q: got %v", in, err)
	}
}
