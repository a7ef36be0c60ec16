package persistence

import (
	"encoding/json"
	"fmt"

	"github.com/petrijr/quizforge/pkg/api"
)

// EncodeRecord serializes a record as {"timestamp": ..., "payload": ...}.
func EncodeRecord(rec api.CacheRecord) ([]byte, error) {
	return json.Marshal(rec)
}

// DecodeRecord parses data produced by EncodeRecord. Empty, malformed or
// timestamp-less input yields ErrCorruptRecord.
func DecodeRecord(data []byte) (api.CacheRecord, error) {
	var rec api.CacheRecord
	if len(data) == 0 {
		return rec, ErrCorruptRecord
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return api.CacheRecord{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if rec.Timestamp.IsZero() {
		return api.CacheRecord{}, fmt.Errorf("%w: missing timestamp", ErrCorruptRecord)
	}
	return rec, nil
}
