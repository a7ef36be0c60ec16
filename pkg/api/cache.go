package api

import "time"

// CacheRecord is the durable form of a cached generation result.
type CacheRecord struct {
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
	Payload   string    `json:"payload" bson:"payload"`
}

// Age returns how old the record is at now.
func (r CacheRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.Timestamp)
}
