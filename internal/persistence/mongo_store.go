package persistence

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/petrijr/quizforge/pkg/api"
)

// MongoStore is a RecordStore backed by a MongoDB collection, one document
// per key.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

var _ RecordStore = (*MongoStore)(nil)

// NewMongoStore creates a Mongo-backed record store.
// dbName defaults to "quizforge" if empty, collName defaults to
// "cache_records".
func NewMongoStore(client *mongo.Client, dbName, collName string) *MongoStore {
	if dbName == "" {
		dbName = "quizforge"
	}
	if collName == "" {
		collName = "cache_records"
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(dbName).Collection(collName),
	}
}

type mongoRecordDoc struct {
	Key       string    `bson:"_id"`
	Timestamp time.Time `bson:"timestamp"`
	Payload   string    `bson:"payload"`
}

func (s *MongoStore) Load(ctx context.Context, key string) (api.CacheRecord, error) {
	var doc mongoRecordDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return api.CacheRecord{}, ErrRecordNotFound
		}
		return api.CacheRecord{}, err
	}
	return api.CacheRecord{Timestamp: doc.Timestamp.UTC(), Payload: doc.Payload}, nil
}

func (s *MongoStore) Save(ctx context.Context, key string, rec api.CacheRecord) error {
	doc := mongoRecordDoc{Key: key, Timestamp: rec.Timestamp, Payload: rec.Payload}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

// Close disconnects the underlying client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
