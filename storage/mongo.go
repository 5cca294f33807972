package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// stateDocument is one key of the local state
type stateDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps the local state in a MongoDB collection, one document per key
type MongoStore struct {
	Collection *mongo.Collection
}

// NewMongoStore uses the "local_state" collection of the given database
func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		Collection: client.Database(database).Collection("local_state"),
	}
}

func (m *MongoStore) Get(ctx context.Context, key string) (string, error) {
	var doc stateDocument
	err := m.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "mongo find %s", key)
	}
	return doc.Value, nil
}

func (m *MongoStore) Set(ctx context.Context, key, value string) error {
	update := bson.M{"$set": bson.M{"value": value, "updated_at": time.Now().UTC()}}
	_, err := m.Collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return errors.Wrapf(err, "mongo upsert %s", key)
	}
	return nil
}

func (m *MongoStore) Delete(ctx context.Context, key string) error {
	if _, err := m.Collection.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return errors.Wrapf(err, "mongo delete %s", key)
	}
	return nil
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.Collection.Database().Client().Disconnect(ctx)
}
