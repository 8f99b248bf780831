// Path: internal/storage/mongo_storage.go
package storage

import (
	"context"
	"fmt"

	"commit-tracker/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoHistoryStorage is the MongoDB implementation of the HistoryStorage interface.
// Each day is one document keyed by its date.
type MongoHistoryStorage struct {
	collection *mongo.Collection
}

// NewMongoHistoryStorage creates a new storage adapter for daily records.
func NewMongoHistoryStorage(db *mongo.Database, collectionName string) *MongoHistoryStorage {
	return &MongoHistoryStorage{
		collection: db.Collection(collectionName),
	}
}

// Load implements the HistoryStorage interface.
func (s *MongoHistoryStorage) Load(ctx context.Context) (domain.History, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []domain.DailyRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode records: %w", err)
	}

	history := make(domain.History, len(records))
	for _, rec := range records {
		history[rec.Date] = rec
	}
	return history, nil
}

// Save implements the HistoryStorage interface.
func (s *MongoHistoryStorage) Save(ctx context.Context, history domain.History) error {
	records := history.Records()
	if len(records) == 0 {
		return nil
	}

	writeModels := make([]mongo.WriteModel, len(records))
	for i, rec := range records {
		filter := bson.M{"_id": rec.Date}
		writeModels[i] = mongo.NewReplaceOneModel().SetFilter(filter).SetReplacement(rec).SetUpsert(true)
	}

	// Ordered writes keep the ascending date order of the history.
	opts := options.BulkWrite().SetOrdered(true)
	if _, err := s.collection.BulkWrite(ctx, writeModels, opts); err != nil {
		return fmt.Errorf("bulk upsert: %w", err)
	}
	return nil
}
