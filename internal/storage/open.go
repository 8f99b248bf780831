// Path: internal/storage/open.go
package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"commit-tracker/internal/config"
	"commit-tracker/internal/domain"
)

// Backend is a history store together with the resources it holds.
type Backend interface {
	Load(ctx context.Context) (domain.History, error)
	Save(ctx context.Context, history domain.History) error
	Close(ctx context.Context) error
}

// Open builds the backend selected in cfg. Labels and policy are only used by
// the CSV layouts.
func Open(ctx context.Context, cfg config.StorageConfig, labels []string, policy domain.CombinePolicy) (Backend, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := OpenSQLiteHistoryStorage(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return sqliteBackend{s}, nil

	case config.BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := client.Ping(ctx, nil); err != nil {
			_ = client.Disconnect(ctx)
			return nil, fmt.Errorf("failed to reach MongoDB: %w", err)
		}
		store := NewMongoHistoryStorage(client.Database(cfg.Mongo.Name), cfg.Mongo.Collection)
		return mongoBackend{MongoHistoryStorage: store, client: client}, nil

	case config.BackendCSV, "":
		return csvBackend{NewCSVHistoryStorage(cfg.CSV.Dir, cfg.CSV.Variant, labels, policy)}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

type csvBackend struct{ *CSVHistoryStorage }

func (csvBackend) Close(context.Context) error { return nil }

type sqliteBackend struct{ *SQLiteHistoryStorage }

func (b sqliteBackend) Close(context.Context) error { return b.SQLiteHistoryStorage.Close() }

type mongoBackend struct {
	*MongoHistoryStorage
	client *mongo.Client
}

func (b mongoBackend) Close(ctx context.Context) error { return b.client.Disconnect(ctx) }
