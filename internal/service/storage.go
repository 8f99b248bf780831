// Path: internal/service/storage.go
package service

import (
	"context"

	"commit-tracker/internal/domain"
)

// HistoryStorage defines the interface for persisting the per-day history.
type HistoryStorage interface {
	// Load returns every stored record. A store that does not exist yet
	// yields an empty History, not an error.
	Load(ctx context.Context) (domain.History, error)

	// Save writes the full history, ordered by date.
	Save(ctx context.Context, history domain.History) error
}
