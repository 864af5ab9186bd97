// Package storage persists scraped listings to file-based or MongoDB
// backends.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/trendscout/trendscout/internal/config"
	"github.com/trendscout/trendscout/internal/types"
)

// Storage is the interface for all storage backends.
type Storage interface {
	// Store persists a batch of listings.
	Store(listings []*types.Listing) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// New creates the storage backend selected by the configuration.
func New(cfg *config.Config, logger *slog.Logger) (Storage, error) {
	switch cfg.Storage.Type {
	case "json":
		return NewJSONStorage(filepath.Join(cfg.Storage.OutputPath, "listings.json"), logger)
	case "jsonl":
		return NewJSONLStorage(filepath.Join(cfg.Storage.OutputPath, "listings.jsonl"), logger)
	case "csv":
		return NewCSVStorage(filepath.Join(cfg.Storage.OutputPath, "listings.csv"), logger)
	case "mongodb":
		return NewMongoStorage(cfg.Storage.MongoURI, cfg.Storage.Database, cfg.Storage.Collection, logger)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Storage.Type)
	}
}
