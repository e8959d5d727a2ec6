package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/IshaanNene/LeadGoat/internal/config"
	"github.com/IshaanNene/LeadGoat/internal/types"
)

// LeadStore is the interface for all lead store backends. Key uniqueness is
// guaranteed by the backend: exactly one lead exists per identity key.
type LeadStore interface {
	// FindByKey returns the lead with the given identity key, or
	// types.ErrLeadNotFound.
	FindByKey(ctx context.Context, key string) (*types.Lead, error)

	// Create persists a new lead and returns it with its store-assigned ID.
	Create(ctx context.Context, lead *types.Lead) (*types.Lead, error)

	// Update applies a partial update to the lead with the given ID and
	// returns the updated lead.
	Update(ctx context.Context, id string, patch types.LeadPatch) (*types.Lead, error)

	// List returns all stored leads.
	List(ctx context.Context) ([]*types.Lead, error)

	// Close releases the backend's resources.
	Close(ctx context.Context) error

	// Name returns the backend identifier.
	Name() string
}

// Open creates the lead store backend selected by the configuration.
func Open(ctx context.Context, cfg *config.StorageConfig, logger *slog.Logger) (LeadStore, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLiteStore(cfg.Path, logger)
	case "mongo":
		return NewMongoStore(ctx, cfg.URI, cfg.Database, cfg.Collection, logger)
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Type)
	}
}
