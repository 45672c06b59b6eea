package repository

import (
	"context"

	"github.com/vivispa/catalog-api/internal/model"
)

type (
	// CatalogRepository loads the complete catalog snapshot from its source.
	CatalogRepository interface {
		Load(ctx context.Context) (*model.Snapshot, error)
		Source() string
	}

	// Pinger is implemented by sources with a live backend to check.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)
