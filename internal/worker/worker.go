// Package worker runs the background jobs that keep the served catalog
// snapshot current: a file watcher, a periodic refresher and a subscriber
// for reload events published by other instances.
package worker

import (
	"context"

	"github.com/vivispa/catalog-api/internal/model"
)

// Reloader reloads the catalog snapshot and announces it.
type Reloader interface {
	Reload(ctx context.Context, trigger string) (*model.Snapshot, error)
}

// Syncer reloads the catalog snapshot without announcing it.
type Syncer interface {
	Sync(ctx context.Context) error
	InstanceID() string
}
