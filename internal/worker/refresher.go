package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vivispa/catalog-api/internal/service/catalog"
)

// Refresher reloads the snapshot on a fixed interval. It is used for
// sources that cannot be watched, such as postgres.
type Refresher struct {
	reloader Reloader
	interval time.Duration
}

func NewRefresher(reloader Reloader, interval time.Duration) *Refresher {
	return &Refresher{
		reloader: reloader,
		interval: interval,
	}
}

// Start blocks until ctx is done.
func (r *Refresher) Start(ctx context.Context) {
	if r.interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.reloader.Reload(ctx, catalog.TriggerRefresh); err != nil {
				// Log error but continue
				log.Warn().Err(err).Dur("interval", r.interval).Msg("scheduled catalog refresh failed")
			}
		}
	}
}
