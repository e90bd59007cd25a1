package queue

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/trackflow/tracking-service/internal/core/ports"
)

// Enqueuer accepts refresh requests.
type Enqueuer interface {
	Enqueue(req ports.RefreshRequest) bool
}

// RefresherConfig controls the periodic stale-shipment scan.
type RefresherConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
	BatchSize  int
}

// Refresher periodically enqueues non-terminal shipments that have not been
// refreshed within StaleAfter.
type Refresher struct {
	repo  ports.ShipmentRepository
	queue Enqueuer
	cfg   RefresherConfig
	log   zerolog.Logger
	now   func() time.Time
}

func NewRefresher(repo ports.ShipmentRepository, queue Enqueuer, cfg RefresherConfig, log zerolog.Logger) *Refresher {
	if cfg.Interval <= 0 {
		cfg.Interval = 15 * time.Minute
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 2 * time.Hour
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Refresher{repo: repo, queue: queue, cfg: cfg, log: log, now: time.Now}
}

// Run scans once immediately and then on every tick until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		if _, err := r.Scan(ctx); err != nil && ctx.Err() == nil {
			r.log.Error().Err(err).Msg("stale shipment scan failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Scan enqueues one batch of stale shipments and returns how many were accepted.
func (r *Refresher) Scan(ctx context.Context) (int, error) {
	cutoff := r.now().Add(-r.cfg.StaleAfter)
	stale, err := r.repo.ListStale(ctx, cutoff, r.cfg.BatchSize)
	if err != nil {
		return 0, err
	}

	accepted := 0
	for _, s := range stale {
		if r.queue.Enqueue(ports.RefreshRequest{
			ShipmentID:     s.ID,
			TrackingNumber: s.TrackingNumber,
			CarrierCode:    s.CarrierCode,
			OwnerID:        s.OwnerID,
		}) {
			accepted++
		}
	}
	if len(stale) > 0 {
		r.log.Info().Int("stale", len(stale)).Int("enqueued", accepted).Msg("stale shipments enqueued")
	}
	return accepted, nil
}
