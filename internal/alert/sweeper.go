package alert

import (
	"context"
	"log"
	"time"

	"agro-telemetry-backend/internal/status"
	"agro-telemetry-backend/internal/store"
)

// Sweeper periodically derives every machine's liveness and dispatches an
// alert when a machine transitions into the offline tier. Previous tiers are
// tracked in memory only; derived status is never persisted.
type Sweeper struct {
	store    store.Store
	pool     *WorkerPool
	interval time.Duration
	previous map[int64]status.Tier
}

// NewSweeper creates a sweeper that checks liveness on the given interval.
func NewSweeper(s store.Store, pool *WorkerPool, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    s,
		pool:     pool,
		interval: interval,
		previous: make(map[int64]status.Tier),
	}
}

// Run starts the worker pool and sweeps until the context is cancelled.
func (sw *Sweeper) Run(ctx context.Context) {
	log.Println("starting offline-alert sweeper")
	sw.pool.Start(ctx)

	sw.SweepOnce(ctx, time.Now())

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("offline-alert sweeper shutting down")
			return
		case now := <-ticker.C:
			sw.SweepOnce(ctx, now)
		}
	}
}

// SweepOnce derives liveness for all machines and dispatches alerts for
// machines newly offline. The first observation of a machine only records its
// tier, so a restart does not replay alerts for machines long dead.
func (sw *Sweeper) SweepOnce(ctx context.Context, now time.Time) {
	machines, err := sw.store.ListMachines(ctx)
	if err != nil {
		log.Printf("alert sweep failed to list machines: %v", err)
		return
	}

	for _, m := range machines {
		tier := status.Derive(m.LastSeen, now)
		prev, seen := sw.previous[m.ID]
		sw.previous[m.ID] = tier

		if seen && prev != status.TierOffline && tier == status.TierOffline {
			log.Printf("machine %d transitioned %s -> offline, dispatching alert", m.ID, prev)
			sw.pool.Dispatch(m.ID)
		}
	}
}
