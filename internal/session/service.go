package session

import (
	"context"
	"fmt"
	"time"

	cronlib "github.com/robfig/cron/v3"

	. "github.com/curamyn/curamyn/internal/logging"
)

// DurableCleaner removes expired session snapshots from the durable tier.
type DurableCleaner interface {
	DeleteExpiredSnapshots(ctx context.Context, ttl time.Duration) (int, error)
}

// SweepService runs the out-of-band periodic sweeps: the in-memory store
// on a short interval, and the durable tier against its own, longer TTL.
type SweepService struct {
	cron       *cronlib.Cron
	store      *Store
	cleaner    DurableCleaner
	durableTTL time.Duration
}

// NewSweepService schedules sweeps. cleaner may be nil for the pure
// in-memory tier.
func NewSweepService(store *Store, cleaner DurableCleaner, sweepEvery, durableTTL time.Duration) (*SweepService, error) {
	svc := &SweepService{
		cron:       cronlib.New(),
		store:      store,
		cleaner:    cleaner,
		durableTTL: durableTTL,
	}

	if _, err := svc.cron.AddFunc(fmt.Sprintf("@every %s", sweepEvery), svc.sweepMemory); err != nil {
		return nil, fmt.Errorf("schedule memory sweep: %w", err)
	}

	if cleaner != nil {
		if _, err := svc.cron.AddFunc("@hourly", svc.sweepDurable); err != nil {
			return nil, fmt.Errorf("schedule durable sweep: %w", err)
		}
	}

	return svc, nil
}

// Start begins the sweep schedule.
func (svc *SweepService) Start() {
	svc.cron.Start()
	L_info("session: sweep service started", "durableTtl", svc.durableTTL.String())
}

// Stop halts the schedule and waits for running jobs.
func (svc *SweepService) Stop() {
	ctx := svc.cron.Stop()
	<-ctx.Done()
	L_info("session: sweep service stopped")
}

func (svc *SweepService) sweepMemory() {
	if n := svc.store.Sweep(); n > 0 {
		L_info("session: periodic sweep removed sessions", "count", n)
	}
}

func (svc *SweepService) sweepDurable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := svc.cleaner.DeleteExpiredSnapshots(ctx, svc.durableTTL)
	if err != nil {
		L_warn("session: durable sweep failed", "error", err)
		return
	}
	if n > 0 {
		L_info("session: durable sweep removed snapshots", "count", n)
	}
}
