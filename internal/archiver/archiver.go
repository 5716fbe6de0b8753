// Package archiver provides a background process that archives DynamoDB
// experiment data to Postgres for durable long-term storage.
package archiver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/danhoward/aio-engine/internal/store"
	"github.com/danhoward/aio-engine/pkg/types"
)

const defaultInterval = 6 * time.Hour

// Destination defines the write interface for the archival backend.
type Destination interface {
	UpsertExperiment(ctx context.Context, exp types.Experiment) error
	UpsertChange(ctx context.Context, ch types.Change) error
	UpsertScoreSnapshot(ctx context.Context, snap types.ScoreSnapshot) error
}

// Archiver periodically copies experiment data to the archival backend.
type Archiver struct {
	source   store.Store
	dest     Destination
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// New creates a new Archiver.
func New(source store.Store, dest Destination, interval time.Duration, logger *slog.Logger) *Archiver {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Archiver{
		source:   source,
		dest:     dest,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the archiver background loop.
func (a *Archiver) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go a.loop(ctx)
	a.logger.Info("archiver started", "interval", a.interval)
}

// Stop signals the archiver to stop and waits for it to finish.
func (a *Archiver) Stop(_ context.Context) {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	a.logger.Info("archiver stopped")
}

func (a *Archiver) loop(ctx context.Context) {
	defer a.wg.Done()
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	// Run once immediately on start
	a.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Archiver) tick(ctx context.Context) {
	experiments, err := a.source.GetAllExperiments(ctx)
	if err != nil {
		a.logger.Error("archiver: failed to list experiments", "error", err)
		return
	}

	pages := make(map[string]bool)
	for _, exp := range experiments {
		if ctx.Err() != nil {
			return
		}
		a.archiveExperiment(ctx, exp)
		pages[exp.PageURL] = true
	}

	for pageURL := range pages {
		if ctx.Err() != nil {
			return
		}
		a.archiveScoreHistory(ctx, pageURL)
	}
}

func (a *Archiver) archiveExperiment(ctx context.Context, exp types.Experiment) {
	if err := a.dest.UpsertExperiment(ctx, exp); err != nil {
		a.logger.Error("archiver: upsert experiment failed", "experimentID", exp.ID, "error", err)
		return
	}

	changes, err := a.source.GetChanges(ctx, exp.ID)
	if err != nil {
		a.logger.Error("archiver: list changes failed", "experimentID", exp.ID, "error", err)
		return
	}
	for _, ch := range changes {
		if err := a.dest.UpsertChange(ctx, ch); err != nil {
			a.logger.Error("archiver: upsert change failed", "experimentID", exp.ID, "changeID", ch.ID, "error", err)
		}
	}
}

func (a *Archiver) archiveScoreHistory(ctx context.Context, pageURL string) {
	snaps, err := a.source.GetScoreHistory(ctx, pageURL, 0)
	if err != nil {
		a.logger.Error("archiver: list score history failed", "pageUrl", pageURL, "error", err)
		return
	}
	for _, snap := range snaps {
		if err := a.dest.UpsertScoreSnapshot(ctx, snap); err != nil {
			a.logger.Error("archiver: upsert score snapshot failed", "pageUrl", pageURL, "error", err)
		}
	}
}
