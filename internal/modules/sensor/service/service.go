// Package service owns the fetch-and-reconcile cycle: fetch snapshot text,
// parse and decode rows, ingest into the store, then archive and publish.
package service

import (
	"context"
	"log/slog"
	"time"

	"sensordash/internal/config"
	"sensordash/internal/modules/sensor/ingest"
	"sensordash/internal/modules/sensor/repository"
	"sensordash/internal/modules/sensor/sheet"
	"sensordash/internal/modules/sensor/types"
)

type TextFetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

type ReadingPublisher interface {
	Publish(r types.Reading) error
}

type Service struct {
	cfg       config.Config
	fetcher   TextFetcher
	store     *ingest.Store
	repo      repository.ReadingRepository
	publisher ReadingPublisher
	logger    *slog.Logger
	refreshCh chan struct{}
}

// New wires the poll cycle. repo and publisher may be nil; archiving and
// publishing are side channels, never required for the dashboard to work.
func New(cfg config.Config, fetcher TextFetcher, store *ingest.Store, repo repository.ReadingRepository, publisher ReadingPublisher, logger *slog.Logger) *Service {
	return &Service{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     store,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		refreshCh: make(chan struct{}, 1),
	}
}

// RefreshNow queues an out-of-band fetch cycle. The 1-slot channel coalesces
// repeated requests while a cycle is in flight.
func (s *Service) RefreshNow() {
	select {
	case s.refreshCh <- struct{}{}:
	default:
	}
}

// Run fetches once immediately, then on every tick or manual refresh until
// ctx is canceled. All cycles run on this goroutine, so a slow fetch can
// never overlap the next tick and states are always swapped in cycle order.
func (s *Service) Run(ctx context.Context) error {
	s.runCycle(ctx)

	ticker := time.NewTicker(s.cfg.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		case <-s.refreshCh:
			s.runCycle(ctx)
		}
	}
}

// runCycle logs and absorbs cycle failures: a failed fetch keeps the prior
// state on display and the loop keeps polling.
func (s *Service) runCycle(ctx context.Context) {
	if err := s.Cycle(ctx); err != nil {
		s.logger.Warn("fetch cycle failed", "error", err)
	}
}

// Cycle performs one fetch-and-reconcile pass.
func (s *Service) Cycle(ctx context.Context) error {
	text, err := s.fetcher.GetText(ctx, s.cfg.SourceURL)
	if err != nil {
		return err
	}

	batch, err := s.decodeSnapshot(text)
	if err != nil {
		return err
	}

	next, hasNew, err := ingest.Ingest(s.store.Current(), batch)
	if err != nil {
		return err
	}
	s.store.Swap(next, hasNew)

	s.logger.Debug("snapshot reconciled",
		"decoded", len(batch),
		"readings", next.Len(),
		"new_data", hasNew,
		"last_seen", next.LastSeen(),
	)

	if s.repo != nil {
		if err := s.repo.UpsertReadings(next.Readings()); err != nil {
			s.logger.Error("archive readings", "error", err)
		}
	}

	if hasNew && s.publisher != nil {
		readings := next.Readings()
		latest := readings[len(readings)-1]
		if err := s.publisher.Publish(latest); err != nil {
			s.logger.Warn("publish latest reading", "error", err)
		}
	}

	return nil
}

// decodeSnapshot turns raw snapshot text into a batch of readings. Row
// rejections are logged and skipped; only a snapshot with no data rows at all
// fails the cycle.
func (s *Service) decodeSnapshot(text string) ([]types.Reading, error) {
	lines := sheet.SplitLines(text)
	if len(lines) <= 1 {
		return nil, ingest.ErrEmptyBatch
	}

	idx := sheet.PositionalIndex()
	if s.cfg.ColumnMode == config.ColumnModeHeader {
		resolved, err := sheet.ResolveHeader(sheet.ParseRow(lines[0]))
		if err != nil {
			return nil, err
		}
		idx = resolved
	}

	batch := make([]types.Reading, 0, len(lines)-1)
	rejected := 0
	for i, line := range lines[1:] {
		r, err := sheet.DecodeRow(sheet.ParseRow(line), idx)
		if err != nil {
			rejected++
			s.logger.Debug("row rejected", "row", i+2, "error", err)
			continue
		}
		batch = append(batch, r)
	}
	if rejected > 0 {
		s.logger.Warn("rows rejected in snapshot", "rejected", rejected, "accepted", len(batch))
	}
	return batch, nil
}
