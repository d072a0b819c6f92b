package combat

import (
	"context"
	"sync"
	"time"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// Scheduler is the single background sweeper: it closes combat rounds
// whose deadline has passed and expires stale salvage containers. It is
// the sole source of round timeouts.
type Scheduler struct {
	manager      *Manager
	salvage      world.SalvageRepository
	index        *sector.Index
	clock        shared.Clock
	pollInterval time.Duration

	mu     sync.Mutex
	root   context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler creates a sweeper over the given manager.
func NewScheduler(manager *Manager, salvage world.SalvageRepository, index *sector.Index, clock shared.Clock, pollInterval time.Duration) *Scheduler {
	return &Scheduler{
		manager:      manager,
		salvage:      salvage,
		index:        index,
		clock:        clock,
		pollInterval: pollInterval,
	}
}

// Start launches the sweep loop. Calling Start on a running scheduler is
// a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	s.root = ctx
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	go s.loop(loopCtx, s.done)
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

// Restart stops and relaunches the loop with the context the original
// Start received. Used by test_reset.
func (s *Scheduler) Restart() {
	s.mu.Lock()
	root := s.root
	s.mu.Unlock()
	if root == nil {
		return
	}
	s.Stop()
	s.Start(root)
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass: due combat rounds, then expired salvage.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.clock.Now()
	s.manager.ResolveDue(ctx, now)
	s.expireSalvage(ctx, now)
}

func (s *Scheduler) expireSalvage(ctx context.Context, now time.Time) {
	expired, err := s.salvage.ListExpired(ctx, now)
	if err != nil {
		common.LoggerFromContext(ctx).Log("error", "salvage expiry scan failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	for _, item := range expired {
		if err := s.salvage.Delete(ctx, item.ID); err != nil {
			continue
		}
		s.index.RemoveSalvage(item.SectorID, item.ID)
		s.manager.emit(ctx, events.Event{
			Name:    events.SectorUpdate,
			Payload: s.manager.sectorViewPayload(ctx, item.SectorID),
			Filter:  events.ToSector(item.SectorID, ""),
		})
	}
}
