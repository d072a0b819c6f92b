package events

import (
	"context"
	"sync"

	"github.com/andrescamacho/tradewars-server/internal/application/common"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// Observer receives emission notifications for metrics collection.
type Observer interface {
	EventEmitted(name string)
}

// Bus stamps, journals and fans out events. Emission is serialized so the
// causal sequence matches enqueue order on every subscription; callers
// hold the domain locks that make their filter snapshot consistent, the
// bus never re-checks state afterwards.
type Bus struct {
	mu       sync.Mutex
	sequence uint64
	clock    shared.Clock
	roster   *Roster
	hub      *Hub
	log      events.Log
	observer Observer
}

// NewBus creates a bus over the given roster and hub. log and observer
// may be nil.
func NewBus(clock shared.Clock, roster *Roster, hub *Hub, log events.Log, observer Observer) *Bus {
	return &Bus{clock: clock, roster: roster, hub: hub, log: log, observer: observer}
}

// Emit resolves the event's filter, stamps sequence and timestamp,
// journals it and hands it to the hub.
func (b *Bus) Emit(ctx context.Context, evt events.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sequence++
	evt.Sequence = b.sequence
	evt.Timestamp = b.clock.Now()

	var recipients []string
	adminOnly := false
	switch evt.Filter.Kind {
	case events.FilterCharacters:
		recipients = evt.Filter.CharacterIDs
	case events.FilterSectorOccupants:
		recipients = b.roster.SectorOccupants(evt.Filter.SectorID, evt.Filter.Exclude)
	case events.FilterCorporation:
		recipients = b.roster.CorporationMembers(evt.Filter.CorporationID)
	case events.FilterAdminOnly:
		adminOnly = true
	default:
		return shared.NewDomainError("event has no filter: " + evt.Name)
	}

	if b.log != nil {
		if err := b.log.Append(ctx, &evt, recipients); err != nil {
			common.LoggerFromContext(ctx).Log("error", "event journal append failed", map[string]interface{}{
				"event": evt.Name,
				"error": err.Error(),
			})
		}
	}
	if b.observer != nil {
		b.observer.EventEmitted(evt.Name)
	}

	b.hub.Deliver(&evt, recipients, adminOnly)
	return nil
}

// Sequence returns the last assigned causal sequence.
func (b *Bus) Sequence() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sequence
}
