package world

import (
	"time"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// Salvage is an ephemeral sector-visible bundle of cargo, scrap and
// credits left by a dumped load or a destroyed ship. Source identifies the
// originating hull only; the defeated character's id is never exposed.
type Salvage struct {
	ID             string
	SectorID       int
	Cargo          shared.Cargo
	Scrap          int
	Credits        int
	ExpiresAt      time.Time
	SourceShipName string
	SourceShipType string
}

// Expired reports whether the container should be swept.
func (s *Salvage) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
