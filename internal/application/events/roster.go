package events

import (
	"sort"
	"sync"

	"github.com/andrescamacho/tradewars-server/internal/application/sector"
)

// Roster resolves event filters to concrete character ids. Sector
// membership comes from the live sector index; corporation membership is
// maintained here by the corporation handlers so resolution stays
// synchronous and lock-free.
type Roster struct {
	index *sector.Index

	mu          sync.RWMutex
	corpMembers map[string]map[string]struct{}
}

// NewRoster creates a roster over the given sector index.
func NewRoster(index *sector.Index) *Roster {
	return &Roster{index: index, corpMembers: map[string]map[string]struct{}{}}
}

// SectorOccupants lists non-hyperspace characters in the sector, minus
// the excluded one.
func (r *Roster) SectorOccupants(sectorID int, exclude string) []string {
	occupants := r.index.Occupants(sectorID)
	if exclude == "" {
		return occupants
	}
	out := occupants[:0]
	for _, id := range occupants {
		if id != exclude {
			out = append(out, id)
		}
	}
	return out
}

// CorporationMembers lists the corporation's member ids, sorted.
func (r *Roster) CorporationMembers(corpID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.corpMembers[corpID]
	out := make([]string, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// SetMembership records that a character belongs to the corporation.
func (r *Roster) SetMembership(corpID, characterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.corpMembers[corpID] == nil {
		r.corpMembers[corpID] = map[string]struct{}{}
	}
	r.corpMembers[corpID][characterID] = struct{}{}
}

// ClearMembership removes a character from the corporation.
func (r *Roster) ClearMembership(corpID, characterID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.corpMembers[corpID], characterID)
}

// DropCorporation forgets the corporation entirely (disband).
func (r *Roster) DropCorporation(corpID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.corpMembers, corpID)
}

// Reset clears corporation membership. Used by test_reset only.
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.corpMembers = map[string]map[string]struct{}{}
}
