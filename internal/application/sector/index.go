package sector

import (
	"sort"
	"sync"

	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// Occupant is one character's presence entry.
type Occupant struct {
	CharacterID  string
	InHyperspace bool
}

// Record is the immutable live view of one sector. Writers publish a
// fresh copy; readers hold whatever pointer they fetched and never see a
// partial update.
type Record struct {
	SectorID   int
	Occupants  map[string]Occupant
	Garrison   *world.Garrison
	SalvageIDs []string
}

// Index tracks who and what occupies each sector. The dispatcher updates
// it synchronously with every move, join, disconnect and garrison or
// salvage mutation; filter resolution and sector views read from it
// without taking locks.
type Index struct {
	mu        sync.Mutex
	records   sync.Map // int -> *Record
	locations map[string]int
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{locations: map[string]int{}}
}

// Snapshot returns the current record for a sector; never nil.
func (i *Index) Snapshot(sectorID int) *Record {
	if r, ok := i.records.Load(sectorID); ok {
		return r.(*Record)
	}
	return &Record{SectorID: sectorID, Occupants: map[string]Occupant{}}
}

// Occupants lists the character ids present and not in hyperspace,
// sorted for deterministic event fan-out.
func (i *Index) Occupants(sectorID int) []string {
	record := i.Snapshot(sectorID)
	out := make([]string, 0, len(record.Occupants))
	for id, o := range record.Occupants {
		if !o.InHyperspace {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// CharacterSector returns the sector a character is indexed in.
func (i *Index) CharacterSector(characterID string) (int, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	sectorID, ok := i.locations[characterID]
	return sectorID, ok
}

// SetCharacter places a character in a sector, moving them out of any
// previous one.
func (i *Index) SetCharacter(characterID string, sectorID int, inHyperspace bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if prev, ok := i.locations[characterID]; ok && prev != sectorID {
		i.update(prev, func(r *Record) {
			delete(r.Occupants, characterID)
		})
	}
	i.locations[characterID] = sectorID
	i.update(sectorID, func(r *Record) {
		r.Occupants[characterID] = Occupant{CharacterID: characterID, InHyperspace: inHyperspace}
	})
}

// RemoveCharacter drops a character from the index entirely.
func (i *Index) RemoveCharacter(characterID string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if prev, ok := i.locations[characterID]; ok {
		i.update(prev, func(r *Record) {
			delete(r.Occupants, characterID)
		})
		delete(i.locations, characterID)
	}
}

// SetGarrison records the sector's garrison.
func (i *Index) SetGarrison(g *world.Garrison) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.update(g.SectorID, func(r *Record) {
		copied := *g
		r.Garrison = &copied
	})
}

// ClearGarrison removes the garrison entry, used both on collection and
// when a garrison is captured into a live encounter.
func (i *Index) ClearGarrison(sectorID int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.update(sectorID, func(r *Record) {
		r.Garrison = nil
	})
}

// AddSalvage records a salvage container in the sector.
func (i *Index) AddSalvage(sectorID int, salvageID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.update(sectorID, func(r *Record) {
		for _, id := range r.SalvageIDs {
			if id == salvageID {
				return
			}
		}
		r.SalvageIDs = append(r.SalvageIDs, salvageID)
	})
}

// RemoveSalvage drops a salvage container from the sector.
func (i *Index) RemoveSalvage(sectorID int, salvageID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.update(sectorID, func(r *Record) {
		out := r.SalvageIDs[:0]
		for _, id := range r.SalvageIDs {
			if id != salvageID {
				out = append(out, id)
			}
		}
		r.SalvageIDs = out
	})
}

// Reset clears the index. Used by test_reset only.
func (i *Index) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.records.Range(func(k, _ interface{}) bool {
		i.records.Delete(k)
		return true
	})
	i.locations = map[string]int{}
}

// update publishes a mutated copy of the sector record. Callers hold i.mu.
func (i *Index) update(sectorID int, mutate func(*Record)) {
	current := i.Snapshot(sectorID)
	next := &Record{
		SectorID:   sectorID,
		Occupants:  make(map[string]Occupant, len(current.Occupants)),
		SalvageIDs: append([]string(nil), current.SalvageIDs...),
	}
	for id, o := range current.Occupants {
		next.Occupants[id] = o
	}
	if current.Garrison != nil {
		copied := *current.Garrison
		next.Garrison = &copied
	}
	mutate(next)
	i.records.Store(sectorID, next)
}
