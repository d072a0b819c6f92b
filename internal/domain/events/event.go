package events

import "time"

// Event is the unit of fan-out. Every world mutation emits one or more
// events; the bus stamps Sequence and resolves Filter to the concrete
// recipient set at emission time.
type Event struct {
	Name      string                 `json:"event_name"`
	Payload   map[string]interface{} `json:"payload"`
	Summary   string                 `json:"summary,omitempty"`
	Sequence  uint64                 `json:"sequence"`
	Timestamp time.Time              `json:"timestamp"`

	// Filter is server-side routing state and never reaches the wire.
	Filter Filter `json:"-"`
}

// FilterKind discriminates the recipient-selection variants.
type FilterKind string

const (
	FilterCharacters      FilterKind = "characters"
	FilterSectorOccupants FilterKind = "sector_occupants"
	FilterCorporation     FilterKind = "corporation"
	FilterAdminOnly       FilterKind = "admin_only"
)

// Filter selects the recipient set for an event. Exactly the fields for
// the active Kind are meaningful.
type Filter struct {
	Kind          FilterKind
	CharacterIDs  []string
	SectorID      int
	Exclude       string
	CorporationID string
}

// ToCharacters addresses an explicit recipient list.
func ToCharacters(ids ...string) Filter {
	return Filter{Kind: FilterCharacters, CharacterIDs: ids}
}

// ToSector addresses every non-hyperspace character present in the sector.
// Exclude, when non-empty, removes one character from the set.
func ToSector(sectorID int, exclude string) Filter {
	return Filter{Kind: FilterSectorOccupants, SectorID: sectorID, Exclude: exclude}
}

// ToCorporation addresses all members of the corporation.
func ToCorporation(corpID string) Filter {
	return Filter{Kind: FilterCorporation, CorporationID: corpID}
}

// ToAdmins addresses admin connections only.
func ToAdmins() Filter {
	return Filter{Kind: FilterAdminOnly}
}
