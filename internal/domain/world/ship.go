package world

import (
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// ShipOwnerKind identifies who holds title to a hull.
type ShipOwnerKind string

const (
	ShipOwnerCharacter   ShipOwnerKind = "character"
	ShipOwnerCorporation ShipOwnerKind = "corporation"
	ShipOwnerUnowned     ShipOwnerKind = "unowned"
)

// ShipType is a row from the external ship-stat table. The catalog is
// read-only reference data; gameplay never mutates it.
type ShipType struct {
	Name              string
	MaxFighters       int
	MaxShields        int
	CargoCapacity     int
	WarpPowerCapacity int
	TurnsPerWarp      int
	Price             int
	TradeInValue      int
}

// EscapePodType is the ship type a defeated character is reduced to.
const EscapePodType = "escape_pod"

// Ship is a mutable hull. State fields are bounded by the type's maxima;
// exceeding them is an invariant violation.
type Ship struct {
	ID        string
	Name      string
	TypeName  string
	OwnerKind ShipOwnerKind
	OwnerID   string
	Fighters  int
	Shields   int
	WarpPower int
	Cargo     shared.Cargo
	Credits   int
}

// CheckBounds verifies the ship state against its type. Handlers call this
// after every mutation; a failure aborts the command before commit.
func (s *Ship) CheckBounds(t *ShipType) error {
	if s.Fighters < 0 || s.Fighters > t.MaxFighters {
		return shared.NewDomainError("ship fighters out of bounds")
	}
	if s.Shields < 0 || s.Shields > t.MaxShields {
		return shared.NewDomainError("ship shields out of bounds")
	}
	if s.WarpPower < 0 || s.WarpPower > t.WarpPowerCapacity {
		return shared.NewDomainError("ship warp power out of bounds")
	}
	if s.Cargo.Total() > t.CargoCapacity {
		return shared.NewDomainError("ship cargo exceeds capacity")
	}
	for _, units := range s.Cargo {
		if units < 0 {
			return shared.NewDomainError("negative cargo units")
		}
	}
	return nil
}

// FreeCargoSpace returns remaining hold capacity for the given type.
func (s *Ship) FreeCargoSpace(t *ShipType) int {
	free := t.CargoCapacity - s.Cargo.Total()
	if free < 0 {
		return 0
	}
	return free
}

// ShipCatalog resolves ship type names to their stat rows.
type ShipCatalog interface {
	Type(name string) (*ShipType, error)
	All() []*ShipType
}

// StaticCatalog is the in-memory catalog backing the default universe.
type StaticCatalog struct {
	types map[string]*ShipType
}

// NewStaticCatalog builds a catalog from the given rows.
func NewStaticCatalog(types []*ShipType) *StaticCatalog {
	m := make(map[string]*ShipType, len(types))
	for _, t := range types {
		m[t.Name] = t
	}
	return &StaticCatalog{types: m}
}

// DefaultCatalog returns the stock ship table.
func DefaultCatalog() *StaticCatalog {
	return NewStaticCatalog([]*ShipType{
		{Name: "merchant_cruiser", MaxFighters: 2500, MaxShields: 400, CargoCapacity: 75, WarpPowerCapacity: 300, TurnsPerWarp: 3, Price: 40000, TradeInValue: 25000},
		{Name: "scout_marauder", MaxFighters: 250, MaxShields: 100, CargoCapacity: 25, WarpPowerCapacity: 500, TurnsPerWarp: 2, Price: 16000, TradeInValue: 10000},
		{Name: "corporate_flagship", MaxFighters: 20000, MaxShields: 1500, CargoCapacity: 85, WarpPowerCapacity: 400, TurnsPerWarp: 4, Price: 163000, TradeInValue: 105000},
		{Name: EscapePodType, MaxFighters: 0, MaxShields: 0, CargoCapacity: 0, WarpPowerCapacity: 100, TurnsPerWarp: 1, Price: 0, TradeInValue: 0},
	})
}

// Type returns the stat row for name.
func (c *StaticCatalog) Type(name string) (*ShipType, error) {
	t, ok := c.types[name]
	if !ok {
		return nil, shared.NewNotFoundError("ship type", name)
	}
	return t, nil
}

// All lists every row in unspecified order.
func (c *StaticCatalog) All() []*ShipType {
	out := make([]*ShipType, 0, len(c.types))
	for _, t := range c.types {
		out = append(out, t)
	}
	return out
}
