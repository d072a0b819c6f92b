package world

import (
	"context"
	"time"
)

// CharacterRepository provides durable storage for characters.
type CharacterRepository interface {
	FindByID(ctx context.Context, id string) (*Character, error)
	Save(ctx context.Context, character *Character) error
	Exists(ctx context.Context, id string) (bool, error)
	ListBySector(ctx context.Context, sectorID int) ([]*Character, error)
	ListByCorporation(ctx context.Context, corpID string) ([]*Character, error)
	ListAll(ctx context.Context) ([]*Character, error)
}

// ShipRepository provides durable storage for ships.
type ShipRepository interface {
	FindByID(ctx context.Context, id string) (*Ship, error)
	Save(ctx context.Context, ship *Ship) error
	ListByOwner(ctx context.Context, ownerKind ShipOwnerKind, ownerID string) ([]*Ship, error)
}

// PortRepository provides durable storage for mutable port state.
type PortRepository interface {
	FindBySector(ctx context.Context, sectorID int) (*Port, error)
	Save(ctx context.Context, port *Port) error
}

// GarrisonRepository provides durable storage for garrisons. A sector
// holds at most one garrison, so the sector id is the primary key.
type GarrisonRepository interface {
	FindBySector(ctx context.Context, sectorID int) (*Garrison, error)
	Save(ctx context.Context, garrison *Garrison) error
	Delete(ctx context.Context, sectorID int) error
	ListByOwner(ctx context.Context, ownerID string) ([]*Garrison, error)
}

// SalvageRepository provides durable storage for salvage containers.
type SalvageRepository interface {
	FindByID(ctx context.Context, id string) (*Salvage, error)
	Save(ctx context.Context, salvage *Salvage) error
	Delete(ctx context.Context, id string) error
	ListBySector(ctx context.Context, sectorID int) ([]*Salvage, error)
	ListExpired(ctx context.Context, now time.Time) ([]*Salvage, error)
}

// CorporationRepository provides durable storage for corporations.
type CorporationRepository interface {
	FindByID(ctx context.Context, id string) (*Corporation, error)
	FindByInviteCode(ctx context.Context, code string) (*Corporation, error)
	Save(ctx context.Context, corp *Corporation) error
	Delete(ctx context.Context, id string) error
}

// KnowledgeRepository provides durable storage for per-character map
// intel. Writers hold the character's knowledge lock.
type KnowledgeRepository interface {
	Find(ctx context.Context, characterID string) (*Knowledge, error)
	Save(ctx context.Context, knowledge *Knowledge) error
}

// Resetter wipes all world state. Only the test_reset admin command uses
// it, and only when the test feature flag is enabled.
type Resetter interface {
	Reset(ctx context.Context) error
}
