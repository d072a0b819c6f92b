package persistence

import (
	"time"
)

// Database models. Domain maps and slices are stored as JSON columns,
// converted at the repository boundary; domain types never leak gorm tags.

// CharacterModel is the database representation of a character.
type CharacterModel struct {
	ID            string `gorm:"primaryKey"`
	Name          string `gorm:"index"`
	Kind          string
	SectorID      int `gorm:"index"`
	InHyperspace  bool
	LastActive    time.Time
	CorporationID string `gorm:"index"`
	CreditsOnHand int
	CreditsInBank int
	ShipID        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName specifies the table name for CharacterModel
func (CharacterModel) TableName() string {
	return "characters"
}

// ShipModel is the database representation of a ship.
type ShipModel struct {
	ID        string `gorm:"primaryKey"`
	Name      string
	TypeName  string
	OwnerKind string `gorm:"index:idx_ships_owner"`
	OwnerID   string `gorm:"index:idx_ships_owner"`
	Fighters  int
	Shields   int
	WarpPower int
	Cargo     string // JSON commodity→units
	Credits   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for ShipModel
func (ShipModel) TableName() string {
	return "ships"
}

// PortModel is the database representation of mutable port state.
type PortModel struct {
	SectorID    int `gorm:"primaryKey"`
	Code        string
	Stock       string // JSON commodity→units
	MaxCapacity string // JSON commodity→units
	UpdatedAt   time.Time
}

// TableName specifies the table name for PortModel
func (PortModel) TableName() string {
	return "ports"
}

// GarrisonModel is the database representation of a garrison. The sector
// id is the primary key: one garrison per sector.
type GarrisonModel struct {
	SectorID    int    `gorm:"primaryKey"`
	OwnerID     string `gorm:"index"`
	Fighters    int
	Mode        string
	TollAmount  int
	TollBalance int
	UpdatedAt   time.Time
}

// TableName specifies the table name for GarrisonModel
func (GarrisonModel) TableName() string {
	return "garrisons"
}

// SalvageModel is the database representation of a salvage container.
type SalvageModel struct {
	ID             string `gorm:"primaryKey"`
	SectorID       int    `gorm:"index"`
	Cargo          string // JSON commodity→units
	Scrap          int
	Credits        int
	ExpiresAt      time.Time `gorm:"index"`
	SourceShipName string
	SourceShipType string
	CreatedAt      time.Time
}

// TableName specifies the table name for SalvageModel
func (SalvageModel) TableName() string {
	return "salvage_containers"
}

// CorporationModel is the database representation of a corporation.
type CorporationModel struct {
	ID         string `gorm:"primaryKey"`
	Name       string `gorm:"index"`
	InviteCode string `gorm:"index"`
	FoundedAt  time.Time
	FounderID  string
	Members    string // JSON list of character ids
	Ships      string // JSON list of ship ids
	UpdatedAt  time.Time
}

// TableName specifies the table name for CorporationModel
func (CorporationModel) TableName() string {
	return "corporations"
}

// KnowledgeModel stores one character's map intel as a single document,
// rewritten wholesale under the character's knowledge lock.
type KnowledgeModel struct {
	CharacterID string `gorm:"primaryKey"`
	Visited     string // JSON sector→intel
	UpdatedAt   time.Time
}

// TableName specifies the table name for KnowledgeModel
func (KnowledgeModel) TableName() string {
	return "map_knowledge"
}

// EventLogModel journals one emitted event with its resolved recipients.
type EventLogModel struct {
	Sequence   uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name       string `gorm:"index"`
	Payload    string // JSON
	Summary    string
	Recipients string    `gorm:"index"` // JSON list of character ids
	Timestamp  time.Time `gorm:"index"`
}

// TableName specifies the table name for EventLogModel
func (EventLogModel) TableName() string {
	return "event_log"
}

// AllModels lists every model for auto-migration.
func AllModels() []interface{} {
	return []interface{}{
		&CharacterModel{},
		&ShipModel{},
		&PortModel{},
		&GarrisonModel{},
		&SalvageModel{},
		&CorporationModel{},
		&KnowledgeModel{},
		&EventLogModel{},
	}
}
