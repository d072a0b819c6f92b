package world

import "github.com/andrescamacho/tradewars-server/internal/domain/shared"

// GarrisonMode is the standing order for fighters left in a sector.
type GarrisonMode string

const (
	GarrisonOffensive GarrisonMode = "offensive"
	GarrisonDefensive GarrisonMode = "defensive"
	GarrisonToll      GarrisonMode = "toll"
)

// ParseGarrisonMode validates a wire-level garrison mode.
func ParseGarrisonMode(s string) (GarrisonMode, error) {
	switch GarrisonMode(s) {
	case GarrisonOffensive, GarrisonDefensive, GarrisonToll:
		return GarrisonMode(s), nil
	}
	return "", shared.NewValidationError("mode", "unknown garrison mode "+s)
}

// Garrison is a stationed fighter group. A sector holds at most one
// garrison, belonging to a single owner; the deploy path enforces this.
// TollBalance accumulates credits paid by passing characters and is
// claimed when the owner collects the fighters.
type Garrison struct {
	SectorID    int
	OwnerID     string
	Fighters    int
	Mode        GarrisonMode
	TollAmount  int
	TollBalance int
}
