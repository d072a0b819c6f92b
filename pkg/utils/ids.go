package utils

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// GenerateCombatID creates a standardized, human-readable encounter ID.
// Format: combat-{sector}-{8charHexUUID}, e.g. "combat-42-a3f8e2b1".
func GenerateCombatID(sectorID int) string {
	return "combat-" + strconv.Itoa(sectorID) + "-" + ShortUUID()
}

// GenerateSalvageID creates a salvage container ID.
func GenerateSalvageID(sectorID int) string {
	return "salvage-" + strconv.Itoa(sectorID) + "-" + ShortUUID()
}

// GenerateShipID creates a ship ID.
func GenerateShipID() string {
	return "ship-" + ShortUUID()
}

// GenerateCorporationID creates a corporation ID.
func GenerateCorporationID() string {
	return "corp-" + ShortUUID()
}

// GenerateInviteCode creates a corporation invite code. Longer than the
// other short IDs since it doubles as a shared secret.
func GenerateInviteCode() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:16]
}

// ShortUUID returns the first 8 hex characters of a fresh UUID: unique
// enough for a single world, short enough to read in logs.
func ShortUUID() string {
	return uuid.New().String()[:8]
}
