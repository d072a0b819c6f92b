package world

import "time"

// Knowledge is a character's accumulated map intel: which sectors they
// have visited and what they last saw there. Writes serialize on the
// character's knowledge lock.
type Knowledge struct {
	CharacterID string
	Visited     map[int]SectorIntel
}

// SectorIntel is the remembered view of one sector.
type SectorIntel struct {
	LastVisited time.Time
	PortCode    string
	Adjacent    []int
}

// NewKnowledge creates empty intel for a character.
func NewKnowledge(characterID string) *Knowledge {
	return &Knowledge{CharacterID: characterID, Visited: map[int]SectorIntel{}}
}

// Record stores the intel gathered by standing in a sector.
func (k *Knowledge) Record(sectorID int, intel SectorIntel) {
	if k.Visited == nil {
		k.Visited = map[int]SectorIntel{}
	}
	k.Visited[sectorID] = intel
}
