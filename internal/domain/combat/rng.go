package combat

import (
	"hash/fnv"
	"math/rand"
	"strconv"
)

// Roller produces the bounded random rolls used by damage and flee
// resolution. The same (combat, round, actor, target) tuple always yields
// the same roll, which keeps round resolution reproducible for tests and
// for event-log replay.
type Roller interface {
	// Roll returns a value in [0, 1).
	Roll(combatID string, round int, actorID, targetID string) float64
}

// SeededRoller derives each roll from an FNV hash of the input tuple mixed
// with a world seed.
type SeededRoller struct {
	worldSeed int64
}

// NewSeededRoller creates a roller for the given world seed. Worlds that
// want distinct histories configure distinct seeds; tests pin one.
func NewSeededRoller(worldSeed int64) *SeededRoller {
	return &SeededRoller{worldSeed: worldSeed}
}

// Roll implements Roller.
func (r *SeededRoller) Roll(combatID string, round int, actorID, targetID string) float64 {
	h := fnv.New64a()
	h.Write([]byte(combatID))
	h.Write([]byte{0})
	h.Write([]byte(strconv.Itoa(round)))
	h.Write([]byte{0})
	h.Write([]byte(actorID))
	h.Write([]byte{0})
	h.Write([]byte(targetID))
	seed := int64(h.Sum64()) ^ r.worldSeed
	return rand.New(rand.NewSource(seed)).Float64()
}
