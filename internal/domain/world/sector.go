package world

import (
	"sort"
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// Sector is read-only topology: adjacency plus optional static features.
// Mutable sector contents (port stock, garrisons, salvage) live in their
// own records keyed by sector id.
type Sector struct {
	ID       int
	Adjacent []int
	HasPort  bool
	Planets  []string
}

// Universe is the sector graph consumed as reference data. It is built
// once at startup and never mutated, so reads need no locking.
type Universe struct {
	sectors map[int]*Sector
}

// NewUniverse builds a universe from the given sectors.
func NewUniverse(sectors []*Sector) *Universe {
	m := make(map[int]*Sector, len(sectors))
	for _, s := range sectors {
		m[s.ID] = s
	}
	return &Universe{sectors: m}
}

// Sector returns the topology record for id.
func (u *Universe) Sector(id int) (*Sector, error) {
	s, ok := u.sectors[id]
	if !ok {
		return nil, shared.NewNotFoundError("sector", strconv.Itoa(id))
	}
	return s, nil
}

// Exists reports whether a sector id is part of the universe.
func (u *Universe) Exists(id int) bool {
	_, ok := u.sectors[id]
	return ok
}

// AreAdjacent reports whether b is reachable from a in one warp.
func (u *Universe) AreAdjacent(a, b int) bool {
	s, ok := u.sectors[a]
	if !ok {
		return false
	}
	for _, adj := range s.Adjacent {
		if adj == b {
			return true
		}
	}
	return false
}

// PlotCourse returns the shortest path from origin to destination as a
// sector list including both endpoints, or an error when unreachable.
func (u *Universe) PlotCourse(origin, destination int) ([]int, error) {
	if !u.Exists(origin) {
		return nil, shared.NewNotFoundError("sector", strconv.Itoa(origin))
	}
	if !u.Exists(destination) {
		return nil, shared.NewNotFoundError("sector", strconv.Itoa(destination))
	}
	if origin == destination {
		return []int{origin}, nil
	}

	// Plain BFS; the graph is small enough that precomputed routing
	// tables are not worth the bookkeeping.
	prev := map[int]int{origin: origin}
	queue := []int{origin}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		sector := u.sectors[current]
		neighbors := append([]int(nil), sector.Adjacent...)
		sort.Ints(neighbors)
		for _, next := range neighbors {
			if _, seen := prev[next]; seen || !u.Exists(next) {
				continue
			}
			prev[next] = current
			if next == destination {
				return rebuildPath(prev, origin, destination), nil
			}
			queue = append(queue, next)
		}
	}
	return nil, shared.NewValidationError("destination", "no course exists to sector "+strconv.Itoa(destination))
}

func rebuildPath(prev map[int]int, origin, destination int) []int {
	path := []int{destination}
	for at := destination; at != origin; at = prev[at] {
		path = append(path, prev[at])
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// DefaultUniverse builds the small stock galaxy used by tests and local
// worlds: a 10-sector ring with cross links and ports in sectors 0 and 2.
func DefaultUniverse() *Universe {
	sectors := make([]*Sector, 0, 10)
	for id := 0; id < 10; id++ {
		s := &Sector{ID: id}
		s.Adjacent = []int{(id + 9) % 10, (id + 1) % 10}
		if id%2 == 0 {
			s.Adjacent = append(s.Adjacent, (id+5)%10)
		}
		sectors = append(sectors, s)
	}
	sectors[0].HasPort = true
	sectors[2].HasPort = true
	sectors[5].Planets = []string{"New Ceres"}
	return NewUniverse(sectors)
}

// SectorIDs lists every sector id in ascending order.
func (u *Universe) SectorIDs() []int {
	out := make([]int, 0, len(u.sectors))
	for id := range u.sectors {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}
