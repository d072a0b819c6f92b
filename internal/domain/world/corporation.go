package world

import "time"

// Corporation is a player-founded organization. Members act for the
// corporation's collectively owned ships; a character belongs to at most
// one corporation at a time.
type Corporation struct {
	ID         string
	Name       string
	InviteCode string
	FoundedAt  time.Time
	FounderID  string
	Members    []string
	Ships      []string
}

// IsMember reports whether the character belongs to the corporation.
func (c *Corporation) IsMember(characterID string) bool {
	for _, m := range c.Members {
		if m == characterID {
			return true
		}
	}
	return false
}

// RemoveMember drops the character from the member list.
func (c *Corporation) RemoveMember(characterID string) {
	out := c.Members[:0]
	for _, m := range c.Members {
		if m != characterID {
			out = append(out, m)
		}
	}
	c.Members = out
}

// OwnsShip reports whether the hull is corporation property.
func (c *Corporation) OwnsShip(shipID string) bool {
	for _, s := range c.Ships {
		if s == shipID {
			return true
		}
	}
	return false
}
