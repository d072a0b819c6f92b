package shared

// Commodity identifies a tradeable good. The canonical universe trades
// three commodities; ports declare per-commodity buy/sell policy through
// their three-character code.
type Commodity string

const (
	CommodityQuantumFoam  Commodity = "qf"
	CommodityRareOre      Commodity = "ro"
	CommodityNeutronSpice Commodity = "ns"
)

// Commodities lists every commodity in canonical (port code) order.
func Commodities() []Commodity {
	return []Commodity{CommodityQuantumFoam, CommodityRareOre, CommodityNeutronSpice}
}

// ParseCommodity validates a wire-level commodity tag.
func ParseCommodity(s string) (Commodity, error) {
	switch Commodity(s) {
	case CommodityQuantumFoam, CommodityRareOre, CommodityNeutronSpice:
		return Commodity(s), nil
	}
	return "", NewValidationError("commodity", "unknown commodity "+s)
}

// Cargo is a per-commodity unit count. A nil map is an empty hold.
type Cargo map[Commodity]int

// Total returns the summed units across all commodities.
func (c Cargo) Total() int {
	total := 0
	for _, units := range c {
		total += units
	}
	return total
}

// Clone copies the cargo map so callers can mutate their copy safely.
func (c Cargo) Clone() Cargo {
	if c == nil {
		return Cargo{}
	}
	out := make(Cargo, len(c))
	for commodity, units := range c {
		out[commodity] = units
	}
	return out
}

// Add merges other into c, returning the mutated receiver.
func (c Cargo) Add(other Cargo) Cargo {
	for commodity, units := range other {
		c[commodity] += units
	}
	return c
}

// IsEmpty reports whether the hold carries nothing.
func (c Cargo) IsEmpty() bool {
	return c.Total() == 0
}
