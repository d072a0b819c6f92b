package world

import (
	"strconv"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
)

// TradeKind is the direction of a trade from the character's point of view.
type TradeKind string

const (
	TradeBuy  TradeKind = "buy"
	TradeSell TradeKind = "sell"
)

// ParseTradeKind validates a wire-level trade direction.
func ParseTradeKind(s string) (TradeKind, error) {
	switch TradeKind(s) {
	case TradeBuy, TradeSell:
		return TradeKind(s), nil
	}
	return "", shared.NewValidationError("kind", "unknown trade kind "+s)
}

// PriceFunc computes the per-unit price from pre-trade stock and capacity.
// The formula itself is external reference data; the core only requires
// purity.
type PriceFunc func(stock, capacity int) int

// DefaultPriceFunc is the stock pricing curve: scarce goods cost more.
func DefaultPriceFunc(stock, capacity int) int {
	if capacity <= 0 {
		return 0
	}
	price := 20 - (15*stock)/capacity
	if price < 1 {
		price = 1
	}
	return price
}

// Port is the mutable trading post state for a sector. Code is the
// three-character classifier: position i covers Commodities()[i], 'S'
// means the port sells that commodity to characters, 'B' means it buys.
type Port struct {
	SectorID    int
	Code        string
	Stock       map[shared.Commodity]int
	MaxCapacity map[shared.Commodity]int
}

// Sells reports whether characters can buy the commodity here.
func (p *Port) Sells(c shared.Commodity) bool {
	return p.policy(c) == 'S'
}

// Buys reports whether characters can sell the commodity here.
func (p *Port) Buys(c shared.Commodity) bool {
	return p.policy(c) == 'B'
}

func (p *Port) policy(c shared.Commodity) byte {
	for i, commodity := range shared.Commodities() {
		if commodity == c {
			if i < len(p.Code) {
				return p.Code[i]
			}
			return 0
		}
	}
	return 0
}

// CheckBounds verifies stock stays within [0, capacity] per commodity.
func (p *Port) CheckBounds() error {
	for commodity, units := range p.Stock {
		if units < 0 || units > p.MaxCapacity[commodity] {
			return shared.NewDomainError(
				"port " + strconv.Itoa(p.SectorID) + " stock out of bounds for " + string(commodity))
		}
	}
	return nil
}

// NewPort builds a port with the given classifier code. Sold commodities
// start fully stocked, bought commodities start empty.
func NewPort(sectorID int, code string, capacity int) *Port {
	p := &Port{
		SectorID:    sectorID,
		Code:        code,
		Stock:       map[shared.Commodity]int{},
		MaxCapacity: map[shared.Commodity]int{},
	}
	for _, commodity := range shared.Commodities() {
		p.MaxCapacity[commodity] = capacity
		if p.Sells(commodity) {
			p.Stock[commodity] = capacity
		} else {
			p.Stock[commodity] = 0
		}
	}
	return p
}
