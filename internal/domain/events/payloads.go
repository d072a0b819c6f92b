package events

import (
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// Payload builders. Wire payloads are long and nested (status snapshots
// embed ship, sector and port views), so they are assembled from small
// composable fragments instead of ad-hoc map mutations. Each builder
// returns a fresh map; callers may attach fragments under their own keys.

// ShipPayload renders a ship with its type maxima.
func ShipPayload(ship *world.Ship, shipType *world.ShipType) map[string]interface{} {
	return map[string]interface{}{
		"ship_id":        ship.ID,
		"name":           ship.Name,
		"ship_type":      ship.TypeName,
		"fighters":       ship.Fighters,
		"max_fighters":   shipType.MaxFighters,
		"shields":        ship.Shields,
		"max_shields":    shipType.MaxShields,
		"warp_power":     ship.WarpPower,
		"warp_capacity":  shipType.WarpPowerCapacity,
		"cargo":          CargoPayload(ship.Cargo),
		"cargo_capacity": shipType.CargoCapacity,
		"credits":        ship.Credits,
	}
}

// CargoPayload renders a hold as a commodity→units object.
func CargoPayload(cargo shared.Cargo) map[string]interface{} {
	out := make(map[string]interface{}, len(cargo))
	for commodity, units := range cargo {
		out[string(commodity)] = units
	}
	return out
}

// CharacterPayload renders the public view of a character.
func CharacterPayload(c *world.Character) map[string]interface{} {
	out := map[string]interface{}{
		"character_id":  c.ID,
		"name":          c.Name,
		"kind":          string(c.Kind),
		"sector_id":     c.SectorID,
		"in_hyperspace": c.InHyperspace,
	}
	if c.CorporationID != "" {
		out["corporation_id"] = c.CorporationID
	}
	return out
}

// CreditsPayload renders the private credit balances of a character.
func CreditsPayload(c *world.Character) map[string]interface{} {
	return map[string]interface{}{
		"credits_on_hand": c.CreditsOnHand,
		"credits_in_bank": c.CreditsInBank,
	}
}

// PortPayload renders mutable port state.
func PortPayload(p *world.Port) map[string]interface{} {
	stock := make(map[string]interface{}, len(p.Stock))
	capacity := make(map[string]interface{}, len(p.MaxCapacity))
	for commodity, units := range p.Stock {
		stock[string(commodity)] = units
	}
	for commodity, units := range p.MaxCapacity {
		capacity[string(commodity)] = units
	}
	return map[string]interface{}{
		"sector_id":    p.SectorID,
		"code":         p.Code,
		"stock":        stock,
		"max_capacity": capacity,
	}
}

// GarrisonPayload renders a stationed garrison. The toll balance is the
// owner's business and is only included when private is set.
func GarrisonPayload(g *world.Garrison, private bool) map[string]interface{} {
	out := map[string]interface{}{
		"sector_id": g.SectorID,
		"owner_id":  g.OwnerID,
		"fighters":  g.Fighters,
		"mode":      string(g.Mode),
	}
	if g.Mode == world.GarrisonToll {
		out["toll_amount"] = g.TollAmount
	}
	if private {
		out["toll_balance"] = g.TollBalance
	}
	return out
}

// SalvagePayload renders a salvage container. Source names the hull only;
// the defeated character's id never appears.
func SalvagePayload(s *world.Salvage) map[string]interface{} {
	return map[string]interface{}{
		"salvage_id": s.ID,
		"sector_id":  s.SectorID,
		"cargo":      CargoPayload(s.Cargo),
		"scrap":      s.Scrap,
		"credits":    s.Credits,
		"expires_at": s.ExpiresAt,
		"source": map[string]interface{}{
			"ship_name": s.SourceShipName,
			"ship_type": s.SourceShipType,
		},
	}
}

// SectorViewPayload renders the live contents of a sector.
func SectorViewPayload(
	sector *world.Sector,
	occupants []*world.Character,
	garrison *world.Garrison,
	salvage []*world.Salvage,
	port *world.Port,
) map[string]interface{} {
	chars := make([]interface{}, 0, len(occupants))
	for _, c := range occupants {
		chars = append(chars, CharacterPayload(c))
	}
	out := map[string]interface{}{
		"sector_id": sector.ID,
		"adjacent":  sector.Adjacent,
		"occupants": chars,
	}
	if len(sector.Planets) > 0 {
		out["planets"] = sector.Planets
	}
	if garrison != nil {
		out["garrison"] = GarrisonPayload(garrison, false)
	}
	if len(salvage) > 0 {
		items := make([]interface{}, 0, len(salvage))
		for _, s := range salvage {
			items = append(items, SalvagePayload(s))
		}
		out["salvage"] = items
	}
	if port != nil {
		out["port"] = PortPayload(port)
	}
	return out
}

// CorporationPayload renders a corporation. The invite code is included
// only when private is set (member-addressed events).
func CorporationPayload(c *world.Corporation, private bool) map[string]interface{} {
	out := map[string]interface{}{
		"corp_id":    c.ID,
		"name":       c.Name,
		"founded_at": c.FoundedAt,
		"members":    c.Members,
		"ships":      c.Ships,
	}
	if private {
		out["invite_code"] = c.InviteCode
	}
	return out
}
