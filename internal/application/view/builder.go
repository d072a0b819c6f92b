package view

import (
	"context"

	"github.com/andrescamacho/tradewars-server/internal/application/sector"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// Builder assembles the nested wire payloads (status snapshots, sector
// views) from the live index and the repositories. Handlers compose these
// fragments instead of mutating payload maps inline.
type Builder struct {
	universe   *world.Universe
	catalog    world.ShipCatalog
	index      *sector.Index
	characters world.CharacterRepository
	ships      world.ShipRepository
	ports      world.PortRepository
	salvage    world.SalvageRepository
}

// NewBuilder wires a payload builder.
func NewBuilder(
	universe *world.Universe,
	catalog world.ShipCatalog,
	index *sector.Index,
	characters world.CharacterRepository,
	ships world.ShipRepository,
	ports world.PortRepository,
	salvage world.SalvageRepository,
) *Builder {
	return &Builder{
		universe:   universe,
		catalog:    catalog,
		index:      index,
		characters: characters,
		ships:      ships,
		ports:      ports,
		salvage:    salvage,
	}
}

// SectorView renders the live contents of a sector: topology, occupants,
// garrison, salvage and port. Occupancy comes from the index snapshot so
// readers never block on locks.
func (b *Builder) SectorView(ctx context.Context, sectorID int) (map[string]interface{}, error) {
	topo, err := b.universe.Sector(sectorID)
	if err != nil {
		return nil, err
	}

	record := b.index.Snapshot(sectorID)

	occupants := make([]*world.Character, 0, len(record.Occupants))
	for _, id := range b.index.Occupants(sectorID) {
		character, err := b.characters.FindByID(ctx, id)
		if err != nil {
			continue // index may briefly lead the store during a join
		}
		occupants = append(occupants, character)
	}

	var containers []*world.Salvage
	if len(record.SalvageIDs) > 0 {
		containers, err = b.salvage.ListBySector(ctx, sectorID)
		if err != nil {
			return nil, err
		}
	}

	var port *world.Port
	if topo.HasPort {
		if p, err := b.ports.FindBySector(ctx, sectorID); err == nil {
			port = p
		}
	}

	return events.SectorViewPayload(topo, occupants, record.Garrison, containers, port), nil
}

// StatusPayload renders a character's full private status: identity,
// balances, ship and current sector view.
func (b *Builder) StatusPayload(ctx context.Context, character *world.Character) (map[string]interface{}, error) {
	ship, err := b.ships.FindByID(ctx, character.ShipID)
	if err != nil {
		return nil, err
	}
	shipType, err := b.catalog.Type(ship.TypeName)
	if err != nil {
		return nil, err
	}
	out := events.CharacterPayload(character)
	out["credits"] = events.CreditsPayload(character)
	out["ship"] = events.ShipPayload(ship, shipType)
	if !character.InHyperspace {
		sectorView, err := b.SectorView(ctx, character.SectorID)
		if err == nil {
			out["sector"] = sectorView
		}
	}
	return out, nil
}
