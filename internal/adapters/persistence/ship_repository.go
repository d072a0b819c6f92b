package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormShipRepository implements world.ShipRepository using GORM
type GormShipRepository struct {
	db *gorm.DB
}

// NewGormShipRepository creates a new GORM ship repository
func NewGormShipRepository(db *gorm.DB) *GormShipRepository {
	return &GormShipRepository{db: db}
}

// FindByID retrieves a ship by ID
func (r *GormShipRepository) FindByID(ctx context.Context, id string) (*world.Ship, error) {
	var model ShipModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("ship", id)
		}
		return nil, fmt.Errorf("failed to find ship: %w", result.Error)
	}
	return shipModelToDomain(&model)
}

// Save persists a ship (upsert by primary key)
func (r *GormShipRepository) Save(ctx context.Context, ship *world.Ship) error {
	model, err := shipDomainToModel(ship)
	if err != nil {
		return err
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save ship: %w", result.Error)
	}
	return nil
}

// ListByOwner retrieves all ships held by an owner
func (r *GormShipRepository) ListByOwner(ctx context.Context, ownerKind world.ShipOwnerKind, ownerID string) ([]*world.Ship, error) {
	var models []ShipModel
	result := r.db.WithContext(ctx).
		Where("owner_kind = ? AND owner_id = ?", string(ownerKind), ownerID).
		Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list ships by owner: %w", result.Error)
	}
	out := make([]*world.Ship, 0, len(models))
	for i := range models {
		ship, err := shipModelToDomain(&models[i])
		if err != nil {
			continue // Skip rows with corrupt cargo JSON
		}
		out = append(out, ship)
	}
	return out, nil
}

func shipModelToDomain(model *ShipModel) (*world.Ship, error) {
	cargo, err := cargoFromJSON(model.Cargo)
	if err != nil {
		return nil, fmt.Errorf("invalid cargo for ship %s: %w", model.ID, err)
	}
	return &world.Ship{
		ID:        model.ID,
		Name:      model.Name,
		TypeName:  model.TypeName,
		OwnerKind: world.ShipOwnerKind(model.OwnerKind),
		OwnerID:   model.OwnerID,
		Fighters:  model.Fighters,
		Shields:   model.Shields,
		WarpPower: model.WarpPower,
		Cargo:     cargo,
		Credits:   model.Credits,
	}, nil
}

func shipDomainToModel(ship *world.Ship) (*ShipModel, error) {
	cargo, err := cargoToJSON(ship.Cargo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cargo for ship %s: %w", ship.ID, err)
	}
	return &ShipModel{
		ID:        ship.ID,
		Name:      ship.Name,
		TypeName:  ship.TypeName,
		OwnerKind: string(ship.OwnerKind),
		OwnerID:   ship.OwnerID,
		Fighters:  ship.Fighters,
		Shields:   ship.Shields,
		WarpPower: ship.WarpPower,
		Cargo:     cargo,
		Credits:   ship.Credits,
	}, nil
}

func cargoFromJSON(raw string) (shared.Cargo, error) {
	if raw == "" {
		return shared.Cargo{}, nil
	}
	var cargo shared.Cargo
	if err := json.Unmarshal([]byte(raw), &cargo); err != nil {
		return nil, err
	}
	return cargo, nil
}

func cargoToJSON(cargo shared.Cargo) (string, error) {
	if cargo == nil {
		cargo = shared.Cargo{}
	}
	raw, err := json.Marshal(cargo)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
