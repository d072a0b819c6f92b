package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormGarrisonRepository implements world.GarrisonRepository using GORM
type GormGarrisonRepository struct {
	db *gorm.DB
}

// NewGormGarrisonRepository creates a new GORM garrison repository
func NewGormGarrisonRepository(db *gorm.DB) *GormGarrisonRepository {
	return &GormGarrisonRepository{db: db}
}

// FindBySector retrieves the sector's garrison
func (r *GormGarrisonRepository) FindBySector(ctx context.Context, sectorID int) (*world.Garrison, error) {
	var model GarrisonModel
	result := r.db.WithContext(ctx).Where("sector_id = ?", sectorID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("garrison", strconv.Itoa(sectorID))
		}
		return nil, fmt.Errorf("failed to find garrison: %w", result.Error)
	}
	return garrisonModelToDomain(&model), nil
}

// Save persists a garrison (upsert by sector id)
func (r *GormGarrisonRepository) Save(ctx context.Context, garrison *world.Garrison) error {
	model := garrisonDomainToModel(garrison)
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save garrison: %w", result.Error)
	}
	return nil
}

// Delete removes the sector's garrison
func (r *GormGarrisonRepository) Delete(ctx context.Context, sectorID int) error {
	result := r.db.WithContext(ctx).Delete(&GarrisonModel{}, "sector_id = ?", sectorID)
	if result.Error != nil {
		return fmt.Errorf("failed to delete garrison: %w", result.Error)
	}
	return nil
}

// ListByOwner retrieves every garrison deployed by a character
func (r *GormGarrisonRepository) ListByOwner(ctx context.Context, ownerID string) ([]*world.Garrison, error) {
	var models []GarrisonModel
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list garrisons by owner: %w", result.Error)
	}
	out := make([]*world.Garrison, 0, len(models))
	for i := range models {
		out = append(out, garrisonModelToDomain(&models[i]))
	}
	return out, nil
}

func garrisonModelToDomain(model *GarrisonModel) *world.Garrison {
	return &world.Garrison{
		SectorID:    model.SectorID,
		OwnerID:     model.OwnerID,
		Fighters:    model.Fighters,
		Mode:        world.GarrisonMode(model.Mode),
		TollAmount:  model.TollAmount,
		TollBalance: model.TollBalance,
	}
}

func garrisonDomainToModel(g *world.Garrison) *GarrisonModel {
	return &GarrisonModel{
		SectorID:    g.SectorID,
		OwnerID:     g.OwnerID,
		Fighters:    g.Fighters,
		Mode:        string(g.Mode),
		TollAmount:  g.TollAmount,
		TollBalance: g.TollBalance,
	}
}
