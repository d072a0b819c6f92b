package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormSalvageRepository implements world.SalvageRepository using GORM
type GormSalvageRepository struct {
	db *gorm.DB
}

// NewGormSalvageRepository creates a new GORM salvage repository
func NewGormSalvageRepository(db *gorm.DB) *GormSalvageRepository {
	return &GormSalvageRepository{db: db}
}

// FindByID retrieves a salvage container by ID
func (r *GormSalvageRepository) FindByID(ctx context.Context, id string) (*world.Salvage, error) {
	var model SalvageModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("salvage", id)
		}
		return nil, fmt.Errorf("failed to find salvage: %w", result.Error)
	}
	return salvageModelToDomain(&model)
}

// Save persists a salvage container (upsert by primary key)
func (r *GormSalvageRepository) Save(ctx context.Context, salvage *world.Salvage) error {
	model, err := salvageDomainToModel(salvage)
	if err != nil {
		return err
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save salvage: %w", result.Error)
	}
	return nil
}

// Delete removes a salvage container
func (r *GormSalvageRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&SalvageModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete salvage: %w", result.Error)
	}
	return nil
}

// ListBySector retrieves all salvage containers in a sector
func (r *GormSalvageRepository) ListBySector(ctx context.Context, sectorID int) ([]*world.Salvage, error) {
	var models []SalvageModel
	result := r.db.WithContext(ctx).Where("sector_id = ?", sectorID).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list salvage by sector: %w", result.Error)
	}
	return salvageModelsToDomain(models)
}

// ListExpired retrieves containers whose TTL has elapsed
func (r *GormSalvageRepository) ListExpired(ctx context.Context, now time.Time) ([]*world.Salvage, error) {
	var models []SalvageModel
	result := r.db.WithContext(ctx).Where("expires_at <= ?", now).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list expired salvage: %w", result.Error)
	}
	return salvageModelsToDomain(models)
}

func salvageModelsToDomain(models []SalvageModel) ([]*world.Salvage, error) {
	out := make([]*world.Salvage, 0, len(models))
	for i := range models {
		salvage, err := salvageModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, salvage)
	}
	return out, nil
}

func salvageModelToDomain(model *SalvageModel) (*world.Salvage, error) {
	cargo, err := cargoFromJSON(model.Cargo)
	if err != nil {
		return nil, fmt.Errorf("invalid cargo for salvage %s: %w", model.ID, err)
	}
	return &world.Salvage{
		ID:             model.ID,
		SectorID:       model.SectorID,
		Cargo:          cargo,
		Scrap:          model.Scrap,
		Credits:        model.Credits,
		ExpiresAt:      model.ExpiresAt,
		SourceShipName: model.SourceShipName,
		SourceShipType: model.SourceShipType,
	}, nil
}

func salvageDomainToModel(s *world.Salvage) (*SalvageModel, error) {
	cargo, err := cargoToJSON(s.Cargo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cargo for salvage %s: %w", s.ID, err)
	}
	return &SalvageModel{
		ID:             s.ID,
		SectorID:       s.SectorID,
		Cargo:          cargo,
		Scrap:          s.Scrap,
		Credits:        s.Credits,
		ExpiresAt:      s.ExpiresAt,
		SourceShipName: s.SourceShipName,
		SourceShipType: s.SourceShipType,
	}, nil
}
