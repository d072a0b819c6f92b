package persistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormCharacterRepository implements world.CharacterRepository using GORM
type GormCharacterRepository struct {
	db *gorm.DB
}

// NewGormCharacterRepository creates a new GORM character repository
func NewGormCharacterRepository(db *gorm.DB) *GormCharacterRepository {
	return &GormCharacterRepository{db: db}
}

// FindByID retrieves a character by ID
func (r *GormCharacterRepository) FindByID(ctx context.Context, id string) (*world.Character, error) {
	var model CharacterModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("character", id)
		}
		return nil, fmt.Errorf("failed to find character: %w", result.Error)
	}
	return characterModelToDomain(&model), nil
}

// Save persists a character (upsert by primary key)
func (r *GormCharacterRepository) Save(ctx context.Context, character *world.Character) error {
	model := characterDomainToModel(character)
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save character: %w", result.Error)
	}
	return nil
}

// Exists reports whether a character id is taken
func (r *GormCharacterRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&CharacterModel{}).Where("id = ?", id).Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("failed to check character existence: %w", result.Error)
	}
	return count > 0, nil
}

// ListBySector retrieves all characters currently in a sector
func (r *GormCharacterRepository) ListBySector(ctx context.Context, sectorID int) ([]*world.Character, error) {
	var models []CharacterModel
	result := r.db.WithContext(ctx).Where("sector_id = ?", sectorID).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list characters by sector: %w", result.Error)
	}
	return characterModelsToDomain(models), nil
}

// ListByCorporation retrieves all members of a corporation
func (r *GormCharacterRepository) ListByCorporation(ctx context.Context, corpID string) ([]*world.Character, error) {
	var models []CharacterModel
	result := r.db.WithContext(ctx).Where("corporation_id = ?", corpID).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list characters by corporation: %w", result.Error)
	}
	return characterModelsToDomain(models), nil
}

// ListAll retrieves every character
func (r *GormCharacterRepository) ListAll(ctx context.Context) ([]*world.Character, error) {
	var models []CharacterModel
	result := r.db.WithContext(ctx).Find(&models)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list characters: %w", result.Error)
	}
	return characterModelsToDomain(models), nil
}

func characterModelsToDomain(models []CharacterModel) []*world.Character {
	out := make([]*world.Character, 0, len(models))
	for i := range models {
		out = append(out, characterModelToDomain(&models[i]))
	}
	return out
}

func characterModelToDomain(model *CharacterModel) *world.Character {
	return &world.Character{
		ID:            model.ID,
		Name:          model.Name,
		Kind:          world.CharacterKind(model.Kind),
		SectorID:      model.SectorID,
		InHyperspace:  model.InHyperspace,
		LastActive:    model.LastActive,
		CorporationID: model.CorporationID,
		CreditsOnHand: model.CreditsOnHand,
		CreditsInBank: model.CreditsInBank,
		ShipID:        model.ShipID,
	}
}

func characterDomainToModel(c *world.Character) *CharacterModel {
	return &CharacterModel{
		ID:            c.ID,
		Name:          c.Name,
		Kind:          string(c.Kind),
		SectorID:      c.SectorID,
		InHyperspace:  c.InHyperspace,
		LastActive:    c.LastActive,
		CorporationID: c.CorporationID,
		CreditsOnHand: c.CreditsOnHand,
		CreditsInBank: c.CreditsInBank,
		ShipID:        c.ShipID,
	}
}
