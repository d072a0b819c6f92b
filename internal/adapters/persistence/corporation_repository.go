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

// GormCorporationRepository implements world.CorporationRepository using GORM
type GormCorporationRepository struct {
	db *gorm.DB
}

// NewGormCorporationRepository creates a new GORM corporation repository
func NewGormCorporationRepository(db *gorm.DB) *GormCorporationRepository {
	return &GormCorporationRepository{db: db}
}

// FindByID retrieves a corporation by ID
func (r *GormCorporationRepository) FindByID(ctx context.Context, id string) (*world.Corporation, error) {
	var model CorporationModel
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("corporation", id)
		}
		return nil, fmt.Errorf("failed to find corporation: %w", result.Error)
	}
	return corporationModelToDomain(&model)
}

// FindByInviteCode retrieves a corporation by its current invite code
func (r *GormCorporationRepository) FindByInviteCode(ctx context.Context, code string) (*world.Corporation, error) {
	var model CorporationModel
	result := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("corporation", "invite:"+code)
		}
		return nil, fmt.Errorf("failed to find corporation by invite code: %w", result.Error)
	}
	return corporationModelToDomain(&model)
}

// Save persists a corporation (upsert by primary key)
func (r *GormCorporationRepository) Save(ctx context.Context, corp *world.Corporation) error {
	model, err := corporationDomainToModel(corp)
	if err != nil {
		return err
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save corporation: %w", result.Error)
	}
	return nil
}

// Delete removes a corporation
func (r *GormCorporationRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&CorporationModel{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete corporation: %w", result.Error)
	}
	return nil
}

func corporationModelToDomain(model *CorporationModel) (*world.Corporation, error) {
	members, err := stringListFromJSON(model.Members)
	if err != nil {
		return nil, fmt.Errorf("invalid member list for corporation %s: %w", model.ID, err)
	}
	ships, err := stringListFromJSON(model.Ships)
	if err != nil {
		return nil, fmt.Errorf("invalid ship list for corporation %s: %w", model.ID, err)
	}
	return &world.Corporation{
		ID:         model.ID,
		Name:       model.Name,
		InviteCode: model.InviteCode,
		FoundedAt:  model.FoundedAt,
		FounderID:  model.FounderID,
		Members:    members,
		Ships:      ships,
	}, nil
}

func corporationDomainToModel(c *world.Corporation) (*CorporationModel, error) {
	members, err := stringListToJSON(c.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal member list for corporation %s: %w", c.ID, err)
	}
	ships, err := stringListToJSON(c.Ships)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ship list for corporation %s: %w", c.ID, err)
	}
	return &CorporationModel{
		ID:         c.ID,
		Name:       c.Name,
		InviteCode: c.InviteCode,
		FoundedAt:  c.FoundedAt,
		FounderID:  c.FounderID,
		Members:    members,
		Ships:      ships,
	}, nil
}

func stringListFromJSON(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func stringListToJSON(list []string) (string, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
