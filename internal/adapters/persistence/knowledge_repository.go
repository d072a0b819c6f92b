package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormKnowledgeRepository implements world.KnowledgeRepository using GORM
type GormKnowledgeRepository struct {
	db *gorm.DB
}

// NewGormKnowledgeRepository creates a new GORM knowledge repository
func NewGormKnowledgeRepository(db *gorm.DB) *GormKnowledgeRepository {
	return &GormKnowledgeRepository{db: db}
}

// Find retrieves a character's map intel. A character with no intel yet
// gets an empty document, not an error.
func (r *GormKnowledgeRepository) Find(ctx context.Context, characterID string) (*world.Knowledge, error) {
	var model KnowledgeModel
	result := r.db.WithContext(ctx).Where("character_id = ?", characterID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return world.NewKnowledge(characterID), nil
		}
		return nil, fmt.Errorf("failed to find knowledge: %w", result.Error)
	}
	return knowledgeModelToDomain(&model)
}

// Save persists a character's map intel wholesale
func (r *GormKnowledgeRepository) Save(ctx context.Context, knowledge *world.Knowledge) error {
	model, err := knowledgeDomainToModel(knowledge)
	if err != nil {
		return err
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save knowledge: %w", result.Error)
	}
	return nil
}

func knowledgeModelToDomain(model *KnowledgeModel) (*world.Knowledge, error) {
	visited := map[int]world.SectorIntel{}
	if model.Visited != "" {
		if err := json.Unmarshal([]byte(model.Visited), &visited); err != nil {
			return nil, fmt.Errorf("invalid intel for character %s: %w", model.CharacterID, err)
		}
	}
	return &world.Knowledge{
		CharacterID: model.CharacterID,
		Visited:     visited,
	}, nil
}

func knowledgeDomainToModel(k *world.Knowledge) (*KnowledgeModel, error) {
	visited := k.Visited
	if visited == nil {
		visited = map[int]world.SectorIntel{}
	}
	raw, err := json.Marshal(visited)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal intel for character %s: %w", k.CharacterID, err)
	}
	return &KnowledgeModel{
		CharacterID: k.CharacterID,
		Visited:     string(raw),
	}, nil
}
