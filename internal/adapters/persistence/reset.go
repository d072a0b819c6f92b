package persistence

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// GormResetter implements world.Resetter by truncating every table. The
// admin test_reset command is its only caller.
type GormResetter struct {
	db *gorm.DB
}

// NewGormResetter creates a new GORM resetter
func NewGormResetter(db *gorm.DB) *GormResetter {
	return &GormResetter{db: db}
}

// Reset wipes all world state
func (r *GormResetter) Reset(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range AllModels() {
			if result := tx.Where("1 = 1").Delete(model); result.Error != nil {
				return fmt.Errorf("failed to reset table: %w", result.Error)
			}
		}
		return nil
	})
}
