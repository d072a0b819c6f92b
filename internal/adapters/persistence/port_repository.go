package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

// GormPortRepository implements world.PortRepository using GORM
type GormPortRepository struct {
	db *gorm.DB
}

// NewGormPortRepository creates a new GORM port repository
func NewGormPortRepository(db *gorm.DB) *GormPortRepository {
	return &GormPortRepository{db: db}
}

// FindBySector retrieves the port state for a sector
func (r *GormPortRepository) FindBySector(ctx context.Context, sectorID int) (*world.Port, error) {
	var model PortModel
	result := r.db.WithContext(ctx).Where("sector_id = ?", sectorID).First(&model)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("port", strconv.Itoa(sectorID))
		}
		return nil, fmt.Errorf("failed to find port: %w", result.Error)
	}
	return portModelToDomain(&model)
}

// Save persists port state (upsert by sector id)
func (r *GormPortRepository) Save(ctx context.Context, port *world.Port) error {
	model, err := portDomainToModel(port)
	if err != nil {
		return err
	}
	if result := r.db.WithContext(ctx).Save(model); result.Error != nil {
		return fmt.Errorf("failed to save port: %w", result.Error)
	}
	return nil
}

func portModelToDomain(model *PortModel) (*world.Port, error) {
	stock, err := commodityMapFromJSON(model.Stock)
	if err != nil {
		return nil, fmt.Errorf("invalid stock for port %d: %w", model.SectorID, err)
	}
	capacity, err := commodityMapFromJSON(model.MaxCapacity)
	if err != nil {
		return nil, fmt.Errorf("invalid capacity for port %d: %w", model.SectorID, err)
	}
	return &world.Port{
		SectorID:    model.SectorID,
		Code:        model.Code,
		Stock:       stock,
		MaxCapacity: capacity,
	}, nil
}

func portDomainToModel(port *world.Port) (*PortModel, error) {
	stock, err := commodityMapToJSON(port.Stock)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stock for port %d: %w", port.SectorID, err)
	}
	capacity, err := commodityMapToJSON(port.MaxCapacity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal capacity for port %d: %w", port.SectorID, err)
	}
	return &PortModel{
		SectorID:    port.SectorID,
		Code:        port.Code,
		Stock:       stock,
		MaxCapacity: capacity,
	}, nil
}

func commodityMapFromJSON(raw string) (map[shared.Commodity]int, error) {
	if raw == "" {
		return map[shared.Commodity]int{}, nil
	}
	var m map[shared.Commodity]int
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func commodityMapToJSON(m map[shared.Commodity]int) (string, error) {
	if m == nil {
		m = map[shared.Commodity]int{}
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
