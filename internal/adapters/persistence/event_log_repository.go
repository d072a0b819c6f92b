package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/tradewars-server/internal/domain/events"
)

// GormEventLog implements events.Log using GORM. Recipients are stored as
// a JSON list and matched with a substring scan; the journal is an audit
// trail, not a hot path.
type GormEventLog struct {
	db *gorm.DB
}

// NewGormEventLog creates a new GORM event journal
func NewGormEventLog(db *gorm.DB) *GormEventLog {
	return &GormEventLog{db: db}
}

// Append journals an emitted event with its resolved recipient list
func (r *GormEventLog) Append(ctx context.Context, event *events.Event, recipients []string) error {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for event %d: %w", event.Sequence, err)
	}
	recipientList, err := stringListToJSON(recipients)
	if err != nil {
		return fmt.Errorf("failed to marshal recipients for event %d: %w", event.Sequence, err)
	}
	model := &EventLogModel{
		Sequence:   event.Sequence,
		Name:       event.Name,
		Payload:    string(payload),
		Summary:    event.Summary,
		Recipients: recipientList,
		Timestamp:  event.Timestamp,
	}
	if result := r.db.WithContext(ctx).Create(model); result.Error != nil {
		return fmt.Errorf("failed to append event: %w", result.Error)
	}
	return nil
}

// ListByCharacter retrieves journaled events addressed to a character,
// ordered by sequence, starting strictly after afterSequence.
func (r *GormEventLog) ListByCharacter(ctx context.Context, characterID string, afterSequence uint64, limit int) ([]*events.Event, error) {
	query := r.db.WithContext(ctx).
		Where("sequence > ?", afterSequence).
		Where("recipients LIKE ?", `%"`+characterID+`"%`).
		Order("sequence asc")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []EventLogModel
	if result := query.Find(&models); result.Error != nil {
		return nil, fmt.Errorf("failed to list events: %w", result.Error)
	}
	out := make([]*events.Event, 0, len(models))
	for i := range models {
		event, err := eventModelToDomain(&models[i])
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

// Reset truncates the journal
func (r *GormEventLog) Reset(ctx context.Context) error {
	result := r.db.WithContext(ctx).Where("1 = 1").Delete(&EventLogModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to reset event log: %w", result.Error)
	}
	return nil
}

func eventModelToDomain(model *EventLogModel) (*events.Event, error) {
	payload := map[string]interface{}{}
	if model.Payload != "" {
		if err := json.Unmarshal([]byte(model.Payload), &payload); err != nil {
			return nil, fmt.Errorf("invalid payload for event %d: %w", model.Sequence, err)
		}
	}
	return &events.Event{
		Name:      model.Name,
		Payload:   payload,
		Summary:   model.Summary,
		Sequence:  model.Sequence,
		Timestamp: model.Timestamp,
	}, nil
}
