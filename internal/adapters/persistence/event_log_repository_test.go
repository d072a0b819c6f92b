package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	"github.com/andrescamacho/tradewars-server/internal/domain/events"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

func appendEvent(t *testing.T, log *persistence.GormEventLog, sequence uint64, name string, recipients ...string) {
	t.Helper()
	err := log.Append(context.Background(), &events.Event{
		Name:      name,
		Payload:   map[string]interface{}{"sequence": sequence},
		Summary:   "test event",
		Sequence:  sequence,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}, recipients)
	require.NoError(t, err)
}

func TestEventLog_ListByCharacterFiltersRecipients(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	log := persistence.NewGormEventLog(db)
	appendEvent(t, log, 1, events.CharacterMoved, "char-a", "char-b")
	appendEvent(t, log, 2, events.TradeExecuted, "char-b")
	appendEvent(t, log, 3, events.ChatMessage, "char-a")

	// Act
	forA, err := log.ListByCharacter(context.Background(), "char-a", 0, 0)
	require.NoError(t, err)
	forB, err := log.ListByCharacter(context.Background(), "char-b", 0, 0)
	require.NoError(t, err)

	// Assert
	require.Len(t, forA, 2)
	assert.Equal(t, uint64(1), forA[0].Sequence)
	assert.Equal(t, uint64(3), forA[1].Sequence)
	assert.Equal(t, events.ChatMessage, forA[1].Name)
	require.Len(t, forB, 2)
}

func TestEventLog_ListByCharacterAfterSequenceAndLimit(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	log := persistence.NewGormEventLog(db)
	for seq := uint64(1); seq <= 5; seq++ {
		appendEvent(t, log, seq, events.ChatMessage, "char-a")
	}

	// Act
	after, err := log.ListByCharacter(context.Background(), "char-a", 2, 0)
	require.NoError(t, err)
	limited, err := log.ListByCharacter(context.Background(), "char-a", 0, 2)
	require.NoError(t, err)

	// Assert
	require.Len(t, after, 3)
	assert.Equal(t, uint64(3), after[0].Sequence)
	require.Len(t, limited, 2)
	assert.Equal(t, uint64(1), limited[0].Sequence)
	assert.Equal(t, uint64(2), limited[1].Sequence)
}

func TestEventLog_PayloadRoundTrips(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	log := persistence.NewGormEventLog(db)
	err := log.Append(context.Background(), &events.Event{
		Name:      events.TradeExecuted,
		Payload:   map[string]interface{}{"commodity": "ro", "units": float64(12)},
		Sequence:  1,
		Timestamp: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}, []string{"char-a"})
	require.NoError(t, err)

	// Act
	entries, err := log.ListByCharacter(context.Background(), "char-a", 0, 0)

	// Assert
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ro", entries[0].Payload["commodity"])
	assert.Equal(t, float64(12), entries[0].Payload["units"])
	assert.WithinDuration(t, time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC), entries[0].Timestamp, time.Second)
}

func TestEventLog_ResetTruncatesJournal(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	log := persistence.NewGormEventLog(db)
	appendEvent(t, log, 1, events.ChatMessage, "char-a")

	// Act
	require.NoError(t, log.Reset(context.Background()))

	// Assert
	entries, err := log.ListByCharacter(context.Background(), "char-a", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
