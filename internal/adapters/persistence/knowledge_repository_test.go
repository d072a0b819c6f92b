package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

func TestKnowledgeRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormKnowledgeRepository(db)
	ctx := context.Background()

	knowledge := world.NewKnowledge("char-1")
	knowledge.Record(7, world.SectorIntel{
		LastVisited: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		PortCode:    "SBB",
		Adjacent:    []int{6, 8},
	})

	// Act
	require.NoError(t, repo.Save(ctx, knowledge))
	found, err := repo.Find(ctx, "char-1")

	// Assert
	require.NoError(t, err)
	intel, ok := found.Visited[7]
	require.True(t, ok)
	assert.Equal(t, "SBB", intel.PortCode)
	assert.Equal(t, []int{6, 8}, intel.Adjacent)
}

func TestKnowledgeRepository_FindUnknownCharacterReturnsEmptyIntel(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormKnowledgeRepository(db)

	// Act
	found, err := repo.Find(context.Background(), "char-new")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "char-new", found.CharacterID)
	assert.Empty(t, found.Visited)
}

func TestKnowledgeRepository_SaveReplacesIntelWholesale(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormKnowledgeRepository(db)
	ctx := context.Background()

	knowledge := world.NewKnowledge("char-1")
	knowledge.Record(7, world.SectorIntel{PortCode: "SBB"})
	require.NoError(t, repo.Save(ctx, knowledge))

	// Act
	knowledge.Record(8, world.SectorIntel{PortCode: "BSS"})
	require.NoError(t, repo.Save(ctx, knowledge))

	// Assert
	found, err := repo.Find(ctx, "char-1")
	require.NoError(t, err)
	assert.Len(t, found.Visited, 2)
}
