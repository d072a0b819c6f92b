package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

func TestCharacterRepository_SaveAndFindByID(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCharacterRepository(db)
	ctx := context.Background()

	character := &world.Character{
		ID:            "char-1",
		Name:          "Alice",
		Kind:          world.CharacterKindHuman,
		SectorID:      7,
		LastActive:    time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		CorporationID: "corp-1",
		CreditsOnHand: 1500,
		CreditsInBank: 300,
		ShipID:        "ship-1",
	}

	// Act
	err := repo.Save(ctx, character)
	require.NoError(t, err)
	found, err := repo.FindByID(ctx, "char-1")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "Alice", found.Name)
	assert.Equal(t, world.CharacterKindHuman, found.Kind)
	assert.Equal(t, 7, found.SectorID)
	assert.Equal(t, "corp-1", found.CorporationID)
	assert.Equal(t, 1500, found.CreditsOnHand)
	assert.Equal(t, 300, found.CreditsInBank)
	assert.Equal(t, "ship-1", found.ShipID)
	assert.WithinDuration(t, character.LastActive, found.LastActive, time.Second)
}

func TestCharacterRepository_FindByID_NotFound(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCharacterRepository(db)

	// Act
	_, err := repo.FindByID(context.Background(), "char-missing")

	// Assert
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 404, shared.StatusOf(err))
}

func TestCharacterRepository_SaveIsUpsert(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCharacterRepository(db)
	ctx := context.Background()

	character := &world.Character{ID: "char-1", Name: "Alice", Kind: world.CharacterKindHuman, SectorID: 1, CreditsOnHand: 100}
	require.NoError(t, repo.Save(ctx, character))

	// Act
	character.SectorID = 5
	character.CreditsOnHand = 50
	require.NoError(t, repo.Save(ctx, character))

	// Assert
	found, err := repo.FindByID(ctx, "char-1")
	require.NoError(t, err)
	assert.Equal(t, 5, found.SectorID)
	assert.Equal(t, 50, found.CreditsOnHand)
}

func TestCharacterRepository_Exists(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCharacterRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &world.Character{ID: "char-1", Name: "Alice", Kind: world.CharacterKindHuman}))

	// Act / Assert
	exists, err := repo.Exists(ctx, "char-1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "char-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCharacterRepository_ListBySectorAndCorporation(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormCharacterRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &world.Character{ID: "char-1", Name: "Alice", Kind: world.CharacterKindHuman, SectorID: 7, CorporationID: "corp-1"}))
	require.NoError(t, repo.Save(ctx, &world.Character{ID: "char-2", Name: "Bob", Kind: world.CharacterKindHuman, SectorID: 7}))
	require.NoError(t, repo.Save(ctx, &world.Character{ID: "char-3", Name: "Carol", Kind: world.CharacterKindHuman, SectorID: 9, CorporationID: "corp-1"}))

	// Act
	inSector, err := repo.ListBySector(ctx, 7)
	require.NoError(t, err)
	inCorp, err := repo.ListByCorporation(ctx, "corp-1")
	require.NoError(t, err)
	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	// Assert
	assert.Len(t, inSector, 2)
	assert.Len(t, inCorp, 2)
	assert.Len(t, all, 3)
}
