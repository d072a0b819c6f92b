package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/tradewars-server/internal/adapters/persistence"
	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
	"github.com/andrescamacho/tradewars-server/test/helpers"
)

func TestGarrisonRepository_SaveAndFindBySector(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGarrisonRepository(db)
	ctx := context.Background()

	garrison := &world.Garrison{
		SectorID:    7,
		OwnerID:     "char-1",
		Fighters:    40,
		Mode:        world.GarrisonToll,
		TollAmount:  25,
		TollBalance: 100,
	}

	// Act
	require.NoError(t, repo.Save(ctx, garrison))
	found, err := repo.FindBySector(ctx, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "char-1", found.OwnerID)
	assert.Equal(t, 40, found.Fighters)
	assert.Equal(t, world.GarrisonToll, found.Mode)
	assert.Equal(t, 25, found.TollAmount)
	assert.Equal(t, 100, found.TollBalance)
}

func TestGarrisonRepository_FindBySector_NotFound(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGarrisonRepository(db)

	// Act
	_, err := repo.FindBySector(context.Background(), 99)

	// Assert
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGarrisonRepository_DeleteRemovesGarrison(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGarrisonRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &world.Garrison{SectorID: 7, OwnerID: "char-1", Fighters: 40, Mode: world.GarrisonDefensive}))

	// Act
	require.NoError(t, repo.Delete(ctx, 7))

	// Assert
	_, err := repo.FindBySector(ctx, 7)
	var notFound *shared.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestGarrisonRepository_ListByOwner(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormGarrisonRepository(db)
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &world.Garrison{SectorID: 7, OwnerID: "char-1", Fighters: 40, Mode: world.GarrisonDefensive}))
	require.NoError(t, repo.Save(ctx, &world.Garrison{SectorID: 9, OwnerID: "char-1", Fighters: 10, Mode: world.GarrisonOffensive}))
	require.NoError(t, repo.Save(ctx, &world.Garrison{SectorID: 11, OwnerID: "char-2", Fighters: 5, Mode: world.GarrisonDefensive}))

	// Act
	owned, err := repo.ListByOwner(ctx, "char-1")

	// Assert
	require.NoError(t, err)
	assert.Len(t, owned, 2)
}
