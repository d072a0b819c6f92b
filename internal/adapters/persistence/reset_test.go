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

func TestResetter_WipesEveryTable(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	ctx := context.Background()
	characters := persistence.NewGormCharacterRepository(db)
	ships := persistence.NewGormShipRepository(db)
	garrisons := persistence.NewGormGarrisonRepository(db)

	require.NoError(t, characters.Save(ctx, &world.Character{ID: "char-1", Name: "Alice", Kind: world.CharacterKindHuman}))
	require.NoError(t, ships.Save(ctx, &world.Ship{ID: "ship-1", TypeName: "scout", OwnerKind: world.ShipOwnerCharacter, OwnerID: "char-1"}))
	require.NoError(t, garrisons.Save(ctx, &world.Garrison{SectorID: 7, OwnerID: "char-1", Fighters: 10, Mode: world.GarrisonDefensive}))

	// Act
	require.NoError(t, persistence.NewGormResetter(db).Reset(ctx))

	// Assert
	var notFound *shared.NotFoundError
	_, err := characters.FindByID(ctx, "char-1")
	assert.ErrorAs(t, err, &notFound)
	_, err = ships.FindByID(ctx, "ship-1")
	assert.ErrorAs(t, err, &notFound)
	_, err = garrisons.FindBySector(ctx, 7)
	assert.ErrorAs(t, err, &notFound)
}
