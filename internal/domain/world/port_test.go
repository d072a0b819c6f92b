package world_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/tradewars-server/internal/domain/shared"
	"github.com/andrescamacho/tradewars-server/internal/domain/world"
)

func TestPortCode_DrivesBuySellPolicy(t *testing.T) {
	port := world.NewPort(4, "SBB", 100)

	assert.True(t, port.Sells(shared.CommodityQuantumFoam))
	assert.False(t, port.Buys(shared.CommodityQuantumFoam))
	assert.True(t, port.Buys(shared.CommodityRareOre))
	assert.True(t, port.Buys(shared.CommodityNeutronSpice))
}

func TestNewPort_SoldCommoditiesStartFull(t *testing.T) {
	port := world.NewPort(4, "SBB", 100)

	assert.Equal(t, 100, port.Stock[shared.CommodityQuantumFoam])
	assert.Equal(t, 0, port.Stock[shared.CommodityRareOre])
	assert.Equal(t, 0, port.Stock[shared.CommodityNeutronSpice])
	for _, commodity := range shared.Commodities() {
		assert.Equal(t, 100, port.MaxCapacity[commodity])
	}
}

func TestDefaultPriceFunc_ScarcityRaisesPrice(t *testing.T) {
	assert.Equal(t, 5, world.DefaultPriceFunc(100, 100))
	assert.Equal(t, 13, world.DefaultPriceFunc(50, 100))
	assert.Equal(t, 20, world.DefaultPriceFunc(0, 100))
	assert.Equal(t, 0, world.DefaultPriceFunc(10, 0))
}

func TestPortCheckBounds(t *testing.T) {
	port := world.NewPort(4, "SBB", 100)
	assert.NoError(t, port.CheckBounds())

	port.Stock[shared.CommodityRareOre] = 101
	assert.Error(t, port.CheckBounds())

	port.Stock[shared.CommodityRareOre] = -1
	assert.Error(t, port.CheckBounds())
}
