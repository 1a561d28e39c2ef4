package world

import (
	"testing"

	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/stretchr/testify/assert"
)

func TestBlock_ZeroValueIsAir(t *testing.T) {
	var b Block

	assert.True(t, b.IsAir(), "Нулевой блок должен быть воздухом")
	assert.Equal(t, uint8(0), b.LightByte())
	assert.False(t, b.IsSolid())
	assert.False(t, b.IsFullyOpaque())
	assert.False(t, b.IsVisible())
}

func TestBlock_SetTypeCopiesAttributes(t *testing.T) {
	reg := block.NewDefaultRegistry()
	var b Block

	b.SetType(reg.GetTypeByName(block.StoneName))
	assert.Equal(t, uint8(3), b.TypeIndex())
	assert.True(t, b.IsFullyOpaque())
	assert.True(t, b.IsSolid())
	assert.True(t, b.IsVisible())

	b.SetType(reg.GetTypeByName(block.WaterName))
	assert.False(t, b.IsFullyOpaque(), "Вода пропускает свет")
	assert.False(t, b.IsSolid())
	assert.True(t, b.IsVisible())

	b.SetType(reg.Air())
	assert.True(t, b.IsAir())
	assert.False(t, b.IsVisible())
}

func TestBlock_LightNibbles(t *testing.T) {
	var b Block

	b.SetOutdoorLight(12)
	b.SetIndoorLight(5)
	assert.Equal(t, uint8(12), b.OutdoorLight())
	assert.Equal(t, uint8(5), b.IndoorLight())
	assert.Equal(t, uint8(0xC5), b.LightByte(), "Наружный свет в старшем полубайте")

	b.SetOutdoorLight(99)
	b.SetIndoorLight(-3)
	assert.Equal(t, uint8(15), b.OutdoorLight(), "Значение должно ограничиваться 15")
	assert.Equal(t, uint8(0), b.IndoorLight(), "Отрицательное значение должно ограничиваться 0")
}

func TestBlock_FlagsAreIndependent(t *testing.T) {
	var b Block

	b.SetIsPartOfSky(true)
	b.SetIsLightingDirty(true)
	assert.True(t, b.IsPartOfSky())
	assert.True(t, b.IsLightingDirty())
	assert.False(t, b.IsSolid())

	b.SetIsPartOfSky(false)
	assert.False(t, b.IsPartOfSky())
	assert.True(t, b.IsLightingDirty())
}
