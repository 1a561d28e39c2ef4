package block

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTypesContiguous(t *testing.T) {
	r := NewDefaultRegistry()

	types := r.Types()
	require.Equal(t, r.Count(), len(types))
	for i, typ := range types {
		assert.Equal(t, i, typ.Index, "индексы встроенных типов должны идти подряд с нуля")
	}

	air := r.Air()
	assert.Equal(t, AirName, air.Name)
	assert.True(t, air.IsAir())
	assert.False(t, air.IsSolid)
	assert.False(t, air.IsFullyOpaque)

	stone := r.GetTypeByName(StoneName)
	assert.Equal(t, uint8(3), stone.ID())
	assert.Same(t, stone, r.GetTypeByIndex(3))
}

func TestInitializeTypesTwicePanics(t *testing.T) {
	r := NewDefaultRegistry()
	assert.Panics(t, func() { r.InitializeTypes() })
}

func TestAddBlockTypeIntegrityChecks(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Panics(t, func() { r.AddBlockType(Type{Name: StoneName, Index: 100}) }, "дубликат имени")
	assert.Panics(t, func() { r.AddBlockType(Type{Name: "Brick", Index: 3}) }, "дубликат индекса")
	assert.Panics(t, func() { r.AddBlockType(Type{Name: "", Index: 100}) }, "пустое имя")
	assert.Panics(t, func() { r.AddBlockType(Type{Name: "Brick", Index: MaxBlockTypes}) }, "индекс вне диапазона")
	assert.Panics(t, func() { r.AddBlockType(Type{Name: "Brick", Index: -1}) }, "отрицательный индекс")

	r.AddBlockType(Type{Name: "Brick", Index: 200, LightEmission: 40})
	brick := r.GetTypeByName("Brick")
	assert.Equal(t, uint8(MaxLightLevel), brick.LightEmission, "свечение ограничивается 15")
}

func TestLookups(t *testing.T) {
	r := NewDefaultRegistry()

	assert.Nil(t, r.GetTypeByIndex(250), "незанятый слот возвращает nil")
	assert.Panics(t, func() { r.GetTypeByIndex(MaxBlockTypes) })
	assert.Panics(t, func() { r.GetTypeByIndex(-1) })
	assert.Panics(t, func() { r.GetTypeByName("Unobtainium") })

	_, ok := r.LookupByIndex(250)
	assert.False(t, ok)
	grass, ok := r.LookupByName(GrassName)
	require.True(t, ok)
	assert.Equal(t, 1, grass.Index)
	_, ok = r.LookupByName("Unobtainium")
	assert.False(t, ok)
}

func TestSpriteSheetUVs(t *testing.T) {
	sheet := SpriteSheet{Columns: 4, Rows: 2}

	first := sheet.UVs(0)
	assert.InDelta(t, 0.0, first.Mins.X(), 1e-6)
	assert.InDelta(t, 0.5, first.Mins.Y(), 1e-6)
	assert.InDelta(t, 0.25, first.Maxs.X(), 1e-6)
	assert.InDelta(t, 1.0, first.Maxs.Y(), 1e-6)

	sixth := sheet.UVs(5)
	assert.InDelta(t, 0.25, sixth.Mins.X(), 1e-6)
	assert.InDelta(t, 0.0, sixth.Mins.Y(), 1e-6)

	assert.Equal(t, AABB2{}, SpriteSheet{}.UVs(3))
}

const definitionsYAML = `
sprite_sheet:
  columns: 16
  rows: 16
blocks:
  - name: Cobblestone
    index: 10
    top: 1
    side: 1
    bottom: 1
    opaque: true
    solid: true
  - name: Lantern
    index: 11
    top: 2
    side: 2
    bottom: 2
    solid: true
    emission: 14
`

func TestLoadDefinitions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(definitionsYAML), 0644))

	r := NewDefaultRegistry()
	before := r.Count()
	require.NoError(t, r.LoadDefinitions(path))
	assert.Equal(t, before+2, r.Count())

	lantern := r.GetTypeByName("Lantern")
	assert.Equal(t, 11, lantern.Index)
	assert.Equal(t, uint8(14), lantern.LightEmission)
	assert.False(t, lantern.IsFullyOpaque)
	assert.Equal(t, SpriteSheet{Columns: 16, Rows: 16}.UVs(2), lantern.SideUVs)
}

func TestLoadDefinitionsRejectsBadData(t *testing.T) {
	cases := map[string]string{
		"дубликат встроенного имени": "blocks:\n  - {name: Stone, index: 40}\n",
		"дубликат индекса в файле":   "blocks:\n  - {name: A, index: 40}\n  - {name: B, index: 40}\n",
		"занятый индекс":             "blocks:\n  - {name: A, index: 2}\n",
		"без имени":                  "blocks:\n  - {index: 41}\n",
		"индекс вне диапазона":       "blocks:\n  - {name: A, index: 300}\n",
		"свечение вне диапазона":     "blocks:\n  - {name: A, index: 42, emission: 16}\n",
		"сломанный YAML":             "blocks: [",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewDefaultRegistry()
			before := r.Count()
			assert.Error(t, r.LoadDefinitionsFromBytes([]byte(doc)))
			assert.Equal(t, before, r.Count(), "таблица не должна меняться при ошибке")
		})
	}

	assert.Error(t, NewRegistry().LoadDefinitions(filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestRegistry_ShippedDefinitions(t *testing.T) {
	r := NewDefaultRegistry()
	require.NoError(t, r.LoadDefinitions(filepath.Join("..", "..", "..", "configs", "blocks.yaml")))

	lantern := r.GetTypeByName("Lantern")
	assert.Equal(t, 9, lantern.Index)
	assert.Equal(t, uint8(14), lantern.LightEmission)
	assert.False(t, lantern.IsFullyOpaque)
}
