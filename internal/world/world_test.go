package world

import (
	"testing"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorld_ValidatesSettings(t *testing.T) {
	reg := block.NewDefaultRegistry()

	settings := testSettings()
	settings.DeactivationRadius = settings.ActivationRadius
	_, err := NewWorld(reg, constantNoise(0), settings, Options{})
	assert.Error(t, err, "Радиус деактивации должен быть больше радиуса активации")

	settings = testSettings()
	settings.ActivationRadius = 0
	_, err = NewWorld(reg, constantNoise(0), settings, Options{})
	assert.Error(t, err)

	_, err = NewWorld(nil, constantNoise(0), testSettings(), Options{})
	assert.Error(t, err)

	_, err = NewWorld(reg, nil, testSettings(), Options{})
	assert.Error(t, err)

	w, err := NewWorld(reg, constantNoise(0), testSettings(), Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, w.ID())
	assert.Equal(t, 0, w.ActiveChunkCount())
}

func TestWorld_UpdateActivatesClosestChunkOnePerTick(t *testing.T) {
	w := newTestWorld(t, nil)
	reference := mgl64.Vec3{8, 8, 50}

	w.Update(reference)
	assert.Equal(t, 1, w.ActiveChunkCount(), "За тик активируется один чанк")
	assert.True(t, w.IsChunkActive(vec.Vec2{}), "Первым активируется чанк под опорной точкой")

	w.Update(reference)
	w.Update(reference)
	assert.Equal(t, 3, w.ActiveChunkCount())
	assert.Equal(t, uint64(3), w.Tick())
}

func TestWorld_ActivationFillsRadius(t *testing.T) {
	w := newTestWorld(t, nil)
	reference := mgl64.Vec3{8, 8, 50}

	for i := 0; i < 40; i++ {
		w.Update(reference)
	}

	for _, coords := range w.ActiveChunkCoords() {
		assert.Less(t, distanceSquaredXY(coords, reference), 40.0*40.0, "Чанк %v вне радиуса активации", coords)
	}
	// Центры на расстоянии 32 и меньше попадают в радиус 40
	assert.True(t, w.IsChunkActive(vec.Vec2{X: 2, Y: 0}))
	assert.True(t, w.IsChunkActive(vec.Vec2{X: -1, Y: -1}))
	assert.False(t, w.IsChunkActive(vec.Vec2{X: 3, Y: 0}), "Центр на расстоянии 48")
}

func TestWorld_HysteresisBand(t *testing.T) {
	w := newTestWorld(t, nil)
	// Центр чанка (0,0) - (8,8); расстояние до опорной точки 50 = (40 + 60) / 2
	reference := mgl64.Vec3{58, 8, 50}
	far := vec.Vec2{}

	for i := 0; i < 60; i++ {
		w.Update(reference)
	}
	assert.False(t, w.IsChunkActive(far), "Чанк в полосе гистерезиса не активируется")
	activeBefore := w.ActiveChunkCount()

	w.ActivateChunk(far)
	for i := 0; i < 10; i++ {
		w.Update(reference)
	}
	assert.True(t, w.IsChunkActive(far), "Чанк в полосе гистерезиса не деактивируется")
	assert.Equal(t, activeBefore+1, w.ActiveChunkCount())
}

func TestWorld_DeactivatesFarthestFirst(t *testing.T) {
	w := newTestWorld(t, nil)
	reference := mgl64.Vec3{8, 8, 50}

	w.ActivateChunk(vec.Vec2{})
	w.ActivateChunk(vec.Vec2{X: -5}) // расстояние 80
	w.ActivateChunk(vec.Vec2{X: -6}) // расстояние 96
	w.ActivateChunk(vec.Vec2{X: -3}) // расстояние 48, в полосе

	w.Update(reference)
	assert.False(t, w.IsChunkActive(vec.Vec2{X: -6}), "Самый дальний деактивируется первым")
	assert.True(t, w.IsChunkActive(vec.Vec2{X: -5}), "За тик деактивируется один чанк")

	w.Update(reference)
	assert.False(t, w.IsChunkActive(vec.Vec2{X: -5}))
	assert.True(t, w.IsChunkActive(vec.Vec2{X: -3}))
}

func TestWorld_ActivationPreconditions(t *testing.T) {
	w := newTestWorld(t, nil)

	w.ActivateChunk(vec.Vec2{X: 1, Y: 1})
	assert.Panics(t, func() { w.ActivateChunk(vec.Vec2{X: 1, Y: 1}) }, "Повторная активация - ошибка программы")
	assert.Panics(t, func() { w.DeactivateChunk(vec.Vec2{X: 9, Y: 9}) }, "Деактивация неактивного - ошибка программы")
}

func TestWorld_NeighborLinks(t *testing.T) {
	w := newTestWorld(t, nil)

	center := w.ActivateChunk(vec.Vec2{})
	east := w.ActivateChunk(vec.Vec2{X: 1})
	north := w.ActivateChunk(vec.Vec2{Y: 1})

	assert.Same(t, east, center.EastNeighbor())
	assert.Same(t, center, east.WestNeighbor())
	assert.Same(t, north, center.NorthNeighbor())
	assert.Same(t, center, north.SouthNeighbor())
	assert.Nil(t, center.WestNeighbor())
	assert.False(t, center.HasAllFourNeighbors())

	w.DeactivateChunk(vec.Vec2{X: 1})
	assert.Nil(t, center.EastNeighbor(), "Ссылка на выгруженный чанк должна быть снята")
	assert.Nil(t, east.WestNeighbor())
}

func TestWorld_SaveOnDeactivateAndReload(t *testing.T) {
	store := newMemoryStore()
	w := newTestWorld(t, store)
	stone := w.Registry().GetTypeByName(block.StoneName)

	w.ActivateChunk(vec.Vec2{X: 1})
	w.DeactivateChunk(vec.Vec2{X: 1})
	assert.Equal(t, 0, store.saves, "Неизменённый чанк не сохраняется")

	w.ActivateChunk(vec.Vec2{})
	locator := w.BlockLocatorForBlockCoords(vec.Vec3{X: 3, Y: 4, Z: 100})
	require.True(t, w.SetBlockType(locator, stone))
	assert.True(t, w.Chunk(vec.Vec2{}).NeedsToBeSaved())

	w.DeactivateChunk(vec.Vec2{})
	assert.Equal(t, 1, store.saves)
	require.Contains(t, store.data, vec.Vec2{})

	reloaded := w.ActivateChunk(vec.Vec2{})
	assert.Equal(t, stone.ID(), reloaded.BlockAt(vec.Vec3{X: 3, Y: 4, Z: 100}).TypeIndex(), "Изменение должно пережить выгрузку")
	assert.False(t, reloaded.NeedsToBeSaved())
}

func TestWorld_CorruptStoredChunkIsRegenerated(t *testing.T) {
	store := newMemoryStore()
	store.data[vec.Vec2{}] = []byte("garbage")

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	w, err := NewWorld(block.NewDefaultRegistry(), constantNoise(0), testSettings(), Options{Store: store, Metrics: metrics})
	require.NoError(t, err)

	chunk := w.ActivateChunk(vec.Vec2{})
	assert.Equal(t, 29, chunk.HighestSolidBlockZ(0, 0), "Чанк должен быть сгенерирован")
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.rejectedLoads))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.activations.WithLabelValues(SourceGenerated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.activeChunks))
}

func TestWorld_SaveFailureStillDeactivates(t *testing.T) {
	store := newMemoryStore()
	w := newTestWorld(t, store)

	chunk := w.ActivateChunk(vec.Vec2{})
	chunk.SetNeedsToBeSaved(true)
	store.failErr = errStoreDown

	w.DeactivateChunk(vec.Vec2{})
	assert.False(t, w.IsChunkActive(vec.Vec2{}))
	assert.Empty(t, store.data)
}

func TestWorld_CloseSavesDirtyChunks(t *testing.T) {
	store := newMemoryStore()
	w := newTestWorld(t, store)

	w.ActivateChunk(vec.Vec2{}).SetNeedsToBeSaved(true)
	w.ActivateChunk(vec.Vec2{X: 1})
	w.ActivateChunk(vec.Vec2{Y: -1}).SetNeedsToBeSaved(true)

	require.NoError(t, w.Close())
	assert.Equal(t, 2, store.saves)
	assert.Equal(t, 0, w.ActiveChunkCount())

	store.failErr = errStoreDown
	w.ActivateChunk(vec.Vec2{X: 5}).SetNeedsToBeSaved(true)
	assert.ErrorIs(t, w.Close(), errStoreDown)
}

func TestWorld_PositionQueries(t *testing.T) {
	w := newTestWorld(t, nil)
	w.ActivateChunk(vec.Vec2{X: -1, Y: -1})

	assert.Equal(t, vec.Vec2{X: -1, Y: -1}, w.ChunkCoordsForPosition(mgl64.Vec3{-0.5, -16, 3}))
	assert.Equal(t, vec.Vec2{X: 1, Y: 0}, w.ChunkCoordsForPosition(mgl64.Vec3{16, 15.9, 3}))

	require.NotNil(t, w.ChunkContainingPosition(mgl64.Vec3{-3, -3, 0}))
	assert.Nil(t, w.ChunkContainingPosition(mgl64.Vec3{3, 3, 0}))

	locator := w.BlockLocatorForPosition(mgl64.Vec3{-0.5, -0.5, 10.2})
	require.True(t, locator.IsValid())
	assert.Equal(t, vec.Vec3{X: 15, Y: 15, Z: 10}, locator.Coords())

	assert.False(t, w.BlockLocatorForPosition(mgl64.Vec3{-0.5, -0.5, 300}).IsValid())
	assert.False(t, w.BlockLocatorForPosition(mgl64.Vec3{-0.5, -0.5, -1}).IsValid())
	assert.False(t, w.BlockLocatorForPosition(mgl64.Vec3{5, 5, 10}).IsValid(), "Чанк не активен")

	height, ok := w.HeightAt(-1, -1)
	assert.True(t, ok)
	assert.Equal(t, 30, height)

	_, ok = w.HeightAt(100, 100)
	assert.False(t, ok)
}

func TestWorld_Raycast(t *testing.T) {
	w := newTestWorld(t, nil)
	w.ActivateChunk(vec.Vec2{})

	t.Run("попадание сверху", func(t *testing.T) {
		result := w.Raycast(mgl64.Vec3{8.5, 8.5, 100}, mgl64.Vec3{0, 0, -2}, 200)

		require.True(t, result.DidImpact)
		assert.Equal(t, vec.Vec3{X: 8, Y: 8, Z: 29}, result.ImpactBlock.Coords())
		assert.InDelta(t, 70, result.ImpactDistance, 1e-9)
		assert.InDelta(t, 0.35, result.ImpactFraction, 1e-9)
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, result.ImpactNormal)
		assert.InDelta(t, 30, result.End.Z(), 1e-9)
	})

	t.Run("луч не достаёт", func(t *testing.T) {
		result := w.Raycast(mgl64.Vec3{8.5, 8.5, 100}, mgl64.Vec3{0, 0, -1}, 50)

		assert.False(t, result.DidImpact)
		assert.Equal(t, 1.0, result.ImpactFraction)
		assert.InDelta(t, 50, result.End.Z(), 1e-9)
	})

	t.Run("наклонный луч в грань", func(t *testing.T) {
		result := w.Raycast(mgl64.Vec3{2.5, 8.5, 30.5}, mgl64.Vec3{1, 0, -1}, 10)

		require.True(t, result.DidImpact)
		assert.Equal(t, 29, result.ImpactBlock.Coords().Z)
		assert.Equal(t, mgl64.Vec3{0, 0, 1}, result.ImpactNormal)
	})

	t.Run("старт внутри твёрдого блока", func(t *testing.T) {
		result := w.Raycast(mgl64.Vec3{8.5, 8.5, 10.5}, mgl64.Vec3{0, 0, 1}, 10)

		require.True(t, result.DidImpact)
		assert.Equal(t, 0.0, result.ImpactFraction)
	})

	t.Run("нулевое направление", func(t *testing.T) {
		result := w.Raycast(mgl64.Vec3{8.5, 8.5, 100}, mgl64.Vec3{}, 10)
		assert.False(t, result.DidImpact)
	})
}

func TestWorld_SkyLighting(t *testing.T) {
	w := newTestWorld(t, nil)
	w.ActivateChunk(vec.Vec2{})
	w.UpdateLighting()

	at := func(x, y, z int) *Block {
		return w.BlockLocatorForBlockCoords(vec.Vec3{X: x, Y: y, Z: z}).Block()
	}

	assert.True(t, at(8, 8, 30).IsPartOfSky())
	assert.Equal(t, uint8(15), at(8, 8, 30).OutdoorLight())
	assert.False(t, at(8, 8, 29).IsPartOfSky(), "Трава закрывает небо")

	t.Run("раскопка открывает небо", func(t *testing.T) {
		air := w.Registry().Air()
		w.SetBlockType(w.BlockLocatorForBlockCoords(vec.Vec3{X: 8, Y: 8, Z: 29}), air)
		w.UpdateLighting()

		assert.True(t, at(8, 8, 29).IsPartOfSky())
		assert.Equal(t, uint8(15), at(8, 8, 29).OutdoorLight())
		assert.Equal(t, 0, w.PendingLightingCount())
	})

	t.Run("крыша закрывает столбец", func(t *testing.T) {
		stone := w.Registry().GetTypeByName(block.StoneName)
		w.SetBlockType(w.BlockLocatorForBlockCoords(vec.Vec3{X: 4, Y: 4, Z: 40}), stone)
		w.UpdateLighting()

		below := at(4, 4, 35)
		assert.False(t, below.IsPartOfSky())
		assert.Equal(t, uint8(14), below.OutdoorLight(), "Свет приходит сбоку от неба")
		assert.Equal(t, uint8(0), at(4, 4, 40).OutdoorLight())
	})
}

func TestWorld_LightSourcePropagation(t *testing.T) {
	w := newTestWorld(t, nil)
	w.ActivateChunk(vec.Vec2{})
	w.UpdateLighting()

	cave := w.BlockLocatorForBlockCoords(vec.Vec3{X: 8, Y: 8, Z: 10})
	w.SetBlockType(cave, w.Registry().Air())
	w.UpdateLighting()
	assert.Equal(t, uint8(0), cave.Block().OutdoorLight(), "Закрытая полость тёмная")
	assert.Equal(t, uint8(0), cave.Block().IndoorLight())

	w.Chunk(vec.Vec2{}).SetIsMeshDirty(false)
	glow := w.BlockLocatorForBlockCoords(vec.Vec3{X: 8, Y: 8, Z: 11})
	w.SetBlockType(glow, w.Registry().GetTypeByName(block.GlowstoneName))
	w.UpdateLighting()

	assert.Equal(t, uint8(12), glow.Block().IndoorLight())
	assert.Equal(t, uint8(11), cave.Block().IndoorLight(), "Свет источника ослабевает на 1")
	assert.True(t, w.Chunk(vec.Vec2{}).IsMeshDirty())
}

func TestWorld_UpdateBuildsMeshesOnlyWithAllNeighbors(t *testing.T) {
	settings := testSettings()
	settings.ActivationRadius = 1
	settings.DeactivationRadius = 1000
	settings.MeshesPerTick = 1
	w, err := NewWorld(block.NewDefaultRegistry(), constantNoise(0), settings, Options{})
	require.NoError(t, err)

	for y := -1; y <= 1; y++ {
		for x := -1; x <= 1; x++ {
			w.ActivateChunk(vec.Vec2{X: x, Y: y})
		}
	}

	w.Update(mgl64.Vec3{8, 8, 50})

	assert.False(t, w.Chunk(vec.Vec2{}).IsMeshDirty(), "Центральный чанк имеет всех соседей")
	assert.NotNil(t, w.Chunk(vec.Vec2{}).Mesh())
	assert.True(t, w.Chunk(vec.Vec2{X: 1}).IsMeshDirty(), "Краевой чанк ждёт соседей")
	assert.Equal(t, 9, w.ActiveChunkCount())

	stats := w.Stats()
	assert.Equal(t, 9, stats.ActiveChunks)
	assert.Equal(t, 8, stats.DirtyMeshes)
	assert.Equal(t, 0, stats.UnsavedChunks)
}

func TestWorld_DeactivationPurgesLightingQueue(t *testing.T) {
	w := newTestWorld(t, nil)
	chunk := w.ActivateChunk(vec.Vec2{})
	w.ActivateChunk(vec.Vec2{X: 1})
	w.UpdateLighting()

	w.AddBlockToDirtyLightingList(NewBlockLocator(chunk, BlockIndexFromCoords(vec.Vec3{X: 1, Y: 1, Z: 100})))
	require.Equal(t, 1, w.PendingLightingCount())

	w.DeactivateChunk(vec.Vec2{})
	assert.Equal(t, 0, w.PendingLightingCount())
	w.UpdateLighting()
}
