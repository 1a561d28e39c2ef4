package world

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/annel0/voxelworld/internal/logging"
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// Settings параметры стриминга и генерации мира
type Settings struct {
	ActivationRadius   float64 // Чанки ближе этого расстояния активируются
	DeactivationRadius float64 // Чанки дальше этого расстояния деактивируются
	MeshesPerTick      int     // Сколько мешей перестраивается за тик
	Terrain            TerrainParams
}

// DefaultSettings возвращает настройки по умолчанию
func DefaultSettings() Settings {
	return Settings{
		ActivationRadius:   160,
		DeactivationRadius: 192,
		MeshesPerTick:      1,
		Terrain:            DefaultTerrainParams(),
	}
}

// Validate проверяет согласованность настроек
func (s Settings) Validate() error {
	if s.ActivationRadius <= 0 {
		return fmt.Errorf("activation radius must be positive, got %v", s.ActivationRadius)
	}
	if s.DeactivationRadius <= s.ActivationRadius {
		return fmt.Errorf("deactivation radius %v must be larger than activation radius %v",
			s.DeactivationRadius, s.ActivationRadius)
	}
	if s.MeshesPerTick < 0 {
		return fmt.Errorf("meshes per tick must not be negative, got %d", s.MeshesPerTick)
	}
	return nil
}

// Options необязательные зависимости мира
type Options struct {
	Store   ChunkStore      // Хранилище чанков; nil - мир не сохраняется
	Metrics *Metrics        // Метрики; nil - без метрик
	Logger  *logging.Logger // Логгер; nil - логгер по умолчанию
}

// Stats снимок состояния мира
type Stats struct {
	WorldID         string `json:"world_id"`
	Tick            uint64 `json:"tick"`
	ActiveChunks    int    `json:"active_chunks"`
	DirtyMeshes     int    `json:"dirty_meshes"`
	UnsavedChunks   int    `json:"unsaved_chunks"`
	PendingLighting int    `json:"pending_lighting"`
}

// World владеет активными чанками и стримит их вокруг опорной точки.
// Все методы вызываются из одного потока симуляции.
type World struct {
	id       string
	settings Settings
	registry *block.Registry
	noise    NoiseSource
	store    ChunkStore
	metrics  *Metrics
	logger   *logging.Logger

	activeChunks map[vec.Vec2]*Chunk

	dirtyLighting     []BlockLocator // FIFO очередь блоков на пересчёт света
	dirtyLightingHead int

	tick uint64
}

// NewWorld создаёт пустой мир
func NewWorld(registry *block.Registry, noise NoiseSource, settings Settings, opts Options) (*World, error) {
	if registry == nil {
		return nil, errors.New("world: registry is required")
	}
	if noise == nil {
		return nil, errors.New("world: noise source is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.Default()
	}

	w := &World{
		id:           uuid.NewString(),
		settings:     settings,
		registry:     registry,
		noise:        noise,
		store:        opts.Store,
		metrics:      opts.Metrics,
		logger:       logger,
		activeChunks: make(map[vec.Vec2]*Chunk),
	}

	w.logger.Info("🌍 Мир %s создан: активация %.0f, деактивация %.0f", w.id, settings.ActivationRadius, settings.DeactivationRadius)
	return w, nil
}

// ID возвращает идентификатор экземпляра мира
func (w *World) ID() string {
	return w.id
}

// Settings возвращает настройки мира
func (w *World) Settings() Settings {
	return w.settings
}

// Registry возвращает таблицу типов блоков
func (w *World) Registry() *block.Registry {
	return w.registry
}

// Update выполняет один тик: активирует не больше одного чанка, пересчитывает свет,
// перестраивает ближайшие меши и деактивирует не больше одного чанка
func (w *World) Update(reference mgl64.Vec3) {
	w.tick++

	w.checkToActivateChunks(reference)
	w.UpdateLighting()
	w.checkToBuildChunkMeshes(reference)
	w.checkToDeactivateChunks(reference)
}

// Tick возвращает номер последнего тика
func (w *World) Tick() uint64 {
	return w.tick
}

// ActiveChunkCount возвращает количество активных чанков
func (w *World) ActiveChunkCount() int {
	return len(w.activeChunks)
}

// ActiveChunkCoords возвращает координаты активных чанков в порядке (Y, X)
func (w *World) ActiveChunkCoords() []vec.Vec2 {
	coords := make([]vec.Vec2, 0, len(w.activeChunks))
	for c := range w.activeChunks {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool { return coords[i].Less(coords[j]) })
	return coords
}

// Chunk возвращает активный чанк или nil
func (w *World) Chunk(coords vec.Vec2) *Chunk {
	return w.activeChunks[coords]
}

// IsChunkActive проверяет, активен ли чанк
func (w *World) IsChunkActive(coords vec.Vec2) bool {
	_, ok := w.activeChunks[coords]
	return ok
}

// Stats возвращает снимок состояния мира
func (w *World) Stats() Stats {
	stats := Stats{
		WorldID:         w.id,
		Tick:            w.tick,
		ActiveChunks:    len(w.activeChunks),
		PendingLighting: len(w.dirtyLighting) - w.dirtyLightingHead,
	}
	for _, c := range w.activeChunks {
		if c.IsMeshDirty() {
			stats.DirtyMeshes++
		}
		if c.NeedsToBeSaved() {
			stats.UnsavedChunks++
		}
	}
	return stats
}

// ChunkCoordsForPosition возвращает координаты чанка, содержащего мировую позицию
func (w *World) ChunkCoordsForPosition(position mgl64.Vec3) vec.Vec2 {
	return vec.Vec2{
		X: int(math.Floor(position.X())) >> ChunkBitsX,
		Y: int(math.Floor(position.Y())) >> ChunkBitsY,
	}
}

// ChunkContainingPosition возвращает активный чанк, содержащий позицию, или nil
func (w *World) ChunkContainingPosition(position mgl64.Vec3) *Chunk {
	return w.activeChunks[w.ChunkCoordsForPosition(position)]
}

// BlockLocatorForPosition возвращает локатор блока, содержащего позицию.
// Невалидный, если чанк не активен или позиция выше/ниже мира.
func (w *World) BlockLocatorForPosition(position mgl64.Vec3) BlockLocator {
	return w.BlockLocatorForBlockCoords(vec.FloorVec3(position.X(), position.Y(), position.Z()))
}

// BlockLocatorForBlockCoords возвращает локатор по целочисленным мировым координатам блока
func (w *World) BlockLocatorForBlockCoords(coords vec.Vec3) BlockLocator {
	if coords.Z < 0 || coords.Z >= ChunkDimensionsZ {
		return InvalidBlockLocator()
	}

	chunk := w.activeChunks[vec.Vec2{X: coords.X >> ChunkBitsX, Y: coords.Y >> ChunkBitsY}]
	if chunk == nil {
		return InvalidBlockLocator()
	}

	local := vec.Vec3{X: coords.X & ChunkXMask, Y: coords.Y & (ChunkDimensionsY - 1), Z: coords.Z}
	return NewBlockLocator(chunk, BlockIndexFromCoords(local))
}

// HeightAt возвращает высоту поверхности (z над верхним твёрдым блоком) мирового столбца.
// ok=false, если столбец не загружен.
func (w *World) HeightAt(x, y int) (height int, ok bool) {
	chunk := w.activeChunks[vec.Vec2{X: x >> ChunkBitsX, Y: y >> ChunkBitsY}]
	if chunk == nil {
		return 0, false
	}
	return chunk.HighestSolidBlockZ(x&ChunkXMask, y&(ChunkDimensionsY-1)) + 1, true
}

// ActivateChunk загружает или генерирует чанк и делает его активным.
// Активация уже активного чанка - ошибка программы.
func (w *World) ActivateChunk(coords vec.Vec2) *Chunk {
	if _, exists := w.activeChunks[coords]; exists {
		panic(fmt.Sprintf("world: chunk %v is already active", coords))
	}

	chunk := NewChunk(coords, w.registry)
	source := SourceGenerated

	if w.loadChunk(chunk) {
		source = SourceStore
	} else {
		chunk.GenerateWithPerlinNoise(w.noise, w.settings.Terrain)
	}

	w.addChunkToActiveList(chunk)
	w.initializeLightingForChunk(chunk)

	w.metrics.chunkActivated(source)
	w.metrics.setActiveChunks(len(w.activeChunks))
	w.logger.Debug("Чанк %v активирован (%s), активных: %d", coords, source, len(w.activeChunks))
	return chunk
}

// loadChunk пытается загрузить чанк из хранилища
func (w *World) loadChunk(chunk *Chunk) bool {
	if w.store == nil {
		return false
	}

	data, found, err := w.store.Load(chunk.coords)
	if err != nil {
		w.logger.Warn("Чанк %v: ошибка загрузки из хранилища: %v", chunk.coords, err)
		return false
	}
	if !found {
		return false
	}

	if err := chunk.DecodeRLE(data); err != nil {
		w.metrics.loadRejected()
		w.logger.Warn("Чанк %v: сохранённые данные отклонены, чанк будет сгенерирован: %v", chunk.coords, err)
		return false
	}
	return true
}

// DeactivateChunk сохраняет (при необходимости) и выгружает чанк.
// Деактивация неактивного чанка - ошибка программы.
func (w *World) DeactivateChunk(coords vec.Vec2) {
	chunk, exists := w.activeChunks[coords]
	if !exists {
		panic(fmt.Sprintf("world: chunk %v is not active", coords))
	}

	if chunk.NeedsToBeSaved() {
		w.saveChunk(chunk)
	}

	w.removeChunkFromActiveList(chunk)
	w.purgeDirtyLighting(chunk)

	w.metrics.chunkDeactivated()
	w.metrics.setActiveChunks(len(w.activeChunks))
	w.logger.Debug("Чанк %v деактивирован, активных: %d", coords, len(w.activeChunks))
}

// saveChunk сохраняет чанк в хранилище
func (w *World) saveChunk(chunk *Chunk) error {
	if w.store == nil {
		return nil
	}

	err := w.store.Save(chunk.coords, chunk.EncodeRLE())
	w.metrics.chunkSaved(err)
	if err != nil {
		w.logger.Error("Чанк %v: ошибка сохранения: %v", chunk.coords, err)
		return fmt.Errorf("save chunk %v: %w", chunk.coords, err)
	}

	chunk.SetNeedsToBeSaved(false)
	return nil
}

// SaveDirtyChunks сохраняет все изменённые активные чанки
func (w *World) SaveDirtyChunks() error {
	var errs []error
	for _, coords := range w.ActiveChunkCoords() {
		chunk := w.activeChunks[coords]
		if chunk.NeedsToBeSaved() {
			if err := w.saveChunk(chunk); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close сохраняет изменённые чанки и выгружает все чанки
func (w *World) Close() error {
	err := w.SaveDirtyChunks()

	for _, coords := range w.ActiveChunkCoords() {
		w.removeChunkFromActiveList(w.activeChunks[coords])
	}
	w.dirtyLighting = nil
	w.dirtyLightingHead = 0
	w.metrics.setActiveChunks(0)

	w.logger.Info("🌍 Мир %s закрыт", w.id)
	return err
}

// addChunkToActiveList добавляет чанк в карту и связывает его с соседями
func (w *World) addChunkToActiveList(chunk *Chunk) {
	coords := chunk.coords
	w.activeChunks[coords] = chunk

	if east := w.activeChunks[coords.Add(vec.Vec2{X: 1})]; east != nil {
		chunk.SetEastNeighbor(east)
		east.SetWestNeighbor(chunk)
		east.SetIsMeshDirty(true)
	}
	if west := w.activeChunks[coords.Add(vec.Vec2{X: -1})]; west != nil {
		chunk.SetWestNeighbor(west)
		west.SetEastNeighbor(chunk)
		west.SetIsMeshDirty(true)
	}
	if north := w.activeChunks[coords.Add(vec.Vec2{Y: 1})]; north != nil {
		chunk.SetNorthNeighbor(north)
		north.SetSouthNeighbor(chunk)
		north.SetIsMeshDirty(true)
	}
	if south := w.activeChunks[coords.Add(vec.Vec2{Y: -1})]; south != nil {
		chunk.SetSouthNeighbor(south)
		south.SetNorthNeighbor(chunk)
		south.SetIsMeshDirty(true)
	}
}

// removeChunkFromActiveList удаляет чанк из карты и отвязывает соседей
func (w *World) removeChunkFromActiveList(chunk *Chunk) {
	if east := chunk.EastNeighbor(); east != nil {
		east.SetWestNeighbor(nil)
	}
	if west := chunk.WestNeighbor(); west != nil {
		west.SetEastNeighbor(nil)
	}
	if north := chunk.NorthNeighbor(); north != nil {
		north.SetSouthNeighbor(nil)
	}
	if south := chunk.SouthNeighbor(); south != nil {
		south.SetNorthNeighbor(nil)
	}

	chunk.SetEastNeighbor(nil)
	chunk.SetWestNeighbor(nil)
	chunk.SetNorthNeighbor(nil)
	chunk.SetSouthNeighbor(nil)

	delete(w.activeChunks, chunk.coords)
}

// chunkCenter возвращает центр чанка в плоскости XY
func chunkCenter(coords vec.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{
		float64(coords.X*ChunkDimensionsX) + 0.5*ChunkDimensionsX,
		float64(coords.Y*ChunkDimensionsY) + 0.5*ChunkDimensionsY,
	}
}

// distanceSquaredXY квадрат расстояния от центра чанка до опорной точки в плоскости XY
func distanceSquaredXY(coords vec.Vec2, reference mgl64.Vec3) float64 {
	center := chunkCenter(coords)
	dx := center.X() - reference.X()
	dy := center.Y() - reference.Y()
	return dx*dx + dy*dy
}

// checkToActivateChunks активирует ближайший неактивный чанк внутри радиуса активации
func (w *World) checkToActivateChunks(reference mgl64.Vec3) {
	if coords, found := w.findClosestInactiveChunk(reference); found {
		w.ActivateChunk(coords)
	}
}

// findClosestInactiveChunk ищет ближайший неактивный чанк строго внутри радиуса активации.
// При равных расстояниях побеждает первый в порядке обхода (Y, затем X).
func (w *World) findClosestInactiveChunk(reference mgl64.Vec3) (vec.Vec2, bool) {
	center := w.ChunkCoordsForPosition(reference)
	spanX := int(math.Ceil(w.settings.ActivationRadius / ChunkDimensionsX))
	spanY := int(math.Ceil(w.settings.ActivationRadius / ChunkDimensionsY))

	best := w.settings.ActivationRadius * w.settings.ActivationRadius
	var bestCoords vec.Vec2
	found := false

	for y := center.Y - spanY; y <= center.Y+spanY; y++ {
		for x := center.X - spanX; x <= center.X+spanX; x++ {
			coords := vec.Vec2{X: x, Y: y}
			if _, active := w.activeChunks[coords]; active {
				continue
			}
			if d := distanceSquaredXY(coords, reference); d < best {
				best = d
				bestCoords = coords
				found = true
			}
		}
	}
	return bestCoords, found
}

// checkToDeactivateChunks деактивирует самый дальний чанк за радиусом деактивации
func (w *World) checkToDeactivateChunks(reference mgl64.Vec3) {
	if coords, found := w.findFarthestActiveChunk(reference); found {
		w.DeactivateChunk(coords)
	}
}

// findFarthestActiveChunk ищет самый дальний активный чанк строго за радиусом деактивации
func (w *World) findFarthestActiveChunk(reference mgl64.Vec3) (vec.Vec2, bool) {
	worst := w.settings.DeactivationRadius * w.settings.DeactivationRadius
	var worstCoords vec.Vec2
	found := false

	for _, coords := range w.ActiveChunkCoords() {
		if d := distanceSquaredXY(coords, reference); d > worst {
			worst = d
			worstCoords = coords
			found = true
		}
	}
	return worstCoords, found
}

// checkToBuildChunkMeshes перестраивает ближайшие устаревшие меши у чанков со всеми соседями
func (w *World) checkToBuildChunkMeshes(reference mgl64.Vec3) {
	if w.settings.MeshesPerTick == 0 {
		return
	}

	var candidates []vec.Vec2
	for coords, chunk := range w.activeChunks {
		if chunk.IsMeshDirty() && chunk.HasAllFourNeighbors() {
			candidates = append(candidates, coords)
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		di := distanceSquaredXY(candidates[i], reference)
		dj := distanceSquaredXY(candidates[j], reference)
		if di != dj {
			return di < dj
		}
		return candidates[i].Less(candidates[j])
	})

	for i := 0; i < len(candidates) && i < w.settings.MeshesPerTick; i++ {
		start := time.Now()
		w.activeChunks[candidates[i]].BuildMesh()
		w.metrics.meshBuilt(time.Since(start))
	}
}
