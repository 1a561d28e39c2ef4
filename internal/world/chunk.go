package world

import (
	"math"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
	"github.com/go-gl/mathgl/mgl64"
)

// Размеры чанка. Индекс блока: x в младших битах, затем y, затем z.
const (
	ChunkVersion uint8 = 1

	ChunkBitsX  = 4 // Количество бит индекса блока под координату x
	ChunkBitsY  = 4 // Количество бит индекса блока под координату y
	ChunkBitsXY = ChunkBitsX + ChunkBitsY
	ChunkBitsZ  = 8 // Количество бит индекса блока под координату z

	ChunkDimensionsX = 1 << ChunkBitsX
	ChunkDimensionsY = 1 << ChunkBitsY
	ChunkDimensionsZ = 1 << ChunkBitsZ

	ChunkXMask = ChunkDimensionsX - 1
	ChunkYMask = (ChunkDimensionsY - 1) << ChunkBitsX
	ChunkZMask = (ChunkDimensionsZ - 1) << ChunkBitsXY

	BlocksPerZLayer = ChunkDimensionsX * ChunkDimensionsY
	BlocksPerChunk  = ChunkDimensionsX * ChunkDimensionsY * ChunkDimensionsZ
)

// AABB3 ограничивающий параллелепипед в мировых координатах.
// Нижняя граница включается, верхняя - нет.
type AABB3 struct {
	Mins mgl64.Vec3
	Maxs mgl64.Vec3
}

// Contains проверяет попадание точки внутрь
func (b AABB3) Contains(p mgl64.Vec3) bool {
	return p.X() >= b.Mins.X() && p.X() < b.Maxs.X() &&
		p.Y() >= b.Mins.Y() && p.Y() < b.Maxs.Y() &&
		p.Z() >= b.Mins.Z() && p.Z() < b.Maxs.Z()
}

// Chunk вертикальный столбец мира 16x16x256 блоков.
// Владельцем чанка является World; ссылки на соседей не владеющие
// и обновляются миром при активации и деактивации.
type Chunk struct {
	coords      vec.Vec2 // Координаты в сетке чанков (не мировые единицы)
	worldBounds AABB3
	blocks      [BlocksPerChunk]Block
	registry    *block.Registry

	eastNeighbor  *Chunk
	westNeighbor  *Chunk
	northNeighbor *Chunk
	southNeighbor *Chunk

	mesh           *Mesh
	isMeshDirty    bool
	needsToBeSaved bool
}

// NewChunk создаёт пустой (воздух) чанк с указанными координатами
func NewChunk(coords vec.Vec2, registry *block.Registry) *Chunk {
	mins := mgl64.Vec3{
		float64(coords.X * ChunkDimensionsX),
		float64(coords.Y * ChunkDimensionsY),
		0,
	}

	return &Chunk{
		coords: coords,
		worldBounds: AABB3{
			Mins: mins,
			Maxs: mins.Add(mgl64.Vec3{ChunkDimensionsX, ChunkDimensionsY, ChunkDimensionsZ}),
		},
		registry:    registry,
		isMeshDirty: true,
	}
}

// BlockIndexFromCoords переводит локальные координаты в индекс массива
func BlockIndexFromCoords(coords vec.Vec3) int {
	return BlocksPerZLayer*coords.Z + ChunkDimensionsX*coords.Y + coords.X
}

// CoordsFromBlockIndex переводит индекс массива в локальные координаты
func CoordsFromBlockIndex(index int) vec.Vec3 {
	return vec.Vec3{
		X: index & ChunkXMask,
		Y: (index & ChunkYMask) >> ChunkBitsX,
		Z: (index & ChunkZMask) >> ChunkBitsXY,
	}
}

// Coords возвращает координаты чанка
func (c *Chunk) Coords() vec.Vec2 {
	return c.coords
}

// WorldBounds возвращает границы чанка в мировых координатах
func (c *Chunk) WorldBounds() AABB3 {
	return c.worldBounds
}

// OriginWorldPosition возвращает мировую позицию угла (0,0,0) чанка
func (c *Chunk) OriginWorldPosition() mgl64.Vec3 {
	return c.worldBounds.Mins
}

// WorldXYCenter возвращает центр чанка в плоскости XY
func (c *Chunk) WorldXYCenter() mgl64.Vec2 {
	return mgl64.Vec2{
		c.worldBounds.Mins.X() + 0.5*ChunkDimensionsX,
		c.worldBounds.Mins.Y() + 0.5*ChunkDimensionsY,
	}
}

// Registry возвращает таблицу типов, с которой работает чанк
func (c *Chunk) Registry() *block.Registry {
	return c.registry
}

// Block возвращает блок по индексу. Индекс вне массива - ошибка вызывающего.
func (c *Chunk) Block(index int) *Block {
	return &c.blocks[index]
}

// BlockAt возвращает блок по локальным координатам
func (c *Chunk) BlockAt(coords vec.Vec3) *Block {
	return c.Block(BlockIndexFromCoords(coords))
}

// BlockType возвращает тип блока по индексу
func (c *Chunk) BlockType(index int) *block.Type {
	return c.registry.GetTypeByIndex(int(c.blocks[index].typeIndex))
}

func (c *Chunk) EastNeighbor() *Chunk  { return c.eastNeighbor }
func (c *Chunk) WestNeighbor() *Chunk  { return c.westNeighbor }
func (c *Chunk) NorthNeighbor() *Chunk { return c.northNeighbor }
func (c *Chunk) SouthNeighbor() *Chunk { return c.southNeighbor }

func (c *Chunk) SetEastNeighbor(n *Chunk)  { c.eastNeighbor = n }
func (c *Chunk) SetWestNeighbor(n *Chunk)  { c.westNeighbor = n }
func (c *Chunk) SetNorthNeighbor(n *Chunk) { c.northNeighbor = n }
func (c *Chunk) SetSouthNeighbor(n *Chunk) { c.southNeighbor = n }

// HasAllFourNeighbors возвращает true, если все соседи активны (меши могут быть не построены)
func (c *Chunk) HasAllFourNeighbors() bool {
	return c.eastNeighbor != nil && c.westNeighbor != nil &&
		c.northNeighbor != nil && c.southNeighbor != nil
}

// IsMeshDirty возвращает true, если меш нужно (пере)построить
func (c *Chunk) IsMeshDirty() bool {
	return c.isMeshDirty
}

// SetIsMeshDirty помечает меш устаревшим или актуальным
func (c *Chunk) SetIsMeshDirty(dirty bool) {
	c.isMeshDirty = dirty
}

// NeedsToBeSaved возвращает true, если чанк изменён после загрузки или генерации
func (c *Chunk) NeedsToBeSaved() bool {
	return c.needsToBeSaved
}

// SetNeedsToBeSaved устанавливает флаг необходимости сохранения
func (c *Chunk) SetNeedsToBeSaved(needs bool) {
	c.needsToBeSaved = needs
}

// SetBlockTypeAtBlockIndex меняет тип блока, помечает меш и сохранение,
// а для блока на границе X/Y помечает меш соседнего чанка.
func (c *Chunk) SetBlockTypeAtBlockIndex(index int, t *block.Type) {
	c.blocks[index].SetType(t)
	c.needsToBeSaved = true
	c.markMeshDirtyAround(index)
}

// SetBlockTypeAtCoords меняет тип блока по локальным координатам
func (c *Chunk) SetBlockTypeAtCoords(coords vec.Vec3, t *block.Type) {
	c.SetBlockTypeAtBlockIndex(BlockIndexFromCoords(coords), t)
}

// markMeshDirtyAround помечает меш этого чанка и соседей, чьи граничные
// грани зависят от блока с указанным индексом
func (c *Chunk) markMeshDirtyAround(index int) {
	c.isMeshDirty = true

	x := index & ChunkXMask
	y := (index & ChunkYMask) >> ChunkBitsX

	if x == 0 && c.westNeighbor != nil {
		c.westNeighbor.isMeshDirty = true
	}
	if x == ChunkDimensionsX-1 && c.eastNeighbor != nil {
		c.eastNeighbor.isMeshDirty = true
	}
	if y == 0 && c.southNeighbor != nil {
		c.southNeighbor.isMeshDirty = true
	}
	if y == ChunkDimensionsY-1 && c.northNeighbor != nil {
		c.northNeighbor.isMeshDirty = true
	}
}

// GetBlockLocatorThatContainsPosition возвращает локатор блока, содержащего
// мировую позицию, или невалидный локатор, если позиция вне чанка
func (c *Chunk) GetBlockLocatorThatContainsPosition(position mgl64.Vec3) BlockLocator {
	if !c.worldBounds.Contains(position) {
		return InvalidBlockLocator()
	}

	local := position.Sub(c.worldBounds.Mins)
	coords := vec.FloorVec3(local.X(), local.Y(), local.Z())
	return NewBlockLocator(c, BlockIndexFromCoords(coords))
}

// HighestSolidBlockZ возвращает z самого верхнего твёрдого блока столбца или -1
func (c *Chunk) HighestSolidBlockZ(x, y int) int {
	for z := ChunkDimensionsZ - 1; z >= 0; z-- {
		if c.BlockAt(vec.Vec3{X: x, Y: y, Z: z}).IsSolid() {
			return z
		}
	}
	return -1
}

// CountBlocksOfType подсчитывает блоки указанного типа
func (c *Chunk) CountBlocksOfType(typeIndex uint8) int {
	count := 0
	for i := range c.blocks {
		if c.blocks[i].typeIndex == typeIndex {
			count++
		}
	}
	return count
}

// clearBlocks сбрасывает все блоки в воздух
func (c *Chunk) clearBlocks() {
	for i := range c.blocks {
		c.blocks[i].reset()
	}
}

// Mesh возвращает последний построенный меш (nil, если меш ещё не строился)
func (c *Chunk) Mesh() *Mesh {
	return c.mesh
}

// Render передаёт меш чанка внешнему рендереру
func (c *Chunk) Render(r Renderer) {
	if c.mesh == nil || r == nil {
		return
	}
	r.DrawMesh(c.mesh, BlockMaterial)
}

// roundToInt округляет к ближайшему целому (половины от нуля)
func roundToInt(v float64) int {
	return int(math.Round(v))
}
