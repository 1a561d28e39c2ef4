package world

import (
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// BlockLocator указатель на конкретный блок конкретного чанка.
// Переход к соседнему блоку может перейти в соседний чанк через его ссылки.
type BlockLocator struct {
	chunk *Chunk
	index int
}

// NewBlockLocator создаёт локатор блока с индексом index в чанке chunk
func NewBlockLocator(chunk *Chunk, index int) BlockLocator {
	return BlockLocator{chunk: chunk, index: index}
}

// InvalidBlockLocator возвращает локатор, не указывающий ни на какой блок
func InvalidBlockLocator() BlockLocator {
	return BlockLocator{}
}

// IsValid возвращает true, если локатор указывает на блок
func (l BlockLocator) IsValid() bool {
	return l.chunk != nil
}

// Chunk возвращает чанк локатора (nil для невалидного)
func (l BlockLocator) Chunk() *Chunk {
	return l.chunk
}

// Index возвращает индекс блока внутри чанка
func (l BlockLocator) Index() int {
	return l.index
}

// Block возвращает блок. Вызов на невалидном локаторе - ошибка программы.
func (l BlockLocator) Block() *Block {
	if l.chunk == nil {
		panic("world: Block() called on invalid BlockLocator")
	}
	return l.chunk.Block(l.index)
}

// Coords возвращает локальные координаты блока в чанке
func (l BlockLocator) Coords() vec.Vec3 {
	return CoordsFromBlockIndex(l.index)
}

// Equals сравнивает два локатора
func (l BlockLocator) Equals(other BlockLocator) bool {
	if !l.IsValid() || !other.IsValid() {
		return l.IsValid() == other.IsValid()
	}
	return l.chunk == other.chunk && l.index == other.index
}

// BlockCenterWorldPosition возвращает мировую позицию центра блока
func (l BlockLocator) BlockCenterWorldPosition() mgl64.Vec3 {
	coords := l.Coords()
	origin := l.chunk.OriginWorldPosition()
	return mgl64.Vec3{
		origin.X() + float64(coords.X) + 0.5,
		origin.Y() + float64(coords.Y) + 0.5,
		origin.Z() + float64(coords.Z) + 0.5,
	}
}

// ToEast возвращает блок с x+1
func (l BlockLocator) ToEast() BlockLocator {
	if !l.IsValid() {
		return l
	}
	if l.index&ChunkXMask == ChunkXMask {
		return locatorIn(l.chunk.eastNeighbor, l.index&^ChunkXMask)
	}
	return NewBlockLocator(l.chunk, l.index+1)
}

// ToWest возвращает блок с x-1
func (l BlockLocator) ToWest() BlockLocator {
	if !l.IsValid() {
		return l
	}
	if l.index&ChunkXMask == 0 {
		return locatorIn(l.chunk.westNeighbor, l.index|ChunkXMask)
	}
	return NewBlockLocator(l.chunk, l.index-1)
}

// ToNorth возвращает блок с y+1
func (l BlockLocator) ToNorth() BlockLocator {
	if !l.IsValid() {
		return l
	}
	if l.index&ChunkYMask == ChunkYMask {
		return locatorIn(l.chunk.northNeighbor, l.index&^ChunkYMask)
	}
	return NewBlockLocator(l.chunk, l.index+ChunkDimensionsX)
}

// ToSouth возвращает блок с y-1
func (l BlockLocator) ToSouth() BlockLocator {
	if !l.IsValid() {
		return l
	}
	if l.index&ChunkYMask == 0 {
		return locatorIn(l.chunk.southNeighbor, l.index|ChunkYMask)
	}
	return NewBlockLocator(l.chunk, l.index-ChunkDimensionsX)
}

// ToAbove возвращает блок с z+1 (невалидный над верхним слоем)
func (l BlockLocator) ToAbove() BlockLocator {
	if !l.IsValid() || l.index&ChunkZMask == ChunkZMask {
		return InvalidBlockLocator()
	}
	return NewBlockLocator(l.chunk, l.index+BlocksPerZLayer)
}

// ToBelow возвращает блок с z-1 (невалидный под нижним слоем)
func (l BlockLocator) ToBelow() BlockLocator {
	if !l.IsValid() || l.index&ChunkZMask == 0 {
		return InvalidBlockLocator()
	}
	return NewBlockLocator(l.chunk, l.index-BlocksPerZLayer)
}

// StepInCoordDirection делает единичный шаг вдоль одной оси по знаку компоненты direction
func (l BlockLocator) StepInCoordDirection(direction vec.Vec3) BlockLocator {
	switch {
	case direction.X > 0:
		return l.ToEast()
	case direction.X < 0:
		return l.ToWest()
	case direction.Y > 0:
		return l.ToNorth()
	case direction.Y < 0:
		return l.ToSouth()
	case direction.Z > 0:
		return l.ToAbove()
	case direction.Z < 0:
		return l.ToBelow()
	}
	return l
}

// Neighbors возвращает шесть соседей в порядке восток, запад, север, юг, верх, низ
func (l BlockLocator) Neighbors() [6]BlockLocator {
	return [6]BlockLocator{
		l.ToEast(), l.ToWest(), l.ToNorth(), l.ToSouth(), l.ToAbove(), l.ToBelow(),
	}
}

func locatorIn(chunk *Chunk, index int) BlockLocator {
	if chunk == nil {
		return InvalidBlockLocator()
	}
	return NewBlockLocator(chunk, index)
}
