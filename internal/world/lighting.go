package world

import (
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// AddBlockToDirtyLightingList ставит блок в очередь пересчёта света (если его там ещё нет)
func (w *World) AddBlockToDirtyLightingList(locator BlockLocator) {
	if !locator.IsValid() {
		return
	}
	b := locator.Block()
	if b.IsLightingDirty() {
		return
	}
	b.SetIsLightingDirty(true)
	w.dirtyLighting = append(w.dirtyLighting, locator)
}

// PendingLightingCount возвращает длину очереди пересчёта света
func (w *World) PendingLightingCount() int {
	return len(w.dirtyLighting) - w.dirtyLightingHead
}

// UpdateLighting обрабатывает очередь до опустошения. Изменение света блока
// ставит в очередь его соседей и помечает затронутые меши.
func (w *World) UpdateLighting() {
	processed := 0

	for w.dirtyLightingHead < len(w.dirtyLighting) {
		locator := w.dirtyLighting[w.dirtyLightingHead]
		w.dirtyLighting[w.dirtyLightingHead] = BlockLocator{}
		w.dirtyLightingHead++
		processed++

		w.updateLightingForBlock(locator)
	}

	w.dirtyLighting = w.dirtyLighting[:0]
	w.dirtyLightingHead = 0
	w.metrics.lightingProcessed(processed)
}

func (w *World) updateLightingForBlock(locator BlockLocator) {
	b := locator.Block()
	b.SetIsLightingDirty(false)

	outdoor, indoor := w.idealLight(locator)
	if outdoor == int(b.OutdoorLight()) && indoor == int(b.IndoorLight()) {
		return
	}

	b.SetOutdoorLight(outdoor)
	b.SetIndoorLight(indoor)
	locator.Chunk().markMeshDirtyAround(locator.Index())

	for _, neighbor := range locator.Neighbors() {
		if neighbor.IsValid() && !neighbor.Block().IsFullyOpaque() {
			w.AddBlockToDirtyLightingList(neighbor)
		}
	}
}

// idealLight вычисляет свет блока по его типу, флагу неба и соседям
func (w *World) idealLight(locator BlockLocator) (outdoor, indoor int) {
	b := locator.Block()
	t := w.registry.GetTypeByIndex(int(b.TypeIndex()))

	indoor = int(t.LightEmission)
	if b.IsPartOfSky() {
		outdoor = block.MaxLightLevel
	}
	if b.IsFullyOpaque() {
		return outdoor, indoor
	}

	for _, neighbor := range locator.Neighbors() {
		if !neighbor.IsValid() {
			continue
		}
		nb := neighbor.Block()
		outdoor = max(outdoor, int(nb.OutdoorLight())-1)
		indoor = max(indoor, int(nb.IndoorLight())-1)
	}
	return outdoor, indoor
}

// initializeLightingForChunk помечает столбцы неба, источники света
// и граничные блоки соседей для только что активированного чанка
func (w *World) initializeLightingForChunk(chunk *Chunk) {
	w.initializeSkyForChunk(chunk)

	for index := 0; index < BlocksPerChunk; index++ {
		t := chunk.BlockType(index)
		if t != nil && t.LightEmission > 0 {
			w.AddBlockToDirtyLightingList(NewBlockLocator(chunk, index))
		}
	}

	w.markEdgeBlocksDirty(chunk)
}

// initializeSkyForChunk помечает блоки над первым непрозрачным блоком каждого столбца как небо
func (w *World) initializeSkyForChunk(chunk *Chunk) {
	for y := 0; y < ChunkDimensionsY; y++ {
		for x := 0; x < ChunkDimensionsX; x++ {
			for z := ChunkDimensionsZ - 1; z >= 0; z-- {
				b := chunk.BlockAt(vec.Vec3{X: x, Y: y, Z: z})
				if b.IsFullyOpaque() {
					break
				}
				b.SetIsPartOfSky(true)
				b.SetOutdoorLight(block.MaxLightLevel)
			}
		}
	}

	// Свет неба растекается в соседние затенённые блоки
	for y := 0; y < ChunkDimensionsY; y++ {
		for x := 0; x < ChunkDimensionsX; x++ {
			for z := ChunkDimensionsZ - 1; z >= 0; z-- {
				locator := NewBlockLocator(chunk, BlockIndexFromCoords(vec.Vec3{X: x, Y: y, Z: z}))
				if !locator.Block().IsPartOfSky() {
					break
				}
				for _, neighbor := range [4]BlockLocator{locator.ToEast(), locator.ToWest(), locator.ToNorth(), locator.ToSouth()} {
					if !neighbor.IsValid() {
						continue
					}
					nb := neighbor.Block()
					if !nb.IsFullyOpaque() && !nb.IsPartOfSky() {
						w.AddBlockToDirtyLightingList(neighbor)
					}
				}
			}
		}
	}
}

// markEdgeBlocksDirty ставит в очередь прозрачные граничные блоки чанка и его соседей,
// чтобы свет перетёк через только что появившуюся границу
func (w *World) markEdgeBlocksDirty(chunk *Chunk) {
	type edge struct {
		neighbor   *Chunk
		ownX, ownY int // -1 означает всю ось
		nbrX, nbrY int
	}
	edges := [4]edge{
		{chunk.EastNeighbor(), ChunkDimensionsX - 1, -1, 0, -1},
		{chunk.WestNeighbor(), 0, -1, ChunkDimensionsX - 1, -1},
		{chunk.NorthNeighbor(), -1, ChunkDimensionsY - 1, -1, 0},
		{chunk.SouthNeighbor(), -1, 0, -1, ChunkDimensionsY - 1},
	}

	for _, e := range edges {
		if e.neighbor == nil {
			continue
		}
		for i := 0; i < ChunkDimensionsX; i++ {
			for z := 0; z < ChunkDimensionsZ; z++ {
				w.markIfTransparent(chunk, edgeCoords(e.ownX, e.ownY, i, z))
				w.markIfTransparent(e.neighbor, edgeCoords(e.nbrX, e.nbrY, i, z))
			}
		}
	}
}

func edgeCoords(fixedX, fixedY, i, z int) vec.Vec3 {
	if fixedX >= 0 {
		return vec.Vec3{X: fixedX, Y: i, Z: z}
	}
	return vec.Vec3{X: i, Y: fixedY, Z: z}
}

func (w *World) markIfTransparent(chunk *Chunk, coords vec.Vec3) {
	locator := NewBlockLocator(chunk, BlockIndexFromCoords(coords))
	if !locator.Block().IsFullyOpaque() {
		w.AddBlockToDirtyLightingList(locator)
	}
}

// purgeDirtyLighting убирает из очереди блоки выгруженного чанка
func (w *World) purgeDirtyLighting(chunk *Chunk) {
	kept := w.dirtyLighting[:0]
	for _, locator := range w.dirtyLighting[w.dirtyLightingHead:] {
		if locator.Chunk() != chunk {
			kept = append(kept, locator)
		}
	}
	for i := len(kept); i < len(w.dirtyLighting); i++ {
		w.dirtyLighting[i] = BlockLocator{}
	}
	w.dirtyLighting = kept
	w.dirtyLightingHead = 0
}

// SetBlockType меняет тип блока в мире, обновляет столбец неба и ставит свет на пересчёт.
// Возвращает false для невалидного локатора.
func (w *World) SetBlockType(locator BlockLocator, t *block.Type) bool {
	if !locator.IsValid() || t == nil {
		return false
	}

	locator.Chunk().SetBlockTypeAtBlockIndex(locator.Index(), t)
	b := locator.Block()

	if b.IsFullyOpaque() {
		if b.IsPartOfSky() {
			// Столбец под новым непрозрачным блоком уходит в тень
			b.SetIsPartOfSky(false)
			for below := locator.ToBelow(); below.IsValid() && !below.Block().IsFullyOpaque(); below = below.ToBelow() {
				below.Block().SetIsPartOfSky(false)
				w.AddBlockToDirtyLightingList(below)
			}
		}
	} else {
		above := locator.ToAbove()
		if !above.IsValid() || above.Block().IsPartOfSky() {
			for cur := locator; cur.IsValid() && !cur.Block().IsFullyOpaque(); cur = cur.ToBelow() {
				cur.Block().SetIsPartOfSky(true)
				w.AddBlockToDirtyLightingList(cur)
			}
		}
	}

	w.AddBlockToDirtyLightingList(locator)
	return true
}
