package world

import (
	"github.com/annel0/voxelworld/internal/vec"
	"github.com/annel0/voxelworld/internal/world/block"
)

// Параметры рельефа по умолчанию
const (
	DefaultBaseElevation = 30
	DefaultMaxDeviation  = 10
	DefaultSeaLevel      = 25
	DefaultNoiseScale    = 50.0

	dirtLayerThickness = 3 // Слой земли под верхним блоком
)

// NoiseSource источник когерентного шума: значение в [-1, 1]
// для мировых координат x, y и масштаба scale
type NoiseSource interface {
	Noise2D(x, y, scale float64) float64
}

// TerrainParams параметры генерации рельефа
type TerrainParams struct {
	BaseElevation int     // Средняя высота поверхности
	MaxDeviation  int     // Максимальное отклонение от средней высоты
	SeaLevel      int     // Уровень моря: ниже него столбцы заливаются водой
	NoiseScale    float64 // Масштаб шума в мировых единицах
}

// DefaultTerrainParams возвращает параметры рельефа по умолчанию
func DefaultTerrainParams() TerrainParams {
	return TerrainParams{
		BaseElevation: DefaultBaseElevation,
		MaxDeviation:  DefaultMaxDeviation,
		SeaLevel:      DefaultSeaLevel,
		NoiseScale:    DefaultNoiseScale,
	}
}

// ColumnHeight вычисляет высоту поверхности (количество заполненных блоков) для мировых координат центра столбца
func (p TerrainParams) ColumnHeight(noise NoiseSource, worldX, worldY float64) int {
	height := roundToInt(noise.Noise2D(worldX, worldY, p.NoiseScale)*float64(p.MaxDeviation)) + p.BaseElevation
	if height < 1 {
		height = 1
	}
	if height > ChunkDimensionsZ {
		height = ChunkDimensionsZ
	}
	return height
}

// GenerateWithPerlinNoise заполняет чанк рельефом.
// Результат зависит только от мировых координат и источника шума,
// поэтому повторная генерация даёт тот же массив блоков.
func (c *Chunk) GenerateWithPerlinNoise(noise NoiseSource, params TerrainParams) {
	air := c.registry.GetTypeByName(block.AirName)
	grass := c.registry.GetTypeByName(block.GrassName)
	dirt := c.registry.GetTypeByName(block.DirtName)
	stone := c.registry.GetTypeByName(block.StoneName)
	water := c.registry.GetTypeByName(block.WaterName)

	c.clearBlocks()

	for y := 0; y < ChunkDimensionsY; y++ {
		for x := 0; x < ChunkDimensionsX; x++ {
			// Шум берётся в центре столбца
			worldX := c.worldBounds.Mins.X() + float64(x) + 0.5
			worldY := c.worldBounds.Mins.Y() + float64(y) + 0.5
			height := params.ColumnHeight(noise, worldX, worldY)
			underwater := height <= params.SeaLevel

			for z := 0; z < ChunkDimensionsZ; z++ {
				t := air
				switch {
				case z == height-1 && !underwater:
					t = grass
				case z < height && z >= height-1-dirtLayerThickness && !underwater:
					t = dirt
				case z < height && z >= height-dirtLayerThickness && underwater:
					// Дно водоёма
					t = dirt
				case z < height:
					t = stone
				case underwater && z < params.SeaLevel:
					t = water
				}

				if t != air {
					c.BlockAt(vec.Vec3{X: x, Y: y, Z: z}).SetType(t)
				}
			}
		}
	}

	c.isMeshDirty = true
	c.needsToBeSaved = false
}
