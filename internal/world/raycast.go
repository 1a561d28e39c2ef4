package world

import (
	"math"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
)

// RaycastResult результат трассировки луча по блокам
type RaycastResult struct {
	Start          mgl64.Vec3
	Direction      mgl64.Vec3 // Нормализованное направление
	MaxDistance    float64
	End            mgl64.Vec3 // Точка остановки: попадание или конец луча
	DidImpact      bool
	ImpactDistance float64
	ImpactFraction float64 // ImpactDistance / MaxDistance, 1 без попадания
	ImpactBlock    BlockLocator
	ImpactNormal   mgl64.Vec3 // Нормаль грани, в которую попал луч
}

// Raycast трассирует луч по сетке блоков (шаг от границы к границе) и останавливается
// на первом твёрдом блоке. Незагруженные чанки луч пролетает насквозь.
func (w *World) Raycast(start, direction mgl64.Vec3, maxDistance float64) RaycastResult {
	result := RaycastResult{
		Start:          start,
		MaxDistance:    maxDistance,
		End:            start,
		ImpactFraction: 1,
	}

	length := direction.Len()
	if length == 0 || maxDistance <= 0 {
		return result
	}
	dir := direction.Mul(1 / length)
	result.Direction = dir
	result.End = start.Add(dir.Mul(maxDistance))

	voxel := vec.FloorVec3(start.X(), start.Y(), start.Z())
	if locator := w.BlockLocatorForBlockCoords(voxel); locator.IsValid() && locator.Block().IsSolid() {
		// Луч начинается внутри твёрдого блока
		result.DidImpact = true
		result.End = start
		result.ImpactFraction = 0
		result.ImpactBlock = locator
		result.ImpactNormal = dir.Mul(-1)
		return result
	}

	var (
		step    [3]int
		tMax    [3]float64
		tDelta  [3]float64
		cell    = [3]int{voxel.X, voxel.Y, voxel.Z}
		origin  = [3]float64{start.X(), start.Y(), start.Z()}
		compDir = [3]float64{dir.X(), dir.Y(), dir.Z()}
	)

	for axis := 0; axis < 3; axis++ {
		d := compDir[axis]
		switch {
		case d > 0:
			step[axis] = 1
			tDelta[axis] = 1 / d
			tMax[axis] = (float64(cell[axis]+1) - origin[axis]) / d
		case d < 0:
			step[axis] = -1
			tDelta[axis] = -1 / d
			tMax[axis] = (float64(cell[axis]) - origin[axis]) / d
		default:
			tDelta[axis] = math.Inf(1)
			tMax[axis] = math.Inf(1)
		}
	}

	for {
		axis := 0
		if tMax[1] < tMax[axis] {
			axis = 1
		}
		if tMax[2] < tMax[axis] {
			axis = 2
		}

		t := tMax[axis]
		if t > maxDistance {
			return result
		}

		cell[axis] += step[axis]
		tMax[axis] += tDelta[axis]

		locator := w.BlockLocatorForBlockCoords(vec.Vec3{X: cell[0], Y: cell[1], Z: cell[2]})
		if !locator.IsValid() || !locator.Block().IsSolid() {
			continue
		}

		var normal [3]float64
		normal[axis] = float64(-step[axis])

		result.DidImpact = true
		result.ImpactDistance = t
		result.ImpactFraction = t / maxDistance
		result.End = start.Add(dir.Mul(t))
		result.ImpactBlock = locator
		result.ImpactNormal = mgl64.Vec3{normal[0], normal[1], normal[2]}
		return result
	}
}
