package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/annel0/voxelworld/internal/config"
	"github.com/go-gl/mathgl/mgl64"
)

// ReferenceSource даёт опорную точку стриминга на момент elapsed от старта
type ReferenceSource interface {
	Position(elapsed time.Duration) mgl64.Vec3
}

// StaticReference неподвижная опорная точка
type StaticReference struct {
	Point mgl64.Vec3
}

func (s StaticReference) Position(time.Duration) mgl64.Vec3 {
	return s.Point
}

// OrbitReference точка, движущаяся по окружности в плоскости XY
type OrbitReference struct {
	Center mgl64.Vec3
	Radius float64
	Period time.Duration
}

func (o OrbitReference) Position(elapsed time.Duration) mgl64.Vec3 {
	if o.Period <= 0 {
		return o.Center.Add(mgl64.Vec3{o.Radius, 0, 0})
	}
	angle := 2 * math.Pi * float64(elapsed) / float64(o.Period)
	return o.Center.Add(mgl64.Vec3{o.Radius * math.Cos(angle), o.Radius * math.Sin(angle), 0})
}

// ReferenceFromConfig создаёт источник опорной точки по конфигурации
func ReferenceFromConfig(cfg config.ReferenceConfig) (ReferenceSource, error) {
	point := mgl64.Vec3{cfg.X, cfg.Y, cfg.Z}

	switch cfg.Mode {
	case "", "static":
		return StaticReference{Point: point}, nil
	case "orbit":
		return OrbitReference{Center: point, Radius: cfg.Radius, Period: cfg.Period}, nil
	default:
		return nil, fmt.Errorf("unknown reference mode %q", cfg.Mode)
	}
}
