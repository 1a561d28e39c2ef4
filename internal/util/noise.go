package util

import (
	"github.com/aquilax/go-perlin"
)

// Параметры генератора шума по умолчанию
const (
	DefaultNoiseAlpha   = 2.0 // Сглаживание шума
	DefaultNoiseBeta    = 2.0 // Частота шума
	DefaultNoiseOctaves = 3   // Количество октав
)

// PerlinNoise оборачивает генератор шума Перлина с фиксированным сидом.
// Значения детерминированы: одинаковые координаты дают одинаковый результат.
type PerlinNoise struct {
	seed  int64
	noise *perlin.Perlin
}

// NewPerlinNoise создаёт генератор шума Перлина с указанным сидом
func NewPerlinNoise(seed int64) *PerlinNoise {
	return &PerlinNoise{
		seed:  seed,
		noise: perlin.NewPerlin(DefaultNoiseAlpha, DefaultNoiseBeta, DefaultNoiseOctaves, seed),
	}
}

// Seed возвращает сид генератора
func (p *PerlinNoise) Seed() int64 {
	return p.seed
}

// Noise2D возвращает значение шума в диапазоне [-1, 1].
// scale задаёт размер "волны" в мировых единицах; scale <= 0 означает 1.
func (p *PerlinNoise) Noise2D(x, y, scale float64) float64 {
	if scale <= 0 {
		scale = 1
	}

	value := p.noise.Noise2D(x/scale, y/scale)
	return Clamp(value, -1, 1)
}

// Noise2DNormalized возвращает значение шума в диапазоне [0, 1]
func (p *PerlinNoise) Noise2DNormalized(x, y, scale float64) float64 {
	return (p.Noise2D(x, y, scale) + 1.0) / 2.0
}

// Clamp ограничивает значение диапазоном [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
