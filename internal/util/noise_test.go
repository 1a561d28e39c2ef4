package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPerlinNoiseDeterministic(t *testing.T) {
	a := NewPerlinNoise(42)
	b := NewPerlinNoise(42)

	for i := 0; i < 50; i++ {
		x := float64(i)*3.7 + 0.5
		y := float64(i)*-1.3 + 0.5
		assert.Equal(t, a.Noise2D(x, y, 50), b.Noise2D(x, y, 50), "шум должен быть детерминированным")
	}
}

func TestPerlinNoiseRange(t *testing.T) {
	n := NewPerlinNoise(7)

	for x := -100; x < 100; x += 7 {
		for y := -100; y < 100; y += 11 {
			v := n.Noise2D(float64(x)+0.5, float64(y)+0.5, 50)
			assert.GreaterOrEqual(t, v, -1.0)
			assert.LessOrEqual(t, v, 1.0)

			norm := n.Noise2DNormalized(float64(x)+0.5, float64(y)+0.5, 50)
			assert.GreaterOrEqual(t, norm, 0.0)
			assert.LessOrEqual(t, norm, 1.0)
		}
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, -1, 1))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
	assert.Equal(t, 0.25, Clamp(0.25, -1, 1))
}
