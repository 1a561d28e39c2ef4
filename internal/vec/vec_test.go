package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloorVec3HandlesNegatives(t *testing.T) {
	assert.Equal(t, Vec3{X: -1, Y: 0, Z: 2}, FloorVec3(-0.5, 0.99, 2.0))
	assert.Equal(t, Vec3{X: -2, Y: -17, Z: 0}, FloorVec3(-1.01, -16.5, 0.5))
}

func TestVec2Order(t *testing.T) {
	a := Vec2{X: 5, Y: 0}
	b := Vec2{X: 0, Y: 1}

	assert.True(t, a.Less(b), "меньший Y должен идти первым")
	assert.False(t, b.Less(a))
	assert.True(t, Vec2{X: -1, Y: 1}.Less(b))
}

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 3}
	b := Vec3{X: 4, Y: 6, Z: 3}

	assert.Equal(t, Vec3{X: 5, Y: 8, Z: 6}, a.Add(b))
	assert.Equal(t, Vec3{X: 3, Y: 4, Z: 0}, b.Sub(a))
	assert.Equal(t, 25, a.DistanceSquaredTo(b))
	assert.Equal(t, Vec2{X: 1, Y: 2}, a.ToVec2())
}
