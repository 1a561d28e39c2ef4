package storage

import (
	"testing"

	"github.com/annel0/voxelworld/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStore_InMemory(t *testing.T) {
	store, err := NewInMemoryBadgerStore()
	require.NoError(t, err)
	defer store.Close()

	coords := vec.Vec2{X: 3, Y: -1}
	_, found, err := store.Load(coords)
	require.NoError(t, err)
	assert.False(t, found)

	data := encodedChunk(coords)
	require.NoError(t, store.Save(coords, data))
	require.NoError(t, store.Save(vec.Vec2{X: -4, Y: -1}, data))

	loaded, found, err := store.Load(coords)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, data, loaded)

	coordsList, err := store.List()
	require.NoError(t, err)
	assert.Equal(t, []vec.Vec2{{X: -4, Y: -1}, {X: 3, Y: -1}}, coordsList)
}

func TestBadgerStore_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	coords := vec.Vec2{X: 1, Y: 2}
	data := encodedChunk(coords)

	store, err := NewBadgerStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Save(coords, data))
	require.NoError(t, store.Close())

	_, _, err = store.Load(coords)
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.NoError(t, store.Close(), "Повторное закрытие безопасно")

	reopened, err := NewBadgerStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	loaded, found, err := reopened.Load(coords)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, data, loaded)
}
