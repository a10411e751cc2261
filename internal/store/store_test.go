package store

import (
	"path/filepath"
	"testing"

	"github.com/MeKo-Tech/reliefmap/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "terrains.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testTerrain(name string) Terrain {
	h := grid.NewField(3, 4)
	for i := range h.Data {
		h.Data[i] = float64(i) * 1.5
	}
	h.Set(0, 0, -12.75)

	return Terrain{
		Name:       name,
		Seed:       1337,
		SquareSize: 64,
		Squares:    [2]int{2, 3},
		BaseLevel:  10,
		Height:     h,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := openTestStore(t)

	want := testTerrain("alps")
	require.NoError(t, s.Put(want))

	got, err := s.Get("alps")
	require.NoError(t, err)

	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Seed, got.Seed)
	assert.Equal(t, want.SquareSize, got.SquareSize)
	assert.Equal(t, want.Squares, got.Squares)
	assert.Equal(t, want.BaseLevel, got.BaseLevel)
	assert.Equal(t, want.Height.Rows, got.Height.Rows)
	assert.Equal(t, want.Height.Cols, got.Height.Cols)
	assert.Equal(t, want.Height.Data, got.Height.Data)
}

func TestStorePutReplaces(t *testing.T) {
	s := openTestStore(t)

	first := testTerrain("alps")
	require.NoError(t, s.Put(first))

	second := testTerrain("alps")
	second.Seed = 42
	require.NoError(t, s.Put(second))

	got, err := s.Get("alps")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed)

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alps"}, names)
}

func TestStoreList(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.Put(testTerrain("alps")))
	require.NoError(t, s.Put(testTerrain("andes")))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alps", "andes"}, names)
}

func TestStoreGetMissing(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Get("atlantis")
	assert.Error(t, err)
}

func TestStoreRejectsEmptyName(t *testing.T) {
	s := openTestStore(t)

	err := s.Put(Terrain{Height: grid.NewField(1, 1)})
	assert.Error(t, err)
}
