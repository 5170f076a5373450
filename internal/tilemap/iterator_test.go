package tilemap

import (
	"math/rand"
	"testing"

	"github.com/annel0/tilemap/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectPositions(it *TileIterator) []vec.Vec3 {
	var result []vec.Vec3
	for ; it.Valid(); it.Next() {
		p, _ := it.Position()
		result = append(result, p)
	}
	return result
}

func TestIteratorEmptyMap(t *testing.T) {
	sm := NewSpatialMap(128, 128, 16)

	begin := sm.Begin()
	assert.True(t, begin.Equal(sm.End()))
	assert.False(t, begin.Valid())
	assert.Nil(t, begin.Tile())

	count := 0
	for range sm.All() {
		count++
	}
	assert.Zero(t, count)
}

func TestIteratorExhaustedIteratorsAreEqual(t *testing.T) {
	sm := NewSpatialMap(128, 128, 16)
	sm.GetOrCreateTile(pos(3, 3, 0), nil)

	it := sm.Begin()
	require.True(t, it.Valid())
	assert.False(t, it.Equal(sm.End()))

	it.Next()
	assert.True(t, it.Equal(sm.End()))

	// Продвижение после конца ничего не меняет
	it.Next()
	it.Next()
	assert.True(t, it.Equal(sm.End()))

	other := NewSpatialMap(128, 128, 16)
	assert.False(t, it.Equal(other.End()))
}

func TestIteratorRasterOrderWithinLeaf(t *testing.T) {
	sm := NewSpatialMap(128, 128, 16)
	for _, p := range []vec.Vec3{pos(0, 0, 2), pos(1, 1, 0), pos(5, 0, 0), pos(0, 0, 0), pos(31, 31, 2)} {
		sm.GetOrCreateTile(p, nil)
	}

	expected := []vec.Vec3{pos(0, 0, 0), pos(5, 0, 0), pos(1, 1, 0), pos(0, 0, 2), pos(31, 31, 2)}
	assert.Equal(t, expected, collectPositions(sm.Begin()))
}

func TestIteratorPreOrderAcrossQuadrants(t *testing.T) {
	sm := NewSpatialMap(128, 128, 16)
	for _, p := range []vec.Vec3{pos(100, 100, 0), pos(5, 100, 0), pos(100, 5, 0), pos(5, 5, 0)} {
		sm.GetOrCreateTile(p, nil)
	}

	expected := []vec.Vec3{pos(5, 5, 0), pos(100, 5, 0), pos(5, 100, 0), pos(100, 100, 0)}
	assert.Equal(t, expected, collectPositions(sm.Begin()))
}

func TestIteratorVisitsEveryTileOnce(t *testing.T) {
	sm := NewSpatialMap(2048, 2048, FloorCount)
	rng := rand.New(rand.NewSource(99))

	expected := make(map[vec.Vec3]struct{})
	for len(expected) < 1000 {
		// Плотный кластер и разреженные точки, чтобы тайлы делили секторы и этажи
		var p vec.Vec3
		if rng.Intn(2) == 0 {
			p = pos(rng.Intn(40), rng.Intn(40), rng.Intn(3))
		} else {
			p = pos(rng.Intn(2048), rng.Intn(2048), rng.Intn(FloorCount))
		}
		expected[p] = struct{}{}
		sm.GetOrCreateTile(p, nil)
	}

	seen := make(map[vec.Vec3]int)
	for tile := range sm.All() {
		seen[tile.Position()]++
	}

	assert.Len(t, seen, len(expected))
	for p, n := range seen {
		_, ok := expected[p]
		assert.True(t, ok, p.String())
		assert.Equal(t, 1, n, p.String())
	}
}

func TestIteratorCloneIsIndependent(t *testing.T) {
	sm := NewSpatialMap(256, 256, 2)
	for _, p := range []vec.Vec3{pos(1, 1, 0), pos(2, 1, 0), pos(200, 200, 1)} {
		sm.GetOrCreateTile(p, nil)
	}

	it := sm.Begin()
	clone := it.Clone()
	assert.True(t, it.Equal(clone))

	it.Next()
	assert.False(t, it.Equal(clone))
	p, ok := clone.Position()
	require.True(t, ok)
	assert.Equal(t, pos(1, 1, 0), p)

	clone.Next()
	assert.True(t, it.Equal(clone))

	assert.Equal(t, []vec.Vec3{pos(2, 1, 0), pos(200, 200, 1)}, collectPositions(it))
	assert.Equal(t, []vec.Vec3{pos(2, 1, 0), pos(200, 200, 1)}, collectPositions(clone))
}

func TestIteratorSkipsFloorsOutsideMapRange(t *testing.T) {
	sm := NewSpatialMap(128, 128, 4)
	sm.GetOrCreateTile(pos(1, 1, 3), nil)

	// Запись напрямую в дерево, минуя проверку этажей карты
	_, created := sm.Root().GetOrCreateTile(pos(1, 1, 8), nil)
	require.True(t, created)

	assert.Equal(t, []vec.Vec3{pos(1, 1, 3)}, collectPositions(sm.Begin()))
}

func TestIteratorStandaloneTree(t *testing.T) {
	root := newTestRoot()
	root.GetOrCreateTile(pos(70, 70, 1), nil)
	root.GetOrCreateTile(pos(70, 71, 1), nil)

	it := newTileIterator(root, MinFloor, MaxFloor)
	assert.Equal(t, []vec.Vec3{pos(70, 70, 1), pos(70, 71, 1)}, collectPositions(it))
	assert.True(t, it.Equal(exhaustedIterator(root, MinFloor, MaxFloor)))

	assert.False(t, newTileIterator(nil, MinFloor, MaxFloor).Valid())
}

func TestAllStopsEarly(t *testing.T) {
	sm := NewSpatialMap(128, 128, 1)
	for x := 0; x < 10; x++ {
		sm.GetOrCreateTile(pos(x, 0, 0), nil)
	}

	count := 0
	for range sm.All() {
		count++
		if count == 3 {
			break
		}
	}
	assert.Equal(t, 3, count)
}
