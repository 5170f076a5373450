package generator

import (
	"context"
	"testing"

	"github.com/annel0/tilemap/internal/tilemap"
	"github.com/annel0/tilemap/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tileSnapshot struct {
	Pos    vec.Vec3
	Ground uint16
	Items  []uint16
}

func snapshot(sm *tilemap.SpatialMap) []tileSnapshot {
	var result []tileSnapshot
	for tile := range sm.All() {
		result = append(result, tileSnapshot{
			Pos:    tile.Position(),
			Ground: tile.Ground,
			Items:  append([]uint16(nil), tile.Items...),
		})
	}
	return result
}

func TestFillIsDeterministic(t *testing.T) {
	area := Rect{X: 0, Y: 0, Width: 96, Height: 96}

	first := tilemap.NewSpatialMap(128, 128, 4)
	second := tilemap.NewSpatialMap(128, 128, 4)

	r1, err := NewTerrainGenerator(DefaultConfig(12345)).Fill(context.Background(), first, area)
	require.NoError(t, err)
	r2, err := NewTerrainGenerator(DefaultConfig(12345)).Fill(context.Background(), second, area)
	require.NoError(t, err)

	assert.Equal(t, 96*96, r1.Visited)
	assert.Greater(t, r1.Created, 0)
	assert.Equal(t, r1.Created, r2.Created)
	assert.NotEqual(t, r1.RunID, r2.RunID)
	assert.Equal(t, snapshot(first), snapshot(second))
	assert.Equal(t, r1.Created, first.Stats().Tiles)
}

func TestFillRespectsMapBounds(t *testing.T) {
	sm := tilemap.NewSpatialMap(40, 30, 2)
	gen := NewTerrainGenerator(DefaultConfig(7))

	report, err := gen.Fill(context.Background(), sm, Rect{X: -10, Y: -10, Width: 100, Height: 100})
	require.NoError(t, err)
	assert.Equal(t, 40*30, report.Visited)

	for tile := range sm.All() {
		assert.True(t, sm.IsPositionValid(tile.Position()), tile.Position().String())
		assert.Less(t, tile.Position().Z, 2)
	}
}

func TestClearEmptiesArea(t *testing.T) {
	sm := tilemap.NewSpatialMap(128, 128, 4)
	gen := NewTerrainGenerator(DefaultConfig(99))
	area := Rect{X: 0, Y: 0, Width: 128, Height: 128}

	filled, err := gen.Fill(context.Background(), sm, area)
	require.NoError(t, err)

	cleared, err := gen.Clear(context.Background(), sm, area)
	require.NoError(t, err)
	assert.Equal(t, filled.Created, cleared.Removed)
	assert.True(t, sm.IsEmpty())
	assert.True(t, sm.Root().IsLeaf())
}

func TestFillStopsOnCancelledContext(t *testing.T) {
	sm := tilemap.NewSpatialMap(128, 128, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := NewTerrainGenerator(DefaultConfig(1)).Fill(ctx, sm, Rect{Width: 64, Height: 64})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, report.Created)
	assert.True(t, sm.IsEmpty())

	_, err = NewTerrainGenerator(DefaultConfig(1)).Clear(ctx, sm, Rect{Width: 64, Height: 64})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoiseFieldRange(t *testing.T) {
	field := newNoiseField(5, 0.05)
	for x := 0; x < 50; x++ {
		v := field.At(x, x*3)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}
