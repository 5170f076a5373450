package tilemap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annel0/tilemap/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRejectedWriteReachesLogDir(t *testing.T) {
	captureMapLog(t)
	manager := logging.GetLoggerManager()

	dir := t.TempDir()
	require.NoError(t, manager.SetLogDir(dir))
	t.Cleanup(func() { manager.SetLogDir("") })

	sm := NewSpatialMap(128, 128, 4)
	tile, created := sm.GetOrCreateTile(pos(500, 0, 0), nil)
	assert.Nil(t, tile)
	assert.False(t, created)
	require.NoError(t, mapLogger.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "tilemap_*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "[WARN] [tilemap] GetOrCreateTile")
}
