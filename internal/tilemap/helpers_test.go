package tilemap

import (
	"bytes"
	"os"
	"testing"

	"github.com/annel0/tilemap/internal/vec"
)

// captureMapLog перенаправляет диагностику ядра в буфер до конца теста
func captureMapLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	mapLogger.SetOutput(&buf)
	t.Cleanup(func() { mapLogger.SetOutput(os.Stdout) })
	return &buf
}

func newTestRoot() *QuadNode {
	return newQuadNode(0, 0, rootSizeFor(128, 128), 0)
}

func pos(x, y, z int) vec.Vec3 {
	return vec.Vec3{X: x, Y: y, Z: z}
}

type stubAssets struct{}

func (stubAssets) ItemName(id uint16) string { return "item" }
