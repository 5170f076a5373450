package tilemap

import (
	"sync"

	"github.com/annel0/tilemap/internal/logging"
)

// Параметры карты задаются при компиляции и не меняются во время работы.
const (
	// SectorSize — сторона квадратного сектора, который хранит один терминальный лист на одном этаже
	SectorSize = 32
	// SectorArea — количество слотов в секторе
	SectorArea = SectorSize * SectorSize

	MinFloor   = 0
	FloorCount = 16
	MaxFloor   = FloorCount - 1

	// Максимальные размеры карты, из которых выводится глубина дерева
	MaxMapWidth  = 65536
	MaxMapHeight = 65536
)

var (
	maxDepthOnce sync.Once
	maxDepth     int
)

// mapLogger получает диагностику ядра: отклонённые записи и нарушения инвариантов
var mapLogger = logging.GetMapLogger()

// MaxDepth возвращает глубину терминальных листьев: наименьшее d,
// при котором SectorSize·2^d покрывает максимальный размер карты.
// Значение вычисляется один раз.
func MaxDepth() int {
	maxDepthOnce.Do(func() {
		maxDepth = depthFor(SectorSize, max(MaxMapWidth, MaxMapHeight))
	})
	return maxDepth
}

func depthFor(sectorSize, extent int) int {
	depth := 0
	for sectorSize<<depth < extent {
		depth++
	}
	return depth
}

// IsFloorValid проверяет, что этаж лежит в глобальных границах
func IsFloorValid(z int) bool {
	return z >= MinFloor && z <= MaxFloor
}
