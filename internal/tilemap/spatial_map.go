package tilemap

import (
	"iter"

	"github.com/annel0/tilemap/internal/vec"
)

// SpatialMap — точка входа в хранилище тайлов. Проверяет границы мира
// и передаёт операции корневому узлу квадродерева.
//
// Карта рассчитана на одного писателя. Читать параллельно можно только пока
// никто не пишет: разбиение и схлопывание меняют дерево на месте.
type SpatialMap struct {
	root     *QuadNode
	rootSize int
	width    int
	height   int
	floors   int
	metrics  *Metrics
}

// Option настраивает SpatialMap при создании
type Option func(*SpatialMap)

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *Metrics) Option {
	return func(sm *SpatialMap) {
		sm.metrics = m
	}
}

// NewSpatialMap создаёт пустую карту width×height с floors этажами.
// Размеры больше допустимых обрезаются с диагностикой.
func NewSpatialMap(width, height, floors int, opts ...Option) *SpatialMap {
	width = clampDimension("width", width, MaxMapWidth)
	height = clampDimension("height", height, MaxMapHeight)
	if floors < 1 || floors > FloorCount {
		mapLogger.Error("NewSpatialMap: количество этажей %d вне [1, %d]", floors, FloorCount)
		floors = min(max(floors, 1), FloorCount)
	}

	rootSize := rootSizeFor(width, height)
	sm := &SpatialMap{
		root:     newQuadNode(0, 0, rootSize, 0),
		rootSize: rootSize,
		width:    width,
		height:   height,
		floors:   floors,
	}
	for _, opt := range opts {
		opt(sm)
	}

	mapLogger.Debug("Создана карта %dx%dx%d, корень %d, глубина %d", width, height, floors, rootSize, MaxDepth())
	return sm
}

func clampDimension(name string, value, limit int) int {
	if value < 1 || value > limit {
		mapLogger.Error("NewSpatialMap: %s=%d вне [1, %d]", name, value, limit)
		return min(max(value, 1), limit)
	}
	return value
}

// rootSizeFor возвращает наименьшую степень двойки, кратную SectorSize, которая
// покрывает карту и не меньше размера, задаваемого MaxDepth
func rootSizeFor(width, height int) int {
	size := SectorSize
	for size < max(width, height) {
		size <<= 1
	}
	if minSize := SectorSize << MaxDepth(); size < minSize {
		size = minSize
	}
	return size
}

// Width возвращает ширину мира
func (sm *SpatialMap) Width() int { return sm.width }

// Height возвращает высоту мира
func (sm *SpatialMap) Height() int { return sm.height }

// Floors возвращает количество этажей
func (sm *SpatialMap) Floors() int { return sm.floors }

// Root возвращает корневой узел
func (sm *SpatialMap) Root() *QuadNode { return sm.root }

// IsPositionValid проверяет, что позиция лежит внутри мира
func (sm *SpatialMap) IsPositionValid(pos vec.Vec3) bool {
	return pos.X >= 0 && pos.X < sm.width &&
		pos.Y >= 0 && pos.Y < sm.height &&
		IsFloorValid(pos.Z) && pos.Z < sm.floors
}

// GetTile возвращает тайл или nil. Позиции вне мира просто не найдены.
func (sm *SpatialMap) GetTile(pos vec.Vec3) *Tile {
	if !sm.IsPositionValid(pos) {
		return nil
	}
	return sm.root.GetTile(pos)
}

// GetOrCreateTile возвращает тайл в позиции, создавая его при необходимости.
// assets передаётся в новый тайл без изменений. Второе значение — был ли тайл создан.
func (sm *SpatialMap) GetOrCreateTile(pos vec.Vec3, assets AssetProvider) (*Tile, bool) {
	if !sm.IsPositionValid(pos) {
		mapLogger.Warn("GetOrCreateTile: позиция %s вне карты %dx%dx%d", pos, sm.width, sm.height, sm.floors)
		sm.metrics.writeRejected(rejectOutOfBounds)
		return nil, false
	}

	tile, created := sm.root.GetOrCreateTile(pos, assets)
	if created {
		sm.metrics.tileCreated()
	}
	return tile, created
}

// RemoveTile удаляет тайл. Повторное удаление возвращает false и не является ошибкой.
func (sm *SpatialMap) RemoveTile(pos vec.Vec3) bool {
	if !sm.IsPositionValid(pos) {
		mapLogger.Warn("RemoveTile: позиция %s вне карты", pos)
		sm.metrics.writeRejected(rejectOutOfBounds)
		return false
	}

	if !sm.root.RemoveTile(pos) {
		return false
	}
	sm.metrics.tileRemoved()
	return true
}

// SetTile заменяет содержимое позиции. nil очищает позицию.
// Тайл, записанная позиция которого не совпадает с pos, отклоняется.
func (sm *SpatialMap) SetTile(pos vec.Vec3, tile *Tile) bool {
	if !sm.IsPositionValid(pos) {
		mapLogger.Warn("SetTile: позиция %s вне карты", pos)
		sm.metrics.writeRejected(rejectOutOfBounds)
		return false
	}

	if tile == nil {
		if sm.root.RemoveTile(pos) {
			sm.metrics.tileRemoved()
		}
		return true
	}

	if !tile.Position().Equals(pos) {
		mapLogger.Warn("SetTile: тайл с позицией %s нельзя записать в %s", tile.Position(), pos)
		sm.metrics.writeRejected(rejectPositionMismatch)
		return false
	}

	if !sm.root.SetTile(pos, tile) {
		return false
	}
	sm.metrics.tileSet()
	return true
}

// IsEmpty возвращает true, если на карте нет тайлов
func (sm *SpatialMap) IsEmpty() bool {
	return sm.root.IsEmpty()
}

// Clear удаляет все тайлы и всё дерево
func (sm *SpatialMap) Clear() {
	sm.root = newQuadNode(0, 0, sm.rootSize, 0)
}

// Prune выполняет полный проход очистки: удаляет пустые секторы и схлопывает
// все пустые ветки. Возвращает количество схлопнутых веток.
func (sm *SpatialMap) Prune() int {
	collapsed := sm.root.prune()
	sm.metrics.pruned(collapsed)
	return collapsed
}

// Stats обходит дерево и считает узлы, секторы и тайлы
func (sm *SpatialMap) Stats() Stats {
	var stats Stats
	collectStats(sm.root, &stats)
	sm.metrics.Observe(stats)
	return stats
}

// Begin возвращает итератор, стоящий на первом тайле
func (sm *SpatialMap) Begin() *TileIterator {
	return newTileIterator(sm.root, MinFloor, sm.floors-1)
}

// End возвращает закончившийся итератор для сравнения через Equal
func (sm *SpatialMap) End() *TileIterator {
	return exhaustedIterator(sm.root, MinFloor, sm.floors-1)
}

// All позволяет обходить карту через range:
//
//	for tile := range sm.All() { ... }
func (sm *SpatialMap) All() iter.Seq[*Tile] {
	return func(yield func(*Tile) bool) {
		for it := sm.Begin(); it.Valid(); it.Next() {
			if !yield(it.Tile()) {
				return
			}
		}
	}
}
