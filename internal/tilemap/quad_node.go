package tilemap

import (
	"sort"

	"github.com/annel0/tilemap/internal/vec"
)

// Quadrant — один из четырёх равных квадратов, на которые делится узел
type Quadrant int

const (
	NorthWest Quadrant = iota
	NorthEast
	SouthWest
	SouthEast
)

// String возвращает короткое имя квадранта
func (q Quadrant) String() string {
	switch q {
	case NorthWest:
		return "NW"
	case NorthEast:
		return "NE"
	case SouthWest:
		return "SW"
	case SouthEast:
		return "SE"
	default:
		return "??"
	}
}

// floorEntry связывает этаж с сектором терминального листа
type floorEntry struct {
	level  int
	sector *FloorSector
}

// QuadNode — узел квадродерева с квадратной областью size×size в точке (x, y).
//
// Узел либо лист (children == nil), либо ветка ровно с четырьмя потомками.
// Данные хранят только терминальные листья (depth == MaxDepth()): отсортированный
// по этажу список секторов, создаваемых при первой записи.
type QuadNode struct {
	x, y     int
	size     int
	depth    int
	children *[4]*QuadNode
	floors   []floorEntry
}

func newQuadNode(x, y, size, depth int) *QuadNode {
	return &QuadNode{
		x:     x,
		y:     y,
		size:  size,
		depth: depth,
	}
}

// Origin возвращает левый верхний угол области узла
func (n *QuadNode) Origin() vec.Vec2 {
	return vec.Vec2{X: n.x, Y: n.y}
}

// Size возвращает сторону области узла
func (n *QuadNode) Size() int {
	return n.size
}

// Depth возвращает глубину узла (корень — 0)
func (n *QuadNode) Depth() int {
	return n.depth
}

// IsLeaf возвращает true, если у узла нет потомков
func (n *QuadNode) IsLeaf() bool {
	return n.children == nil
}

// IsTerminal возвращает true для узлов максимальной глубины
func (n *QuadNode) IsTerminal() bool {
	return n.depth >= MaxDepth()
}

// Child возвращает потомка в квадранте или nil для листа
func (n *QuadNode) Child(q Quadrant) *QuadNode {
	if n.children == nil || q < NorthWest || q > SouthEast {
		return nil
	}
	return n.children[q]
}

// Contains проверяет, что точка лежит в области узла
func (n *QuadNode) Contains(x, y int) bool {
	return x >= n.x && x < n.x+n.size && y >= n.y && y < n.y+n.size
}

// quadrantOf выбирает квадрант по средней линии. Точка на границе относится
// к восточной/южной половине. Одно и то же правило используется при разбиении,
// поиске и удалении.
func (n *QuadNode) quadrantOf(x, y int) Quadrant {
	half := n.size / 2
	q := NorthWest
	if x >= n.x+half {
		q |= NorthEast
	}
	if y >= n.y+half {
		q |= SouthWest
	}
	return q
}

// subdivide создаёт сразу всех четырёх потомков
func (n *QuadNode) subdivide() bool {
	if n.children != nil {
		return true
	}
	if n.IsTerminal() {
		mapLogger.Critical("subdivide: терминальный узел (%d,%d) глубины %d не делится", n.x, n.y, n.depth)
		return false
	}

	half := n.size / 2
	if half == 0 {
		mapLogger.Critical("subdivide: узел (%d,%d) размера %d даст потомков нулевого размера", n.x, n.y, n.size)
		return false
	}

	depth := n.depth + 1
	n.children = &[4]*QuadNode{
		NorthWest: newQuadNode(n.x, n.y, half, depth),
		NorthEast: newQuadNode(n.x+half, n.y, half, depth),
		SouthWest: newQuadNode(n.x, n.y+half, half, depth),
		SouthEast: newQuadNode(n.x+half, n.y+half, half, depth),
	}
	return true
}

// findFloor ищет этаж в отсортированном списке секторов
func (n *QuadNode) findFloor(level int) (int, bool) {
	i := sort.Search(len(n.floors), func(i int) bool {
		return n.floors[i].level >= level
	})
	return i, i < len(n.floors) && n.floors[i].level == level
}

func (n *QuadNode) sector(level int) *FloorSector {
	if i, ok := n.findFloor(level); ok {
		return n.floors[i].sector
	}
	return nil
}

func (n *QuadNode) sectorForWrite(level int) *FloorSector {
	i, ok := n.findFloor(level)
	if ok {
		return n.floors[i].sector
	}

	sector := NewFloorSector(level)
	n.floors = append(n.floors, floorEntry{})
	copy(n.floors[i+1:], n.floors[i:])
	n.floors[i] = floorEntry{level: level, sector: sector}
	return sector
}

func (n *QuadNode) dropFloor(i int) {
	n.floors = append(n.floors[:i], n.floors[i+1:]...)
	if len(n.floors) == 0 {
		n.floors = nil
	}
}

// Floors возвращает этажи, для которых у терминального листа есть сектор
func (n *QuadNode) Floors() []int {
	levels := make([]int, 0, len(n.floors))
	for _, entry := range n.floors {
		levels = append(levels, entry.level)
	}
	return levels
}

// terminalFor спускается к листу, содержащему точку. Если create == true,
// недостающие ветки создаются по пути.
func (n *QuadNode) terminalFor(x, y int, create bool) *QuadNode {
	node := n
	for !node.IsTerminal() {
		if node.children == nil {
			if !create {
				return nil
			}
			if !node.subdivide() {
				return nil
			}
		}
		node = node.children[node.quadrantOf(x, y)]
	}

	if node.children != nil {
		mapLogger.Critical("терминальный узел (%d,%d) глубины %d имеет потомков", node.x, node.y, node.depth)
		return nil
	}
	return node
}

// GetTile возвращает тайл в позиции или nil. Поиск никогда не меняет дерево.
func (n *QuadNode) GetTile(pos vec.Vec3) *Tile {
	if !n.Contains(pos.X, pos.Y) {
		return nil
	}

	leaf := n.terminalFor(pos.X, pos.Y, false)
	if leaf == nil {
		return nil
	}

	sector := leaf.sector(pos.Z)
	if sector == nil {
		return nil
	}
	return sector.Get(pos.X-leaf.x, pos.Y-leaf.y)
}

// GetOrCreateTile возвращает тайл в позиции, создавая ветки, сектор и сам тайл
// при необходимости. Второе значение равно true, если тайл был создан.
// Позиция вне области узла — ошибка вызывающего, результат nil.
func (n *QuadNode) GetOrCreateTile(pos vec.Vec3, assets AssetProvider) (*Tile, bool) {
	leaf := n.leafForWrite(pos)
	if leaf == nil {
		return nil, false
	}

	sector := leaf.sectorForWrite(pos.Z)
	tile, created := sector.GetOrCreate(pos.X-leaf.x, pos.Y-leaf.y, pos, assets)
	if tile == nil {
		mapLogger.Critical("лист (%d,%d) размера %d не вмещается в сектор %d", leaf.x, leaf.y, leaf.size, SectorSize)
		if i, ok := leaf.findFloor(pos.Z); ok && sector.IsEmpty() {
			leaf.dropFloor(i)
		}
	}
	return tile, created
}

// SetTile кладёт тайл в позицию, заменяя прежний. nil удаляет тайл.
func (n *QuadNode) SetTile(pos vec.Vec3, tile *Tile) bool {
	if tile == nil {
		n.RemoveTile(pos)
		return true
	}

	leaf := n.leafForWrite(pos)
	if leaf == nil {
		return false
	}

	leaf.sectorForWrite(pos.Z).Set(pos.X-leaf.x, pos.Y-leaf.y, tile)
	return true
}

func (n *QuadNode) leafForWrite(pos vec.Vec3) *QuadNode {
	if !n.Contains(pos.X, pos.Y) {
		mapLogger.Error("запись %s вне узла (%d,%d) размера %d", pos, n.x, n.y, n.size)
		return nil
	}
	if !IsFloorValid(pos.Z) {
		mapLogger.Error("запись %s: этаж вне диапазона [%d, %d]", pos, MinFloor, MaxFloor)
		return nil
	}
	return n.terminalFor(pos.X, pos.Y, true)
}

// RemoveTile удаляет тайл в позиции. Опустевший сектор убирается из листа,
// а ветки на обратном пути схлопываются через cleanTree.
func (n *QuadNode) RemoveTile(pos vec.Vec3) bool {
	if !n.Contains(pos.X, pos.Y) {
		return false
	}

	if n.IsTerminal() {
		if n.children != nil {
			mapLogger.Critical("терминальный узел (%d,%d) глубины %d имеет потомков", n.x, n.y, n.depth)
			return false
		}

		i, ok := n.findFloor(pos.Z)
		if !ok {
			return false
		}
		sector := n.floors[i].sector
		if !sector.Remove(pos.X-n.x, pos.Y-n.y) {
			return false
		}
		if sector.IsEmpty() {
			n.dropFloor(i)
		}
		return true
	}

	if n.children == nil {
		return false
	}
	if !n.children[n.quadrantOf(pos.X, pos.Y)].RemoveTile(pos) {
		return false
	}

	n.cleanTree()
	return true
}

// cleanTree схлопывает ветку в пустой лист, если все четыре потомка — пустые листья.
// Проверяется только один уровень: RemoveTile вызывает его на каждом узле пути
// снизу вверх, так что к моменту проверки потомки уже очищены.
func (n *QuadNode) cleanTree() bool {
	if n.children == nil {
		return false
	}
	for _, child := range n.children {
		if child.children != nil || !child.IsEmpty() {
			return false
		}
	}
	n.children = nil
	return true
}

// prune обходит всё поддерево: убирает пустые секторы и схлопывает пустые ветки.
// Возвращает количество схлопнутых веток.
func (n *QuadNode) prune() int {
	if n.children == nil {
		for i := len(n.floors) - 1; i >= 0; i-- {
			if n.floors[i].sector.IsEmpty() {
				n.dropFloor(i)
			}
		}
		return 0
	}

	collapsed := 0
	for _, child := range n.children {
		collapsed += child.prune()
	}
	if n.cleanTree() {
		collapsed++
	}
	return collapsed
}

// IsEmpty возвращает true, если в поддереве нет ни одного тайла
func (n *QuadNode) IsEmpty() bool {
	if n.children != nil {
		for _, child := range n.children {
			if !child.IsEmpty() {
				return false
			}
		}
		return true
	}

	for _, entry := range n.floors {
		if !entry.sector.IsEmpty() {
			return false
		}
	}
	return true
}
