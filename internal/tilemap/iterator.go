package tilemap

import "github.com/annel0/tilemap/internal/vec"

// iterFrame хранит состояние обхода одного узла.
// Для ветки child — следующий потомок, для терминального листа
// floor и slot — позиция построчного обхода текущего сектора.
type iterFrame struct {
	node  *QuadNode
	child int
	floor int
	slot  int
}

// TileIterator перебирает все тайлы дерева ровно по одному разу: узлы в прямом
// порядке (NW, NE, SW, SE), внутри листа этажи по возрастанию, внутри сектора
// слоты построчно.
//
// Итератор однопроходный. Изменение карты во время обхода не поддерживается:
// после любой записи итератор использовать нельзя.
type TileIterator struct {
	root     *QuadNode
	minFloor int
	maxFloor int
	stack    []iterFrame
	current  *Tile
}

// newTileIterator сразу переходит к первому тайлу или фиксирует, что дерево пусто
func newTileIterator(root *QuadNode, minFloor, maxFloor int) *TileIterator {
	it := &TileIterator{
		root:     root,
		minFloor: minFloor,
		maxFloor: maxFloor,
	}
	if root != nil {
		it.stack = append(it.stack, iterFrame{node: root})
		it.advance()
	}
	return it
}

// exhaustedIterator возвращает итератор в конечном состоянии
func exhaustedIterator(root *QuadNode, minFloor, maxFloor int) *TileIterator {
	return &TileIterator{
		root:     root,
		minFloor: minFloor,
		maxFloor: maxFloor,
	}
}

// Valid возвращает true, пока итератор указывает на тайл
func (it *TileIterator) Valid() bool {
	return it.current != nil
}

// Tile возвращает текущий тайл или nil после окончания обхода
func (it *TileIterator) Tile() *Tile {
	return it.current
}

// Position возвращает позицию текущего тайла
func (it *TileIterator) Position() (vec.Vec3, bool) {
	if it.current == nil {
		return vec.Vec3{}, false
	}
	return it.current.Position(), true
}

// Next переходит к следующему тайлу. После окончания обхода ничего не делает.
func (it *TileIterator) Next() {
	if it.current == nil && len(it.stack) == 0 {
		return
	}
	it.advance()
}

// Equal сравнивает итераторы: одинаковый текущий тайл и общий корень.
// Два закончившихся итератора одной карты равны.
func (it *TileIterator) Equal(other *TileIterator) bool {
	if it == nil || other == nil {
		return it == other
	}
	return it.root == other.root && it.current == other.current
}

// Clone возвращает независимую копию курсора
func (it *TileIterator) Clone() *TileIterator {
	clone := *it
	clone.stack = append([]iterFrame(nil), it.stack...)
	return &clone
}

func (it *TileIterator) advance() {
	it.current = nil

	for len(it.stack) > 0 {
		top := &it.stack[len(it.stack)-1]
		node := top.node

		if node.children != nil {
			if next := it.nextChild(top); next != nil {
				it.stack = append(it.stack, iterFrame{node: next})
				continue
			}
			it.pop()
			continue
		}

		if tile := it.scanLeaf(top); tile != nil {
			it.current = tile
			return
		}
		it.pop()
	}
}

// nextChild возвращает следующего непосещённого потомка, в котором могут быть тайлы
func (it *TileIterator) nextChild(frame *iterFrame) *QuadNode {
	for frame.child < len(frame.node.children) {
		child := frame.node.children[frame.child]
		frame.child++
		if child.children != nil || len(child.floors) > 0 {
			return child
		}
	}
	return nil
}

// scanLeaf продолжает построчный обход секторов листа с сохранённой позиции
func (it *TileIterator) scanLeaf(frame *iterFrame) *Tile {
	floors := frame.node.floors
	for frame.floor < len(floors) {
		entry := floors[frame.floor]
		if entry.level >= it.minFloor && entry.level <= it.maxFloor {
			for frame.slot < SectorArea {
				tile := entry.sector.tiles[frame.slot]
				frame.slot++
				if tile != nil {
					return tile
				}
			}
		}
		frame.floor++
		frame.slot = 0
	}
	return nil
}

func (it *TileIterator) pop() {
	it.stack = it.stack[:len(it.stack)-1]
}
