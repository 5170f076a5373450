package tilemap

import "github.com/annel0/tilemap/internal/vec"

// AssetProvider описывает источник типов предметов и материалов, который
// редактор передаёт при создании тайлов. Ядро карты только пробрасывает его в Tile.
type AssetProvider interface {
	ItemName(id uint16) string
}

// Tile — содержимое одной позиции карты. Позиция задаётся при создании
// и больше не меняется.
type Tile struct {
	pos    vec.Vec3
	assets AssetProvider

	Ground  uint16                 // Идентификатор типа земли, 0 — пусто
	Items   []uint16               // Предметы на тайле снизу вверх
	Payload map[string]interface{} // Произвольные атрибуты (дома, зоны, флаги)
}

// NewTile создаёт пустой тайл в указанной позиции
func NewTile(pos vec.Vec3, assets AssetProvider) *Tile {
	return &Tile{
		pos:    pos,
		assets: assets,
	}
}

// Position возвращает абсолютную позицию тайла
func (t *Tile) Position() vec.Vec3 {
	return t.pos
}

// Assets возвращает провайдер, переданный при создании (может быть nil)
func (t *Tile) Assets() AssetProvider {
	return t.assets
}

// Clone создаёт независимую копию тайла в той же позиции.
// Используется слоем undo/redo для снимков состояния.
func (t *Tile) Clone() *Tile {
	clone := &Tile{
		pos:    t.pos,
		assets: t.assets,
		Ground: t.Ground,
	}
	if t.Items != nil {
		clone.Items = append([]uint16(nil), t.Items...)
	}
	if t.Payload != nil {
		clone.Payload = make(map[string]interface{}, len(t.Payload))
		for k, v := range t.Payload {
			clone.Payload[k] = v
		}
	}
	return clone
}
