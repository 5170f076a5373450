package tilemap

import "github.com/annel0/tilemap/internal/vec"

// FloorSector хранит плотную сетку SectorSize×SectorSize тайлов одного этажа
// в пределах одного терминального листа. Индекс слота = localY*SectorSize+localX.
type FloorSector struct {
	level int
	tiles [SectorArea]*Tile
}

// NewFloorSector создаёт пустой сектор для этажа
func NewFloorSector(level int) *FloorSector {
	return &FloorSector{level: level}
}

// Level возвращает этаж сектора
func (s *FloorSector) Level() int {
	return s.level
}

func slotIndex(localX, localY int) (int, bool) {
	if localX < 0 || localX >= SectorSize || localY < 0 || localY >= SectorSize {
		return 0, false
	}
	return localY*SectorSize + localX, true
}

// Get возвращает тайл по локальным координатам или nil
func (s *FloorSector) Get(localX, localY int) *Tile {
	idx, ok := slotIndex(localX, localY)
	if !ok {
		return nil
	}
	return s.tiles[idx]
}

// GetOrCreate возвращает существующий тайл или создаёт новый в позиции hint.
// Если этаж в hint не совпадает с этажом сектора, тайл создаётся на этаже сектора.
func (s *FloorSector) GetOrCreate(localX, localY int, hint vec.Vec3, assets AssetProvider) (*Tile, bool) {
	idx, ok := slotIndex(localX, localY)
	if !ok {
		return nil, false
	}
	if tile := s.tiles[idx]; tile != nil {
		return tile, false
	}

	pos := hint
	if pos.Z != s.level {
		mapLogger.Warn("GetOrCreate: этаж %d в позиции %s не совпадает с этажом сектора %d", pos.Z, hint, s.level)
		pos.Z = s.level
	}

	tile := NewTile(pos, assets)
	s.tiles[idx] = tile
	return tile, true
}

// Remove удаляет тайл. Возвращает true, если слот был занят.
func (s *FloorSector) Remove(localX, localY int) bool {
	idx, ok := slotIndex(localX, localY)
	if !ok || s.tiles[idx] == nil {
		return false
	}
	s.tiles[idx] = nil
	return true
}

// Set безусловно заменяет содержимое слота; nil очищает слот
func (s *FloorSector) Set(localX, localY int, tile *Tile) {
	idx, ok := slotIndex(localX, localY)
	if !ok {
		return
	}
	s.tiles[idx] = tile
}

// IsEmpty проверяет, что все слоты свободны
func (s *FloorSector) IsEmpty() bool {
	for _, tile := range s.tiles {
		if tile != nil {
			return false
		}
	}
	return true
}

// Count возвращает количество занятых слотов
func (s *FloorSector) Count() int {
	count := 0
	for _, tile := range s.tiles {
		if tile != nil {
			count++
		}
	}
	return count
}
