package tilemap

// Stats описывает занятость дерева: сколько узлов, секторов и тайлов реально создано
type Stats struct {
	Nodes    int
	Branches int
	Leaves   int
	// TerminalLeaves — все листья максимальной глубины, включая пустых соседей,
	// которые появляются при разбиении родителя
	TerminalLeaves int
	// OccupiedLeaves — терминальные листья, у которых есть хотя бы один сектор
	OccupiedLeaves int
	Sectors        int
	Tiles          int
	MaxDepth       int // Максимальная глубина существующих узлов
}

func collectStats(n *QuadNode, stats *Stats) {
	stats.Nodes++
	if n.depth > stats.MaxDepth {
		stats.MaxDepth = n.depth
	}

	if n.children != nil {
		stats.Branches++
		for _, child := range n.children {
			collectStats(child, stats)
		}
		return
	}

	stats.Leaves++
	if n.IsTerminal() {
		stats.TerminalLeaves++
	}
	if len(n.floors) > 0 {
		stats.OccupiedLeaves++
	}
	for _, entry := range n.floors {
		stats.Sectors++
		stats.Tiles += entry.sector.Count()
	}
}
