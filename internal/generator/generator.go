package generator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/annel0/tilemap/internal/logging"
	"github.com/annel0/tilemap/internal/tilemap"
	"github.com/annel0/tilemap/internal/vec"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Типы земли и предметов, которые ставит генератор
const (
	GroundWater uint16 = iota + 1
	GroundSand
	GroundGrass
	GroundStone

	ItemTree   uint16 = 100
	ItemCactus uint16 = 101
	ItemRock   uint16 = 102
)

// BiomeType представляет тип биома
type BiomeType int

const (
	BiomePlains BiomeType = iota
	BiomeDesert
	BiomeForest
	BiomeMountains
	BiomeWater
)

// Пороги высот для генерации
const (
	VoidMax       = 0.25 // Ниже — пустота, тайлы не создаются
	WaterMax      = 0.35 // Ниже — вода
	MountainStart = 0.70 // Выше — горы, камень поднимается на верхние этажи
)

var tracer = otel.Tracer("github.com/annel0/tilemap/internal/generator")

// Rect задаёт прямоугольную область карты
type Rect struct {
	X, Y          int
	Width, Height int
}

// clip обрезает область по границам карты
func (r Rect) clip(width, height int) Rect {
	x0, y0 := max(r.X, 0), max(r.Y, 0)
	x1, y1 := min(r.X+r.Width, width), min(r.Y+r.Height, height)
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Config — параметры генератора
type Config struct {
	Seed          int64
	NoiseScale    float64 // Масштаб основного шума (высота)
	BiomeScale    float64 // Масштаб шума биомов
	ForestDensity float64 // Вероятность дерева на равнине
	MaxFloors     int     // Сколько этажей могут занимать горы
}

// DefaultConfig возвращает параметры по умолчанию для сида
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:          seed,
		NoiseScale:    0.05,
		BiomeScale:    0.02,
		ForestDensity: 0.05,
		MaxFloors:     4,
	}
}

// Report описывает результат одного прохода генератора
type Report struct {
	RunID    string
	Visited  int // Просмотренные позиции
	Created  int // Созданные тайлы
	Removed  int // Удалённые тайлы
	Duration time.Duration
}

// TerrainGenerator заполняет карту ландшафтом по шуму Перлина.
// Результат детерминирован для заданного сида.
type TerrainGenerator struct {
	cfg    Config
	height noiseField
	biome  noiseField
	logger *logging.Logger
}

// NewTerrainGenerator создаёт генератор
func NewTerrainGenerator(cfg Config) *TerrainGenerator {
	if cfg.MaxFloors < 1 {
		cfg.MaxFloors = 1
	}
	return &TerrainGenerator{
		cfg:    cfg,
		height: newNoiseField(cfg.Seed, cfg.NoiseScale),
		biome:  newNoiseField(cfg.Seed+42, cfg.BiomeScale),
		logger: logging.GetGeneratorLogger(),
	}
}

// Fill заполняет область карты. Контекст проверяется перед каждой строкой.
func (g *TerrainGenerator) Fill(ctx context.Context, sm *tilemap.SpatialMap, area Rect) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx, span := tracer.Start(ctx, "generator.Fill")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", report.RunID),
		attribute.Int("area.width", area.Width),
		attribute.Int("area.height", area.Height),
	)

	start := time.Now()
	floors := min(g.cfg.MaxFloors, sm.Floors())
	area = area.clip(sm.Width(), sm.Height())

	for y := area.Y; y < area.Y+area.Height; y++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "fill cancelled")
			return report, fmt.Errorf("генерация прервана на строке %d: %w", y, err)
		}

		// Свой генератор случайных чисел на строку, чтобы результат не зависел от порядка обхода
		rng := rand.New(rand.NewSource(g.cfg.Seed + int64(y)*7919))
		for x := area.X; x < area.X+area.Width; x++ {
			report.Visited++
			report.Created += g.fillColumn(sm, x, y, floors, rng)
		}
	}

	report.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("tiles.created", report.Created))
	g.logger.Info("Генерация %s: просмотрено %d позиций, создано %d тайлов за %v",
		report.RunID, report.Visited, report.Created, report.Duration)
	return report, nil
}

// fillColumn создаёт тайлы одной позиции на всех нужных этажах
func (g *TerrainGenerator) fillColumn(sm *tilemap.SpatialMap, x, y, floors int, rng *rand.Rand) int {
	height := g.height.At(x, y)
	if height < VoidMax {
		return 0
	}

	biome := g.biomeFor(height, g.biome.At(x, y))
	ground, item := g.groundFor(biome, rng)

	created := 0
	tile, isNew := sm.GetOrCreateTile(vec.Vec3{X: x, Y: y, Z: tilemap.MinFloor}, nil)
	if tile == nil {
		return 0
	}
	if isNew {
		created++
	}
	tile.Ground = ground
	tile.Items = tile.Items[:0]
	if item != 0 {
		tile.Items = append(tile.Items, item)
	}

	if biome != BiomeMountains {
		return created
	}

	// Горы поднимаются на верхние этажи пропорционально высоте
	levels := 1 + int((height-MountainStart)/(1-MountainStart)*float64(floors-1))
	for z := 1; z < min(levels, floors); z++ {
		upper, isNew := sm.GetOrCreateTile(vec.Vec3{X: x, Y: y, Z: z}, nil)
		if upper == nil {
			break
		}
		if isNew {
			created++
		}
		upper.Ground = GroundStone
		upper.Items = append(upper.Items[:0], ItemRock)
	}
	return created
}

func (g *TerrainGenerator) biomeFor(height, biomeValue float64) BiomeType {
	switch {
	case height < WaterMax:
		return BiomeWater
	case height >= MountainStart:
		return BiomeMountains
	case biomeValue < 0.3:
		return BiomeDesert
	case biomeValue > 0.6:
		return BiomeForest
	default:
		return BiomePlains
	}
}

func (g *TerrainGenerator) groundFor(biome BiomeType, rng *rand.Rand) (uint16, uint16) {
	switch biome {
	case BiomeWater:
		return GroundWater, 0
	case BiomeMountains:
		return GroundStone, 0
	case BiomeDesert:
		if rng.Float64() < 0.02 {
			return GroundSand, ItemCactus
		}
		return GroundSand, 0
	case BiomeForest:
		if rng.Float64() < 0.15 {
			return GroundGrass, ItemTree
		}
		return GroundGrass, 0
	default:
		if rng.Float64() < g.cfg.ForestDensity {
			return GroundGrass, ItemTree
		}
		return GroundGrass, 0
	}
}

// Clear удаляет все тайлы области на всех этажах карты
func (g *TerrainGenerator) Clear(ctx context.Context, sm *tilemap.SpatialMap, area Rect) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	ctx, span := tracer.Start(ctx, "generator.Clear")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", report.RunID))

	start := time.Now()
	area = area.clip(sm.Width(), sm.Height())
	for y := area.Y; y < area.Y+area.Height; y++ {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "clear cancelled")
			return report, fmt.Errorf("очистка прервана на строке %d: %w", y, err)
		}
		for x := area.X; x < area.X+area.Width; x++ {
			report.Visited++
			for z := tilemap.MinFloor; z < sm.Floors(); z++ {
				if sm.RemoveTile(vec.Vec3{X: x, Y: y, Z: z}) {
					report.Removed++
				}
			}
		}
	}

	report.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("tiles.removed", report.Removed))
	g.logger.Info("Очистка %s: удалено %d тайлов за %v", report.RunID, report.Removed, report.Duration)
	return report, nil
}
