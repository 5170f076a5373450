package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/tilemap/internal/config"
	"github.com/annel0/tilemap/internal/generator"
	"github.com/annel0/tilemap/internal/logging"
	"github.com/annel0/tilemap/internal/observability"
	"github.com/annel0/tilemap/internal/procstat"
	"github.com/annel0/tilemap/internal/tilemap"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (default: $TILEMAP_CONFIG)")
		serve      = flag.Bool("serve", false, "Keep serving /metrics after generation until SIGINT/SIGTERM")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *serve); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, serve bool) error {
	manager := logging.GetLoggerManager()
	if err := manager.SetLogDir(cfg.Logging.Dir); err != nil {
		return fmt.Errorf("ошибка настройки каталога логов: %w", err)
	}
	defer manager.CloseAll()

	level := logging.ParseLevel(cfg.Logging.Level)
	for _, component := range []string{"tilemap", "generator"} {
		manager.MustGetLogger(component)
		if err := manager.SetLogLevel(component, level, logging.DEBUG); err != nil {
			return err
		}
	}
	logging.DefaultLogger().SetLevels(level, logging.DEBUG)

	if cfg.Telemetry.Enabled {
		shutdown, err := observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint, cfg.Telemetry.Insecure)
		if err != nil {
			return fmt.Errorf("ошибка инициализации OpenTelemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
			}
		}()
	}

	registry := prometheus.NewRegistry()
	metrics := tilemap.NewMetrics(registry)

	var server *http.Server
	if port := cfg.Metrics.GetPort(); port > 0 {
		server = &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		}
		go func() {
			logging.Info("📈 Prometheus /metrics доступен по адресу %s", server.Addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
			}
		}()
		defer shutdownServer(context.Background(), server)
	}

	before, err := procstat.Take()
	if err != nil {
		logging.Warn("Не удалось снять показатели процесса: %v", err)
	}

	width, height, floors := cfg.World.GetWidth(), cfg.World.GetHeight(), cfg.World.GetFloors()
	sm := tilemap.NewSpatialMap(width, height, floors, tilemap.WithMetrics(metrics))
	logging.Info("🗺️  Карта %dx%dx%d, сектор %d, глубина дерева %d", width, height, floors, tilemap.SectorSize, tilemap.MaxDepth())

	gen := generator.NewTerrainGenerator(generator.Config{
		Seed:          cfg.Generator.Seed,
		NoiseScale:    cfg.Generator.NoiseScale,
		BiomeScale:    cfg.Generator.BiomeScale,
		ForestDensity: cfg.Generator.ForestDensity,
		MaxFloors:     cfg.Generator.MaxFloors,
	})

	if _, err := gen.Fill(ctx, sm, generator.Rect{Width: width, Height: height}); err != nil {
		return err
	}

	if cfg.Generator.ClearWidth > 0 && cfg.Generator.ClearHeight > 0 {
		area := generator.Rect{Width: cfg.Generator.ClearWidth, Height: cfg.Generator.ClearHeight}
		if _, err := gen.Clear(ctx, sm, area); err != nil {
			return err
		}
	}

	perFloor := make([]int, sm.Floors())
	for tile := range sm.All() {
		perFloor[tile.Position().Z]++
	}

	stats := sm.Stats()
	logging.Info("Узлов: %d (ветвей %d, терминальных листьев %d, занятых %d), секторов: %d, тайлов: %d",
		stats.Nodes, stats.Branches, stats.TerminalLeaves, stats.OccupiedLeaves, stats.Sectors, stats.Tiles)
	for z, count := range perFloor {
		if count > 0 {
			logging.Info("   этаж %2d: %d тайлов", z, count)
		}
	}

	after, err := procstat.Take()
	if err == nil {
		logging.Info("Процесс: %s, прирост кучи %.1fMB", after, procstat.HeapDelta(before, after))
	}

	if serve && server != nil {
		logging.Info("Ожидание сигнала завершения...")
		<-ctx.Done()
	}

	logging.Info("👋 Готово")
	return nil
}

// shutdownServer останавливает HTTP сервер метрик, ожидая активные запросы не дольше 5 секунд
func shutdownServer(ctx context.Context, server *http.Server) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Warn("Ошибка остановки Prometheus HTTP сервера: %v", err)
	}
}
