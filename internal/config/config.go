package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации утилит карты
type Config struct {
	World     WorldConfig     `yaml:"world"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// WorldConfig задаёт объявленные границы мира
type WorldConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Floors int `yaml:"floors"`
}

// GeneratorConfig параметры заполнения карты
type GeneratorConfig struct {
	Seed          int64   `yaml:"seed"`
	NoiseScale    float64 `yaml:"noise_scale"`
	BiomeScale    float64 `yaml:"biome_scale"`
	ForestDensity float64 `yaml:"forest_density"`
	MaxFloors     int     `yaml:"max_floors"`
	// Область, которая очищается после генерации (0 — не очищать)
	ClearWidth  int `yaml:"clear_width"`
	ClearHeight int `yaml:"clear_height"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
}

type MetricsConfig struct {
	Port int `yaml:"port"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	// Адрес OTLP коллектора host:port; пустая строка — OTEL_EXPORTER_OTLP_ENDPOINT или localhost:4318
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Default возвращает конфигурацию по умолчанию. Размеры мира остаются нулевыми:
// их значения выбирают GetWidth/GetHeight/GetFloors (env, затем встроенные).
func Default() *Config {
	return &Config{
		Generator: GeneratorConfig{
			Seed:          12345,
			NoiseScale:    0.05,
			BiomeScale:    0.02,
			ForestDensity: 0.05,
			MaxFloors:     4,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "tilemap-mapgen",
		},
	}
}

// GetWidth возвращает ширину мира с поддержкой fallback значений
func (w *WorldConfig) GetWidth() int {
	return getIntWithEnvFallback(w.Width, "TILEMAP_WIDTH", 2048)
}

// GetHeight возвращает высоту мира с поддержкой fallback значений
func (w *WorldConfig) GetHeight() int {
	return getIntWithEnvFallback(w.Height, "TILEMAP_HEIGHT", 2048)
}

// GetFloors возвращает количество этажей с поддержкой fallback значений
func (w *WorldConfig) GetFloors() int {
	return getIntWithEnvFallback(w.Floors, "TILEMAP_FLOORS", 16)
}

// GetPort возвращает порт метрик; 0 означает, что HTTP-эндпоинт не поднимается
func (m *MetricsConfig) GetPort() int {
	return getIntWithEnvFallback(m.Port, "TILEMAP_METRICS_PORT", 0)
}

// getIntWithEnvFallback возвращает значение с приоритетом: config -> env -> default
func getIntWithEnvFallback(configValue int, envVar string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if value, err := strconv.Atoi(envVal); err == nil && value > 0 {
			return value
		}
	}

	return defaultValue
}

// Validate проверяет значения, которые нельзя исправить автоматически
func (c *Config) Validate() error {
	if c.World.Width < 0 || c.World.Height < 0 || c.World.Floors < 0 {
		return fmt.Errorf("размеры мира не могут быть отрицательными: %dx%dx%d",
			c.World.Width, c.World.Height, c.World.Floors)
	}
	if c.Generator.NoiseScale <= 0 || c.Generator.BiomeScale <= 0 {
		return fmt.Errorf("масштабы шума должны быть положительными")
	}
	if c.Generator.ForestDensity < 0 || c.Generator.ForestDensity > 1 {
		return fmt.Errorf("forest_density вне [0, 1]: %v", c.Generator.ForestDensity)
	}
	if c.Metrics.Port < 0 || c.Metrics.Port > 65535 {
		return fmt.Errorf("некорректный порт метрик: %d", c.Metrics.Port)
	}
	return nil
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV TILEMAP_CONFIG,
// а без него возвращает Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("TILEMAP_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения конфигурации %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора конфигурации %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
