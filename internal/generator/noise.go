package generator

import (
	"github.com/aquilax/go-perlin"
)

// noiseField — двумерный шум Перлина, нормированный в диапазон [0, 1]
type noiseField struct {
	perlin *perlin.Perlin
	scale  float64
}

func newNoiseField(seed int64, scale float64) noiseField {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	return noiseField{
		perlin: perlin.NewPerlin(alpha, beta, n, seed),
		scale:  scale,
	}
}

// At возвращает значение шума для координат карты
func (f noiseField) At(x, y int) float64 {
	noise := f.perlin.Noise2D(float64(x)*f.scale, float64(y)*f.scale)
	value := (noise + 1.0) / 2.0
	switch {
	case value < 0:
		return 0
	case value > 1:
		return 1
	default:
		return value
	}
}
