// Package weather produces the outdoor ambient that zones drift toward.
package weather

import (
	"math"

	"github.com/ojrac/opensimplex-go"

	"growsim.app/internal/sim/facility"
)

// Model is seeded once per game and holds no mutable state, so the ambient is
// a function of (seed, tick) alone.
type Model struct {
	base      facility.Environment
	amplitude float64
	temp      opensimplex.Noise
	humidity  opensimplex.Noise
}

const (
	// noise is sampled along a line, one step per hour
	hourFrequency = 1.0 / 72
	octaves       = 3
	persistence   = 0.5
	// humidity swings opposite to temperature, in %rh per degree of amplitude
	humidityPerDegree = 2.0
)

func New(seed int64, base facility.Environment, amplitudeC float64) *Model {
	return &Model{
		base:      base,
		amplitude: amplitudeC,
		temp:      opensimplex.NewNormalized(seed),
		humidity:  opensimplex.NewNormalized(seed + 1),
	}
}

func (m *Model) Ambient(tick uint64) facility.Environment {
	if m.amplitude == 0 {
		return m.base
	}
	t := float64(tick)
	diurnal := math.Sin(2 * math.Pi * (math.Mod(t, 24) - 9) / 24)
	drift := octaveNoise(m.temp, t, 0, octaves, hourFrequency, persistence)*2 - 1
	wet := octaveNoise(m.humidity, t, 0, octaves, hourFrequency, persistence)*2 - 1

	out := m.base
	out.TemperatureC += m.amplitude * (0.6*diurnal + 0.4*drift)
	out.HumidityRH += m.amplitude * humidityPerDegree * (wet - 0.5*diurnal)
	out.HumidityRH = math.Max(0, math.Min(100, out.HumidityRH))
	return out
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxVal
}
