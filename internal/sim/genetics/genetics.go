// Package genetics breeds new strains from two parents.
package genetics

import (
	"errors"
	"math"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/rng"
)

var ErrInvalidMutation = errors.New("mutation factor must be within [0,1]")

const DefaultMutationFactor = 0.1

func ValidMutation(f float64) bool { return f >= 0 && f <= 1 }

// Breed blends a and b. Genotype fractions are averaged and renormalized;
// numeric traits are averaged then scaled by 1 +/- mutationFactor/2. Every
// draw comes from r, in a fixed order.
func Breed(a, b catalogs.StrainBlueprint, id, name string, mutationFactor float64, r rng.Source) (catalogs.StrainBlueprint, error) {
	if !ValidMutation(mutationFactor) {
		return catalogs.StrainBlueprint{}, ErrInvalidMutation
	}
	mutate := func(x float64) float64 {
		return x * (1 + (r.Float()*2-1)*mutationFactor/2)
	}
	avg := func(x, y float64) float64 { return (x + y) / 2 }

	g := catalogs.Genotype{
		Sativa:    avg(a.Genotype.Sativa, b.Genotype.Sativa),
		Indica:    avg(a.Genotype.Indica, b.Genotype.Indica),
		Ruderalis: avg(a.Genotype.Ruderalis, b.Genotype.Ruderalis),
	}
	if sum := g.Sativa + g.Indica + g.Ruderalis; sum > 0 {
		g.Sativa /= sum
		g.Indica /= sum
		g.Ruderalis /= sum
	}

	child := catalogs.StrainBlueprint{
		ID:       id,
		Name:     name,
		Lineage:  catalogs.Lineage{Parents: []string{a.Name, b.Name}},
		Genotype: g,
		Chemotype: catalogs.Chemotype{
			THC: clamp01(mutate(avg(a.Chemotype.THC, b.Chemotype.THC))),
			CBD: clamp01(mutate(avg(a.Chemotype.CBD, b.Chemotype.CBD))),
		},
		GerminationRate: clamp01(mutate(avg(a.GerminationRate, b.GerminationRate))),
		Growth: catalogs.GrowthModel{
			GrowthRate: mutate(avg(a.Growth.GrowthRate, b.Growth.GrowthRate)),
			Noise: catalogs.NoiseConfig{
				Enabled: a.Growth.Noise.Enabled || b.Growth.Noise.Enabled,
				Pct:     avg(a.Growth.Noise.Pct, b.Growth.Noise.Pct),
			},
		},
		Photoperiod: catalogs.Photoperiod{
			VegetationDays: mutate(avg(a.Photoperiod.VegetationDays, b.Photoperiod.VegetationDays)),
			FloweringDays:  mutate(avg(a.Photoperiod.FloweringDays, b.Photoperiod.FloweringDays)),
		},
		Environment: catalogs.EnvPreferences{
			IdealTemperature: catalogs.PhaseRange{
				Vegetation: avgRange(a.Environment.IdealTemperature.Vegetation, b.Environment.IdealTemperature.Vegetation),
				Flowering:  avgRange(a.Environment.IdealTemperature.Flowering, b.Environment.IdealTemperature.Flowering),
			},
			// light schedules are discrete and inherited from the first parent
			LightCycle: a.Environment.LightCycle,
		},
		NutrientDemand: avgDemand(a.NutrientDemand, b.NutrientDemand),
		WaterDemand:    avgDemand(a.WaterDemand, b.WaterDemand),
	}
	return child, nil
}

func avgRange(a, b [2]float64) [2]float64 {
	return [2]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2}
}

func avgDemand(a, b catalogs.StageDemand) catalogs.StageDemand {
	return catalogs.StageDemand{
		Seedling:   (a.Seedling + b.Seedling) / 2,
		Vegetation: (a.Vegetation + b.Vegetation) / 2,
		Flowering:  (a.Flowering + b.Flowering) / 2,
	}
}

func clamp01(x float64) float64 { return math.Max(0, math.Min(1, x)) }
