// Package plant models individual plants and same-strain plantings.
package plant

import (
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/rng"
)

type Stage string

const (
	Seedling    Stage = "seedling"
	Vegetative  Stage = "vegetative"
	Flowering   Stage = "flowering"
	Harvestable Stage = "harvestable"
	Dead        Stage = "dead"
)

// Stages lists every stage in lifecycle order.
var Stages = []Stage{Seedling, Vegetative, Flowering, Harvestable, Dead}

const (
	TicksPerDay = 24

	SeedlingDays        = 3.0
	BaseBiomassPerTick  = 0.6
	StressThreshold     = 0.1
	HealthLossPerStress = 0.05
	HealthRecovery      = 0.01
	MissingWaterStress  = 0.3
	MissingFoodStress   = 0.2
	TempPenaltyScaleC   = 5.0
)

type Plant struct {
	ID         string  `json:"id"`
	StrainID   string  `json:"strain_id"`
	AgeInTicks int     `json:"age_in_ticks"`
	Stage      Stage   `json:"growth_stage"`
	Biomass    float64 `json:"biomass"`
	Health     float64 `json:"health"`
	Stress     float64 `json:"stress"`
}

// Conditions is what a plant sees of its zone during one tick.
type Conditions struct {
	TemperatureC float64
	LightOn      bool
	HasWater     bool
	HasNutrients bool
}

func New(id, strainID string) *Plant {
	return &Plant{ID: id, StrainID: strainID, Stage: Seedling, Health: 1}
}

func (p *Plant) Alive() bool { return p.Stage != Dead }

func (p *Plant) AgeInDays() float64 { return float64(p.AgeInTicks) / TicksPerDay }

// Update advances the plant by one tick. Dead plants are left untouched.
func (p *Plant) Update(s *catalogs.StrainBlueprint, env Conditions, r rng.Source) {
	if p.Stage == Dead {
		return
	}
	p.AgeInTicks++

	p.Stress = computeStress(s, p.Stage, env)

	if p.Stress > StressThreshold {
		p.Health -= p.Stress * HealthLossPerStress
	} else {
		p.Health += HealthRecovery
	}
	p.Health = clamp01(p.Health)

	if env.LightOn && p.Health > 0 {
		growth := BaseBiomassPerTick * s.Growth.GrowthRate * p.Health * (1 - p.Stress*0.5)
		if s.Growth.Noise.Enabled {
			growth *= 1 + (r.Float()*2-1)*s.Growth.Noise.Pct
		}
		if growth > 0 {
			p.Biomass += growth
		}
	}

	if p.Health <= 0 {
		p.Stage = Dead
		return
	}
	p.Stage = StageForAge(s, p.AgeInDays())
}

func computeStress(s *catalogs.StrainBlueprint, stage Stage, env Conditions) float64 {
	ideal := s.Environment.IdealTemperature.Vegetation
	if stage == Flowering || stage == Harvestable {
		ideal = s.Environment.IdealTemperature.Flowering
	}
	dev := 0.0
	switch {
	case env.TemperatureC < ideal[0]:
		dev = ideal[0] - env.TemperatureC
	case env.TemperatureC > ideal[1]:
		dev = env.TemperatureC - ideal[1]
	}
	stress := 0.0
	if dev > 0 {
		x := dev / TempPenaltyScaleC
		stress += x * x
	}
	if !env.HasWater {
		stress += MissingWaterStress
	}
	if !env.HasNutrients {
		stress += MissingFoodStress
	}
	return clamp01(stress)
}

// StageForAge maps an age to the living stage it implies.
func StageForAge(s *catalogs.StrainBlueprint, ageDays float64) Stage {
	veg := s.Photoperiod.VegetationDays
	flower := s.Photoperiod.FloweringDays
	switch {
	case ageDays <= SeedlingDays:
		return Seedling
	case ageDays <= veg:
		return Vegetative
	case ageDays <= veg+flower:
		return Flowering
	default:
		return Harvestable
	}
}

// StageProgress reports 0-100 completion within the current stage.
func (p *Plant) StageProgress(s *catalogs.StrainBlueprint) float64 {
	days := p.AgeInDays()
	veg := s.Photoperiod.VegetationDays
	flower := s.Photoperiod.FloweringDays
	var from, to float64
	switch p.Stage {
	case Seedling:
		from, to = 0, SeedlingDays
	case Vegetative:
		from, to = SeedlingDays, veg
	case Flowering:
		from, to = veg, veg+flower
	default:
		return 100
	}
	if to <= from {
		return 100
	}
	return clamp01((days-from)/(to-from)) * 100
}

// DailyNutrientDemand is grams per day for this plant's stage.
func (p *Plant) DailyNutrientDemand(s *catalogs.StrainBlueprint) float64 {
	return stageDemand(s.NutrientDemand, p.Stage)
}

// DailyWaterDemand is liters per day for this plant's stage.
func (p *Plant) DailyWaterDemand(s *catalogs.StrainBlueprint) float64 {
	return stageDemand(s.WaterDemand, p.Stage)
}

func stageDemand(d catalogs.StageDemand, st Stage) float64 {
	switch st {
	case Seedling:
		return d.Seedling
	case Vegetative:
		return d.Vegetation
	case Flowering, Harvestable:
		return d.Flowering
	default:
		return 0
	}
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
