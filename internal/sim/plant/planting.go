package plant

import (
	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/rng"
)

// Planting is a cohort of same-strain plants planted together.
type Planting struct {
	ID          string   `json:"id"`
	StrainID    string   `json:"strain_id"`
	PlantedTick uint64   `json:"planted_tick"`
	Plants      []*Plant `json:"plants"`
}

func (p *Planting) Quantity() int { return len(p.Plants) }

func (p *Planting) Update(s *catalogs.StrainBlueprint, env Conditions, r rng.Source) {
	for _, pl := range p.Plants {
		if pl.Alive() {
			pl.Update(s, env, r)
		}
	}
}

func (p *Planting) RemovePlant(id string) bool {
	for i, pl := range p.Plants {
		if pl.ID == id {
			p.Plants = append(p.Plants[:i], p.Plants[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Planting) LivingCount() int {
	n := 0
	for _, pl := range p.Plants {
		if pl.Alive() {
			n++
		}
	}
	return n
}

func (p *Planting) StageDistribution() map[Stage]int {
	out := map[Stage]int{}
	for _, pl := range p.Plants {
		out[pl.Stage]++
	}
	return out
}

// DominantStage returns the most common stage and the average progress of
// plants in it. Ties go to the earlier lifecycle stage.
func (p *Planting) DominantStage(s *catalogs.StrainBlueprint) (Stage, float64) {
	dist := p.StageDistribution()
	best := Seedling
	bestCount := 0
	for _, st := range Stages {
		if dist[st] > bestCount {
			best, bestCount = st, dist[st]
		}
	}
	if bestCount == 0 {
		return best, 0
	}
	sum := 0.0
	for _, pl := range p.Plants {
		if pl.Stage == best {
			sum += pl.StageProgress(s)
		}
	}
	return best, sum / float64(bestCount)
}

func (p *Planting) NutrientDemandPerTick(s *catalogs.StrainBlueprint) float64 {
	sum := 0.0
	for _, pl := range p.Plants {
		sum += pl.DailyNutrientDemand(s)
	}
	return sum / TicksPerDay
}

func (p *Planting) WaterDemandPerTick(s *catalogs.StrainBlueprint) float64 {
	sum := 0.0
	for _, pl := range p.Plants {
		sum += pl.DailyWaterDemand(s)
	}
	return sum / TicksPerDay
}

// AverageHealth is over living plants; 0 when none are alive.
func (p *Planting) AverageHealth() float64 {
	sum, n := 0.0, 0
	for _, pl := range p.Plants {
		if pl.Alive() {
			sum += pl.Health
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}
