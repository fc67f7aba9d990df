package facility

import "growsim.app/internal/sim/plant"

type PlantSummary struct {
	Total         int                 `json:"total"`
	Living        int                 `json:"living"`
	ByStage       map[plant.Stage]int `json:"by_stage"`
	AverageHealth float64             `json:"average_health"`
}

func (a *PlantSummary) add(b PlantSummary) {
	if a.ByStage == nil {
		a.ByStage = map[plant.Stage]int{}
	}
	healthSum := a.AverageHealth*float64(a.Living) + b.AverageHealth*float64(b.Living)
	a.Total += b.Total
	a.Living += b.Living
	for st, n := range b.ByStage {
		a.ByStage[st] += n
	}
	if a.Living > 0 {
		a.AverageHealth = healthSum / float64(a.Living)
	}
}

func (z *Zone) PlantSummary() PlantSummary {
	out := PlantSummary{ByStage: map[plant.Stage]int{}}
	healthSum := 0.0
	for _, pl := range z.SortedPlantings() {
		for _, p := range pl.Plants {
			out.Total++
			out.ByStage[p.Stage]++
			if p.Alive() {
				out.Living++
				healthSum += p.Health
			}
		}
	}
	if out.Living > 0 {
		out.AverageHealth = healthSum / float64(out.Living)
	}
	return out
}

// ExpectedYield is the current biomass of living plants in grams.
func (z *Zone) ExpectedYield() float64 {
	sum := 0.0
	for _, pl := range z.SortedPlantings() {
		for _, p := range pl.Plants {
			if p.Alive() {
				sum += p.Biomass
			}
		}
	}
	return sum
}

func (r *Room) PlantSummary() PlantSummary {
	var out PlantSummary
	for _, z := range r.SortedZones() {
		out.add(z.PlantSummary())
	}
	return out
}

func (r *Room) ExpectedYield() float64 {
	sum := 0.0
	for _, z := range r.SortedZones() {
		sum += z.ExpectedYield()
	}
	return sum
}

func (s *Structure) PlantSummary() PlantSummary {
	var out PlantSummary
	for _, r := range s.SortedRooms() {
		out.add(r.PlantSummary())
	}
	return out
}

func (s *Structure) ExpectedYield() float64 {
	sum := 0.0
	for _, r := range s.SortedRooms() {
		sum += r.ExpectedYield()
	}
	return sum
}
