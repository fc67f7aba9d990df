package facility

import (
	"math"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/plant"
	"growsim.app/internal/sim/rng"
)

const (
	TempNormalization     = 0.10
	HumidityNormalization = 0.05
	CO2Normalization      = 0.10

	// Degrees per kW per m2 of zone floor.
	LampHeatPerKW    = 4.0
	CoolingPerKW     = 4.0
	DehumHeatPerKW   = 1.0
	HumidityPerLiter = 10.0 // %rh removed per L/h per m2

	TranspirationRH = 0.05 // %rh per living plant per m2
	CO2UptakePPM    = 0.5  // ppm per living plant per m2

	DiseaseHumidityRH = 70.0
	DiseaseDamage     = 0.25
)

type UpdateInput struct {
	Tick          uint64
	Ambient       Environment
	Blueprints    Blueprints
	RNG           rng.Source
	DiseaseChance float64
}

type UpdateResult struct {
	DiseasedPlantID  string
	MissingStrainIDs []string
}

// Update advances the zone one tick: environment drift and device effects,
// plant growth, device wear, then the disease roll.
func (z *Zone) Update(in UpdateInput) UpdateResult {
	var res UpdateResult
	lit := z.LightCycle.Lit(in.Tick)
	z.stepEnvironment(in.Ambient, lit)

	cond := plant.Conditions{
		TemperatureC: z.Environment.TemperatureC,
		LightOn:      lit,
		HasWater:     z.WaterL > 0,
		HasNutrients: z.NutrientG > 0,
	}
	for _, pl := range z.SortedPlantings() {
		s, err := in.Blueprints.Strain(pl.StrainID)
		if err != nil {
			res.MissingStrainIDs = append(res.MissingStrainIDs, pl.StrainID)
			continue
		}
		pl.Update(&s, cond, in.RNG)
	}

	for _, d := range z.SortedDevices() {
		d.Wear()
	}

	if z.Environment.HumidityRH > DiseaseHumidityRH && z.LivingCount() > 0 && in.RNG.Chance(in.DiseaseChance) {
		res.DiseasedPlantID = z.infectOne(in.RNG)
	}
	return res
}

func (z *Zone) stepEnvironment(ambient Environment, lit bool) {
	env := &z.Environment
	env.TemperatureC += (ambient.TemperatureC - env.TemperatureC) * TempNormalization
	env.HumidityRH += (ambient.HumidityRH - env.HumidityRH) * HumidityNormalization
	env.CO2PPM += (ambient.CO2PPM - env.CO2PPM) * CO2Normalization

	area := z.AreaM2
	for _, d := range z.SortedDevices() {
		if !d.Active() {
			continue
		}
		caps := d.Capabilities
		set := z.GroupSettings[d.BlueprintID]
		switch d.Kind {
		case catalogs.KindLamp:
			if lit {
				env.TemperatureC += caps.PowerKW * LampHeatPerKW / area
			}
		case catalogs.KindClimateUnit:
			target := pick(set.TargetTemperature, caps.TargetTemperature)
			if env.TemperatureC > target {
				env.TemperatureC -= math.Min(env.TemperatureC-target, caps.CoolingKW*CoolingPerKW/area)
			}
		case catalogs.KindHumidityControlUnit:
			env.TemperatureC += caps.PowerKW * DehumHeatPerKW / area
			target := pick(set.TargetHumidity, caps.TargetHumidity)
			if env.HumidityRH > target {
				env.HumidityRH -= math.Min(env.HumidityRH-target, caps.MoistureRemovalLPH*HumidityPerLiter/area)
			}
		case catalogs.KindCO2Injector:
			target := pick(set.TargetCO2, caps.TargetCO2)
			if env.CO2PPM < target {
				env.CO2PPM += math.Min(target-env.CO2PPM, caps.PulseRate/area)
			}
		}
	}

	living := float64(z.LivingCount())
	env.HumidityRH += living * TranspirationRH / area
	env.CO2PPM -= living * CO2UptakePPM / area
	env.HumidityRH = math.Max(0, math.Min(100, env.HumidityRH))
	env.CO2PPM = math.Max(0, env.CO2PPM)
}

func (z *Zone) infectOne(r rng.Source) string {
	var living []*plant.Plant
	for _, pl := range z.SortedPlantings() {
		for _, p := range pl.Plants {
			if p.Alive() {
				living = append(living, p)
			}
		}
	}
	p := living[r.Int(0, len(living)-1)]
	p.Health = math.Max(0, p.Health-DiseaseDamage)
	if p.Health == 0 {
		p.Stage = plant.Dead
	}
	return p.ID
}

// PowerDrawKW is the draw during the given tick: lamps only while lit, every
// other active device always.
func (z *Zone) PowerDrawKW(tick uint64) float64 {
	lit := z.LightCycle.Lit(tick)
	kw := 0.0
	for _, d := range z.SortedDevices() {
		if !d.Active() {
			continue
		}
		if d.Kind == catalogs.KindLamp && !lit {
			continue
		}
		kw += d.Capabilities.PowerKW
	}
	return kw
}

func (z *Zone) MaintenanceCostPerTick() float64 {
	sum := 0.0
	for _, d := range z.SortedDevices() {
		sum += d.MaintenanceCostPerTick
	}
	return sum
}

func pick(override, base float64) float64 {
	if override != 0 {
		return override
	}
	return base
}
