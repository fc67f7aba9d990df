package facility

import "growsim.app/internal/sim/catalogs"

const (
	AirChangesPerHour       = 5.0
	TranspirationLPerM2Hour = 0.05
	CO2PulsePerM2           = 5.0
	secondsPerHour          = 3600.0
	micromolesPerMole       = 1e6
)

type Sufficiency struct {
	Actual     float64 `json:"actual"`
	Required   float64 `json:"required"`
	Sufficient bool    `json:"is_sufficient"`
}

type LightingReport struct {
	Sufficiency
	CoverageM2  float64 `json:"coverage_m2"`
	AveragePPFD float64 `json:"average_ppfd"`
	DLI         float64 `json:"dli"`
}

func (z *Zone) sumCaps(kind catalogs.DeviceKind, f func(catalogs.Capabilities) float64) float64 {
	sum := 0.0
	for _, d := range z.SortedDevices() {
		if d.Kind != kind || d.Status == DeviceBroken {
			continue
		}
		sum += f(d.Capabilities)
	}
	return sum
}

// Lighting compares lamp coverage to the zone floor. Average PPFD spreads each
// lamp's output over its coverage and the floor; DLI integrates it over the lit
// hours in mol/m2/day.
func (z *Zone) Lighting() LightingReport {
	coverage := z.sumCaps(catalogs.KindLamp, func(c catalogs.Capabilities) float64 { return c.CoverageM2 })
	flux := z.sumCaps(catalogs.KindLamp, func(c catalogs.Capabilities) float64 { return c.PPFD * c.CoverageM2 })
	ppfd := 0.0
	if z.AreaM2 > 0 {
		ppfd = flux / z.AreaM2
	}
	return LightingReport{
		Sufficiency: Sufficiency{Actual: coverage, Required: z.AreaM2, Sufficient: coverage >= z.AreaM2},
		CoverageM2:  coverage,
		AveragePPFD: ppfd,
		DLI:         ppfd * float64(z.LightCycle.On) * secondsPerHour / micromolesPerMole,
	}
}

// Climate compares installed airflow to the air changes the zone volume needs.
func (z *Zone) Climate() Sufficiency {
	actual := z.sumCaps(catalogs.KindClimateUnit, func(c catalogs.Capabilities) float64 { return c.AirflowM3H })
	required := z.AreaM2 * z.HeightM * AirChangesPerHour
	return Sufficiency{Actual: actual, Required: required, Sufficient: actual >= required}
}

func (z *Zone) Humidity() Sufficiency {
	actual := z.sumCaps(catalogs.KindHumidityControlUnit, func(c catalogs.Capabilities) float64 { return c.MoistureRemovalLPH })
	required := z.AreaM2 * TranspirationLPerM2Hour
	return Sufficiency{Actual: actual, Required: required, Sufficient: actual >= required}
}

func (z *Zone) CO2() Sufficiency {
	actual := z.sumCaps(catalogs.KindCO2Injector, func(c catalogs.Capabilities) float64 { return c.PulseRate })
	required := z.AreaM2 * CO2PulsePerM2
	return Sufficiency{Actual: actual, Required: required, Sufficient: actual >= required}
}
