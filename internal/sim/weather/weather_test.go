package weather

import (
	"math"
	"testing"

	"growsim.app/internal/sim/facility"
)

var base = facility.Environment{TemperatureC: 22, HumidityRH: 50, CO2PPM: 400}

func TestAmbient_FlatWithoutAmplitude(t *testing.T) {
	m := New(42, base, 0)
	for tick := uint64(0); tick < 100; tick++ {
		if got := m.Ambient(tick); got != base {
			t.Fatalf("tick %d ambient=%+v want %+v", tick, got, base)
		}
	}
}

func TestAmbient_DeterministicAndBounded(t *testing.T) {
	a := New(42, base, 2)
	b := New(42, base, 2)
	varied := false
	for tick := uint64(0); tick < 24*14; tick++ {
		ea, eb := a.Ambient(tick), b.Ambient(tick)
		if ea != eb {
			t.Fatalf("tick %d: %+v vs %+v", tick, ea, eb)
		}
		if math.Abs(ea.TemperatureC-base.TemperatureC) > 2+1e-9 {
			t.Fatalf("tick %d: temp %v outside amplitude", tick, ea.TemperatureC)
		}
		if ea.CO2PPM != base.CO2PPM {
			t.Fatalf("tick %d: co2 %v changed", tick, ea.CO2PPM)
		}
		if ea.TemperatureC != base.TemperatureC {
			varied = true
		}
	}
	if !varied {
		t.Fatalf("ambient never varied")
	}
}
