package facility

import (
	"errors"
	"math"
	"testing"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/plant"
	"growsim.app/internal/sim/rng"
)

var ambient = Environment{TemperatureC: 22, HumidityRH: 50, CO2PPM: 400}

func testCatalogs() *catalogs.Catalogs {
	return catalogs.NewForTest(
		nil,
		[]catalogs.StrainBlueprint{{
			ID:              "ww",
			Name:            "White Widow",
			GerminationRate: 0.65,
			Growth:          catalogs.GrowthModel{GrowthRate: 1},
			Photoperiod:     catalogs.Photoperiod{VegetationDays: 10, FloweringDays: 20},
			Environment: catalogs.EnvPreferences{
				IdealTemperature: catalogs.PhaseRange{Vegetation: [2]float64{20, 28}, Flowering: [2]float64{20, 26}},
				LightCycle:       catalogs.PhaseCycle{Vegetation: [2]int{20, 4}, Flowering: [2]int{12, 12}},
			},
			NutrientDemand: catalogs.StageDemand{Seedling: 1, Vegetation: 2, Flowering: 3},
			WaterDemand:    catalogs.StageDemand{Seedling: 0.5, Vegetation: 1, Flowering: 2},
		}},
		nil,
		[]catalogs.CultivationMethod{
			{ID: "dense", AreaPerPlantM2: 0.01, MaxCycles: 2},
			{ID: "pot", AreaPerPlantM2: 0.5, MaxCycles: 2},
		},
		catalogs.Prices{},
		nil,
	)
}

func lamp(id string, coverage float64) *Device {
	return NewDevice(id, catalogs.DeviceBlueprint{
		ID:           "lamp",
		Kind:         catalogs.KindLamp,
		Name:         "Lamp",
		Capabilities: catalogs.Capabilities{PowerKW: 0.6, CoverageM2: coverage, PPFD: 800},
	}, catalogs.DevicePrice{BaseMaintenanceCostPerTick: 0.01})
}

func counter() IDSource {
	n := 0
	return func(kind string) string {
		n++
		return kind + "-" + string(rune('a'+n%26)) + string(rune('a'+n/26%26)) + string(rune('a'+n/676%26))
	}
}

func newZone(t *testing.T, area float64, method string) *Zone {
	t.Helper()
	z, err := NewZone("z1", "Zone 1", area, 3, method, ambient)
	if err != nil {
		t.Fatalf("new zone: %v", err)
	}
	return z
}

func TestLightingSufficiencyBoundary(t *testing.T) {
	z := newZone(t, 10, "pot")
	z.InstallDevice(lamp("d1", 10))
	if !z.Lighting().Sufficient {
		t.Fatalf("coverage 10 on 10m2 should be sufficient")
	}

	z2 := newZone(t, 10, "pot")
	z2.InstallDevice(lamp("d1", 9.99))
	if z2.Lighting().Sufficient {
		t.Fatalf("coverage 9.99 on 10m2 should not be sufficient")
	}
}

func TestLightingIgnoresBrokenLamps(t *testing.T) {
	z := newZone(t, 10, "pot")
	d := lamp("d1", 10)
	d.Status = DeviceBroken
	z.InstallDevice(d)
	rep := z.Lighting()
	if rep.Sufficient || rep.CoverageM2 != 0 {
		t.Fatalf("broken lamp counted: %+v", rep)
	}
}

func TestLightingDLI(t *testing.T) {
	z := newZone(t, 2, "pot")
	z.InstallDevice(lamp("d1", 2))
	rep := z.Lighting()
	if rep.AveragePPFD != 800 {
		t.Fatalf("ppfd=%v want 800", rep.AveragePPFD)
	}
	want := 800 * 18 * 3600 / 1e6
	if math.Abs(rep.DLI-want) > 1e-9 {
		t.Fatalf("dli=%v want %v", rep.DLI, want)
	}
}

func TestClimateRequirementUsesVolume(t *testing.T) {
	z := newZone(t, 10, "pot")
	got := z.Climate()
	if got.Required != 10*3*AirChangesPerHour || got.Sufficient {
		t.Fatalf("climate=%+v", got)
	}
}

func TestAreaInvariants(t *testing.T) {
	s := NewStructure("s1", catalogs.StructureBlueprint{ID: "shed", AreaM2: 60, HeightM: 2.5})
	r1, _ := NewRoom("r1", "Grow", 40, PurposeGrowroom)
	if err := s.AddRoom(r1); err != nil {
		t.Fatalf("add r1: %v", err)
	}
	r2, _ := NewRoom("r2", "Too big", 25, PurposeGrowroom)
	if err := s.AddRoom(r2); !errors.Is(err, ErrInsufficientArea) {
		t.Fatalf("add r2 err=%v want ErrInsufficientArea", err)
	}
	if len(s.Rooms) != 1 {
		t.Fatalf("rooms=%d want 1", len(s.Rooms))
	}

	za, _ := NewZone("za", "A", 30, 2.5, "pot", ambient)
	zb, _ := NewZone("zb", "B", 10, 2.5, "pot", ambient)
	zc, _ := NewZone("zc", "C", 0.5, 2.5, "pot", ambient)
	if err := r1.AddZone(za); err != nil {
		t.Fatalf("add za: %v", err)
	}
	if err := r1.AddZone(zb); err != nil {
		t.Fatalf("add zb (exact fit): %v", err)
	}
	if err := r1.AddZone(zc); !errors.Is(err, ErrInsufficientArea) {
		t.Fatalf("add zc err=%v want ErrInsufficientArea", err)
	}
	if r1.UsedArea() != 40 {
		t.Fatalf("used=%v want 40", r1.UsedArea())
	}
}

func TestAreaRejectsNonFinite(t *testing.T) {
	s := NewStructure("s1", catalogs.StructureBlueprint{ID: "shed", AreaM2: 60, HeightM: 2.5})
	for _, a := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -3} {
		if _, err := NewRoom("r", "bad", a, PurposeGrowroom); !errors.Is(err, ErrInvalidArea) {
			t.Fatalf("NewRoom(%v) err=%v want ErrInvalidArea", a, err)
		}
		if err := s.CanAddRoom(a); !errors.Is(err, ErrInvalidArea) {
			t.Fatalf("CanAddRoom(%v) err=%v want ErrInvalidArea", a, err)
		}
		if _, err := NewZone("z", "bad", a, 2.5, "pot", ambient); !errors.Is(err, ErrInvalidArea) {
			t.Fatalf("NewZone(%v) err=%v want ErrInvalidArea", a, err)
		}
	}

	r, _ := NewRoom("r1", "Grow", 40, PurposeGrowroom)
	if err := s.AddRoom(r); err != nil {
		t.Fatalf("add room: %v", err)
	}
	if err := r.CanAddZone(math.NaN()); !errors.Is(err, ErrInvalidArea) {
		t.Fatalf("CanAddZone(NaN) err=%v", err)
	}
	if err := s.CanAddRoom(600); !errors.Is(err, ErrInsufficientArea) {
		t.Fatalf("oversized room err=%v want ErrInsufficientArea", err)
	}
	if s.UsedArea() != 40 {
		t.Fatalf("used=%v want 40", s.UsedArea())
	}
}

func TestZoneRequiresMethod(t *testing.T) {
	if _, err := NewZone("z", "Z", 10, 3, "", ambient); !errors.Is(err, ErrMissingMethod) {
		t.Fatalf("err=%v want ErrMissingMethod", err)
	}
}

func TestBreakroomCapacity(t *testing.T) {
	s := NewStructure("s1", catalogs.StructureBlueprint{ID: "shed", AreaM2: 60})
	br, _ := NewRoom("b", "Break", 10, PurposeBreakroom)
	gr, _ := NewRoom("g", "Grow", 20, PurposeGrowroom)
	_ = s.AddRoom(br)
	_ = s.AddRoom(gr)
	if got := s.RestCapacity(); got != 2 {
		t.Fatalf("rest capacity=%d want 2", got)
	}
	z, _ := NewZone("z", "Z", 1, 2, "pot", ambient)
	if err := br.AddZone(z); !errors.Is(err, ErrZonesNotAllowed) {
		t.Fatalf("zone in breakroom err=%v", err)
	}
}

func TestPlantStrainStartsVegetativeCycle(t *testing.T) {
	cats := testCatalogs()
	ww, _ := cats.Strain("ww")
	ids := counter()
	z := newZone(t, 20, "dense")
	z.Status = ZoneReady
	z.LightCycle = LightCycle{On: 12, Off: 12}
	if _, err := z.PlantStrain(ww, 100, cats, ids, rng.New(7), 0); err != nil {
		t.Fatalf("plant: %v", err)
	}
	if z.Status != ZoneGrowing {
		t.Fatalf("status=%s want Growing", z.Status)
	}
	if want := (LightCycle{On: 20, Off: 4}); z.LightCycle != want {
		t.Fatalf("light=%+v want %+v", z.LightCycle, want)
	}

	// topping up a growing zone keeps the running schedule
	z.LightCycle = LightCycle{On: 12, Off: 12}
	if _, err := z.PlantStrain(ww, 10, cats, ids, rng.New(8), 1); err != nil {
		t.Fatalf("top up: %v", err)
	}
	if z.LightCycle != (LightCycle{On: 12, Off: 12}) {
		t.Fatalf("top up changed light to %+v", z.LightCycle)
	}
}

func TestPlantStrainGermination(t *testing.T) {
	cats := testCatalogs()
	ww, _ := cats.Strain("ww")
	run := func() PlantResult {
		z := newZone(t, 20, "dense")
		res, err := z.PlantStrain(ww, 1000, cats, counter(), rng.New(12345), 0)
		if err != nil {
			t.Fatalf("plant: %v", err)
		}
		if z.Status != ZoneGrowing {
			t.Fatalf("status=%s want Growing", z.Status)
		}
		if z.PlantedCount() != res.GerminatedCount {
			t.Fatalf("planted=%d germinated=%d", z.PlantedCount(), res.GerminatedCount)
		}
		return res
	}
	a, b := run(), run()
	if a.GerminatedCount != b.GerminatedCount {
		t.Fatalf("not reproducible: %d vs %d", a.GerminatedCount, b.GerminatedCount)
	}
	frac := float64(a.GerminatedCount) / 1000
	if math.Abs(frac-0.65) > 0.05 {
		t.Fatalf("germination fraction=%v want ~0.65", frac)
	}
}

func TestPlantStrainCapacityLeavesStateUnchanged(t *testing.T) {
	cats := testCatalogs()
	ww, _ := cats.Strain("ww")
	z := newZone(t, 2, "pot") // capacity 4
	r := rng.New(9)
	before := r.State()
	_, err := z.PlantStrain(ww, 5, cats, counter(), r, 0)
	if !errors.Is(err, ErrZoneAtCapacity) {
		t.Fatalf("err=%v want ErrZoneAtCapacity", err)
	}
	if len(z.Plantings) != 0 || z.Status != ZoneReady {
		t.Fatalf("zone mutated: plantings=%d status=%s", len(z.Plantings), z.Status)
	}
	if r.State() != before {
		t.Fatalf("rng consumed on rejected planting")
	}
}

func TestToggleDeviceGroupSkipsBroken(t *testing.T) {
	z := newZone(t, 10, "pot")
	a, b, c := lamp("a", 2), lamp("b", 2), lamp("c", 2)
	c.Status = DeviceBroken
	z.InstallDevice(a)
	z.InstallDevice(b)
	z.InstallDevice(c)

	if g := z.GroupedDevices(); len(g) != 1 || g[0].Status != GroupBroken {
		t.Fatalf("groups=%+v", g)
	}
	st, err := z.ToggleDeviceGroup("lamp")
	if err != nil || st != DeviceOff {
		t.Fatalf("toggle=%s err=%v", st, err)
	}
	if a.Status != DeviceOff || b.Status != DeviceOff || c.Status != DeviceBroken {
		t.Fatalf("statuses a=%s b=%s c=%s", a.Status, b.Status, c.Status)
	}
	if _, err := z.ToggleDeviceGroup("nope"); !errors.Is(err, ErrNoSuchGroup) {
		t.Fatalf("err=%v want ErrNoSuchGroup", err)
	}
}

func TestGroupedDevicesMixed(t *testing.T) {
	z := newZone(t, 10, "pot")
	a, b := lamp("a", 2), lamp("b", 2)
	b.Status = DeviceOff
	z.InstallDevice(a)
	z.InstallDevice(b)
	if g := z.GroupedDevices(); g[0].Status != GroupMixed {
		t.Fatalf("status=%s want mixed", g[0].Status)
	}
}

func TestEnvironmentNormalizesTowardAmbient(t *testing.T) {
	cats := testCatalogs()
	z := newZone(t, 10, "pot")
	z.Environment = Environment{TemperatureC: 32, HumidityRH: 70, CO2PPM: 800}
	z.Update(UpdateInput{Tick: 0, Ambient: ambient, Blueprints: cats, RNG: rng.New(1)})
	if got := z.Environment.TemperatureC; math.Abs(got-31) > 1e-9 {
		t.Fatalf("temp=%v want 31", got)
	}
	if got := z.Environment.HumidityRH; math.Abs(got-69) > 1e-9 {
		t.Fatalf("humidity=%v want 69", got)
	}
	if got := z.Environment.CO2PPM; math.Abs(got-760) > 1e-9 {
		t.Fatalf("co2=%v want 760", got)
	}
}

func TestLampHeatsOnlyWhileLit(t *testing.T) {
	cats := testCatalogs()
	z := newZone(t, 10, "pot")
	z.InstallDevice(lamp("d1", 10))
	z.Update(UpdateInput{Tick: 0, Ambient: ambient, Blueprints: cats, RNG: rng.New(1)})
	lit := z.Environment.TemperatureC
	if lit <= ambient.TemperatureC {
		t.Fatalf("lamp did not heat: %v", lit)
	}

	z2 := newZone(t, 10, "pot")
	z2.InstallDevice(lamp("d1", 10))
	z2.Update(UpdateInput{Tick: 20, Ambient: ambient, Blueprints: cats, RNG: rng.New(1)})
	if z2.Environment.TemperatureC != ambient.TemperatureC {
		t.Fatalf("dark zone temp=%v want ambient", z2.Environment.TemperatureC)
	}
}

func TestDeviceWearBreaks(t *testing.T) {
	d := lamp("d1", 1)
	d.Durability = WearPerTick / 2
	d.Wear()
	if d.Status != DeviceBroken || d.Durability != 0 {
		t.Fatalf("status=%s durability=%v", d.Status, d.Durability)
	}
	d.Repair()
	if d.Status != DeviceOn || d.Durability != 1 {
		t.Fatalf("after repair status=%s durability=%v", d.Status, d.Durability)
	}
}

func TestSupplyRatesAndConsumption(t *testing.T) {
	cats := testCatalogs()
	z := newZone(t, 10, "pot")
	z.Plantings["p"] = &plant.Planting{ID: "p", StrainID: "ww", Plants: []*plant.Plant{
		{ID: "a", Stage: plant.Vegetative},
		{ID: "b", Stage: plant.Harvestable},
	}}
	rates := z.SupplyConsumptionRates(cats)
	if math.Abs(rates.NutrientGPerDay-5) > 1e-9 || math.Abs(rates.WaterLPerDay-3) > 1e-9 {
		t.Fatalf("rates=%+v", rates)
	}
	z.AddSupplies(1, 10)
	z.ConsumeSupplies(2, 4)
	if z.WaterL != 0 || z.NutrientG != 6 {
		t.Fatalf("water=%v nutrients=%v", z.WaterL, z.NutrientG)
	}
}

func TestHarvestablePlantsAndCleanup(t *testing.T) {
	z := newZone(t, 10, "pot")
	z.Plantings["p2"] = &plant.Planting{ID: "p2", Plants: []*plant.Plant{{ID: "c", Stage: plant.Harvestable}}}
	z.Plantings["p1"] = &plant.Planting{ID: "p1", Plants: []*plant.Plant{
		{ID: "a", Stage: plant.Harvestable},
		{ID: "b", Stage: plant.Flowering},
	}}
	got := z.HarvestablePlants()
	if len(got) != 2 || got[0].Plant.ID != "a" || got[1].Plant.ID != "c" {
		t.Fatalf("harvestable=%v", got)
	}
	got[1].Planting.RemovePlant("c")
	z.CleanupEmptyPlantings()
	if _, ok := z.Plantings["p2"]; ok {
		t.Fatalf("empty planting not cleaned up")
	}
}
