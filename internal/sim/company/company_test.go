package company

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/genetics"
	"growsim.app/internal/sim/plant"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tuning"
)

func loadCatalogs(t *testing.T) *catalogs.Catalogs {
	t.Helper()
	cats, err := catalogs.Load("../../../configs")
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return cats
}

func newCompany(t *testing.T, capital float64) *Company {
	t.Helper()
	c, err := New(42, Config{InitialCapital: capital}, loadCatalogs(t), nil)
	if err != nil {
		t.Fatalf("new company: %v", err)
	}
	return c
}

// growSetup rents a shed with one growroom and one zone.
func growSetup(t *testing.T, c *Company) (string, string, string) {
	t.Helper()
	sid, err := c.RentStructure("shed")
	if err != nil {
		t.Fatalf("rent: %v", err)
	}
	rid, err := c.AddRoom(sid, "Grow", 40, facility.PurposeGrowroom)
	if err != nil {
		t.Fatalf("add room: %v", err)
	}
	zid, err := c.AddZone(sid, rid, "Zone A", 10, "basic_soil_pot")
	if err != nil {
		t.Fatalf("add zone: %v", err)
	}
	return sid, rid, zid
}

func TestNew_RequiresLoadedCatalogs(t *testing.T) {
	if _, err := New(1, Config{}, &catalogs.Catalogs{}, nil); !errors.Is(err, catalogs.ErrNotLoaded) {
		t.Fatalf("err=%v want ErrNotLoaded", err)
	}
}

func TestNew_DeterministicIDsAndJobMarket(t *testing.T) {
	a := newCompany(t, 1000)
	b := newCompany(t, 1000)
	if len(a.JobMarket) != 12 {
		t.Fatalf("job market=%d want 12", len(a.JobMarket))
	}
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	if string(ja) != string(jb) {
		t.Fatalf("companies differ for same seed")
	}
}

func TestHarvestExample(t *testing.T) {
	cats := catalogs.NewForTest(nil,
		[]catalogs.StrainBlueprint{{ID: "s", Name: "S", GerminationRate: 1, Growth: catalogs.GrowthModel{GrowthRate: 1}, Photoperiod: catalogs.Photoperiod{VegetationDays: 10, FloweringDays: 10}}},
		nil,
		[]catalogs.CultivationMethod{{ID: "m", AreaPerPlantM2: 1, MaxCycles: 2}},
		catalogs.Prices{Strains: map[string]catalogs.StrainPrice{"s": {SeedPrice: 1, HarvestPricePerGram: 2}}},
		nil)
	c, err := New(1, Config{InitialCapital: 1000}, cats, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	s := facility.NewStructure("st", catalogs.StructureBlueprint{ID: "x", AreaM2: 100, HeightM: 3})
	r, _ := facility.NewRoom("r", "R", 50, facility.PurposeGrowroom)
	z, _ := facility.NewZone("z", "Z", 10, 3, "m", c.cfg.Ambient)
	_ = s.AddRoom(r)
	_ = r.AddZone(z)
	c.Structures[s.ID] = s
	z.Status = facility.ZoneGrowing
	z.Plantings["p"] = &plant.Planting{ID: "p", StrainID: "s", Plants: []*plant.Plant{
		{ID: "a", StrainID: "s", Stage: plant.Harvestable, Biomass: 10, Health: 1},
		{ID: "b", StrainID: "s", Stage: plant.Harvestable, Biomass: 9, Health: 1},
		{ID: "c", StrainID: "s", Stage: plant.Harvestable, Biomass: 11, Health: 1},
	}}

	res := c.Harvest(0, s, facility.ZoneRef{Room: r, Zone: z}, 0)
	if res.Count != 3 || res.TotalYield != 30 || math.Abs(res.TotalRevenue-60) > 1e-9 {
		t.Fatalf("harvest=%+v want 3 plants, 30g, $60", res)
	}
	if len(z.Plantings) != 0 {
		t.Fatalf("plantings=%d want 0", len(z.Plantings))
	}
	if z.Status != facility.ZoneHarvested || z.CyclesUsed != 1 {
		t.Fatalf("status=%s cycles=%d", z.Status, z.CyclesUsed)
	}
	if math.Abs(c.Capital-1060) > 1e-9 {
		t.Fatalf("capital=%v want 1060", c.Capital)
	}
	found := false
	for _, a := range c.Alerts {
		if a.Type == AlertNeedsCleaning {
			found = true
		}
	}
	if !found {
		t.Fatalf("no needs-cleaning alert: %+v", c.Alerts)
	}
}

func TestActions_RollbackOnInsufficientCapital(t *testing.T) {
	c := newCompany(t, 600)
	sid, rid, zid := growSetup(t, c)
	before, _ := json.Marshal(c)

	if _, err := c.InstallDevice(sid, zid, "cool_air_split"); !errors.Is(err, finance.ErrInsufficientCapital) {
		t.Fatalf("install err=%v", err)
	}
	if _, err := c.AddZone(sid, rid, "Zone B", 30, "scrog"); !errors.Is(err, finance.ErrInsufficientCapital) {
		t.Fatalf("add zone err=%v", err)
	}
	if _, err := c.RentStructure("large_warehouse"); !errors.Is(err, finance.ErrInsufficientCapital) {
		t.Fatalf("rent err=%v", err)
	}
	after, _ := json.Marshal(c)
	if string(before) != string(after) {
		t.Fatalf("failed actions changed state")
	}
}

func TestActions_AreaAndCapacity(t *testing.T) {
	c := newCompany(t, 100000)
	sid, rid, zid := growSetup(t, c)

	if _, err := c.AddRoom(sid, "Huge", 21, facility.PurposeLab); !errors.Is(err, facility.ErrInsufficientArea) {
		t.Fatalf("room err=%v", err)
	}
	if _, err := c.AddZone(sid, rid, "Huge", 31, "basic_soil_pot"); !errors.Is(err, facility.ErrInsufficientArea) {
		t.Fatalf("zone err=%v", err)
	}
	if _, err := c.AddZone(sid, rid, "None", 5, ""); !errors.Is(err, facility.ErrMissingMethod) {
		t.Fatalf("method err=%v", err)
	}

	capital := c.Capital
	if _, err := c.PlantStrain(sid, zid, "ak47", 21); !errors.Is(err, facility.ErrZoneAtCapacity) {
		t.Fatalf("plant err=%v", err)
	}
	if c.Capital != capital {
		t.Fatalf("capital changed on rejected planting")
	}
	res, err := c.PlantStrain(sid, zid, "ak47", 20)
	if err != nil {
		t.Fatalf("plant: %v", err)
	}
	if math.Abs(capital-c.Capital-30) > 1e-9 {
		t.Fatalf("seed cost=%v want 30", capital-c.Capital)
	}
	if res.GerminatedCount == 0 || res.GerminatedCount > 20 {
		t.Fatalf("germinated=%d", res.GerminatedCount)
	}
}

func TestActions_UnknownBlueprintSuggests(t *testing.T) {
	c := newCompany(t, 1000)
	_, err := c.RentStructure("shedd")
	var ue *catalogs.UnknownError
	if !errors.As(err, &ue) || ue.Suggestion != "shed" {
		t.Fatalf("err=%v", err)
	}
}

func TestActions_RejectNonFiniteArea(t *testing.T) {
	c := newCompany(t, 100000)
	sid, rid, _ := growSetup(t, c)
	before, _ := json.Marshal(c)
	for _, a := range []float64{math.NaN(), math.Inf(1)} {
		if _, err := c.AddRoom(sid, "bad", a, facility.PurposeLab); !errors.Is(err, facility.ErrInvalidArea) {
			t.Fatalf("room %v err=%v", a, err)
		}
		if _, err := c.AddZone(sid, rid, "bad", a, "basic_soil_pot"); !errors.Is(err, facility.ErrInvalidArea) {
			t.Fatalf("zone %v err=%v", a, err)
		}
	}
	after, err := json.Marshal(c)
	if err != nil || string(before) != string(after) {
		t.Fatalf("rejected areas changed state (marshal err=%v)", err)
	}
	if _, err := c.AddRoom(sid, "Huge", 600, facility.PurposeLab); !errors.Is(err, facility.ErrInsufficientArea) {
		t.Fatalf("oversized room err=%v", err)
	}
}

func TestBreedStrain_BadMutationFactorLeavesCounters(t *testing.T) {
	c := newCompany(t, 100000)
	c.cfg.MutationFactor = 1.5
	nextID, seq := c.NextID, c.ActionSeq
	if _, err := c.BreedStrain("ak47", "white_widow", "X"); !errors.Is(err, genetics.ErrInvalidMutation) {
		t.Fatalf("err=%v want ErrInvalidMutation", err)
	}
	if c.NextID != nextID || c.ActionSeq != seq || len(c.CustomStrains) != 0 {
		t.Fatalf("rejected breed moved counters: id %d->%d seq %d->%d", nextID, c.NextID, seq, c.ActionSeq)
	}
}

func TestConfigFromTuning_MapsEconomyAndStaff(t *testing.T) {
	tune := tuning.Defaults()
	tune.Economy.BreedingFee = 750
	tune.Economy.MutationFactor = 3
	tune.Economy.NegotiationBonusPerLevel = 0.05
	tune.Staff.UnderpaidRaiseDays = 5
	cfg := ConfigFromTuning(tune)
	cfg.applyDefaults()
	if cfg.BreedingFee != 750 || cfg.NegotiationBonusPerLevel != 0.05 || cfg.UnderpaidRaiseDays != 5 {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.MutationFactor != 1 {
		t.Fatalf("mutation factor=%v want clamped to 1", cfg.MutationFactor)
	}
}

func TestHireAssignFire(t *testing.T) {
	c := newCompany(t, 100000)
	sid, _, _ := growSetup(t, c)
	cand := c.JobMarket[0]
	if err := c.Hire(cand.ID, sid); err != nil {
		t.Fatalf("hire: %v", err)
	}
	if len(c.JobMarket) != 11 || c.Employees[cand.ID] == nil {
		t.Fatalf("hire did not move candidate")
	}
	if !c.Structures[sid].HasEmployee(cand.ID) {
		t.Fatalf("structure roster missing employee")
	}
	if err := c.AssignEmployee(cand.ID, ""); err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if c.Structures[sid].HasEmployee(cand.ID) || c.Employees[cand.ID].StructureID != "" {
		t.Fatalf("unassign incomplete")
	}
	if err := c.Fire(cand.ID); err != nil {
		t.Fatalf("fire: %v", err)
	}
	if err := c.Fire(cand.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second fire err=%v", err)
	}
}

func TestBreedStrainDeterministic(t *testing.T) {
	a := newCompany(t, 10000)
	b := newCompany(t, 10000)
	ida, err := a.BreedStrain("ak47", "white_widow", "AK Widow")
	if err != nil {
		t.Fatalf("breed: %v", err)
	}
	idb, _ := b.BreedStrain("ak47", "white_widow", "AK Widow")
	if ida != idb {
		t.Fatalf("ids differ: %s vs %s", ida, idb)
	}
	sa, sb := a.CustomStrains[ida], b.CustomStrains[idb]
	if sa.Chemotype != sb.Chemotype || sa.Photoperiod != sb.Photoperiod {
		t.Fatalf("bred strains differ")
	}
	if _, err := a.Blueprints().Strain(ida); err != nil {
		t.Fatalf("custom strain not resolvable: %v", err)
	}
}

func TestTick_CapitalConservation(t *testing.T) {
	c := newCompany(t, 50000)
	sid, _, zid := growSetup(t, c)
	if _, err := c.InstallDevice(sid, zid, "hps_600"); err != nil {
		t.Fatalf("install: %v", err)
	}
	if _, err := c.PlantStrain(sid, zid, "ak47", 10); err != nil {
		t.Fatalf("plant: %v", err)
	}
	for _, e := range append([]*staff.Employee(nil), c.JobMarket[:3]...) {
		if err := c.Hire(e.ID, sid); err != nil {
			t.Fatalf("hire: %v", err)
		}
	}
	for tick := uint64(1); tick <= 24*10; tick++ {
		c.Tick(tick)
	}
	diff := (c.Capital - c.InitialCapital) - (c.TotalRevenue() - c.TotalExpenses())
	if math.Abs(diff) > 1e-6 {
		t.Fatalf("capital drifted from ledger by %v", diff)
	}
	if c.Ledger.Expenses[finance.CatSalaries] == 0 || c.Ledger.Expenses[finance.CatRent] == 0 || c.Ledger.Expenses[finance.CatPower] == 0 {
		t.Fatalf("missing operating costs: %+v", c.Ledger.Expenses)
	}
}

func TestAlerts_CooldownAndClear(t *testing.T) {
	c := newCompany(t, 50000)
	sid, _, zid := growSetup(t, c)
	did, _ := c.InstallDevice(sid, zid, "hps_600")
	_, ref, _ := c.zone(sid, zid)
	d := ref.Zone.Devices[did]
	d.Status = facility.DeviceBroken

	count := func() int {
		n := 0
		for _, a := range c.Alerts {
			if a.Type == AlertDeviceBroken {
				n++
			}
		}
		return n
	}
	c.detectAlerts(1)
	c.detectAlerts(2)
	if count() != 1 {
		t.Fatalf("broken alerts=%d want 1", count())
	}
	d.Repair()
	c.detectAlerts(3)
	if count() != 0 {
		t.Fatalf("alert not cleared after repair")
	}
	d.Status = facility.DeviceBroken
	c.detectAlerts(4)
	if count() != 0 {
		t.Fatalf("alert re-raised inside cooldown")
	}
	c.detectAlerts(1 + c.cfg.AlertCooldownTicks)
	if count() != 1 {
		t.Fatalf("alert not raised after cooldown")
	}
}

func TestAcknowledgeEventAlert(t *testing.T) {
	c := newCompany(t, 1000)
	c.raiseEvent(5, AlertEmployeeQuit, "e1", "x quit", tasksLoc(), nil)
	id := c.Alerts[0].ID
	if err := c.AcknowledgeAlert(id); err != nil {
		t.Fatalf("ack: %v", err)
	}
	c.detectAlerts(6)
	if len(c.Alerts) != 0 {
		t.Fatalf("acknowledged event alert kept: %+v", c.Alerts)
	}
	if err := c.AcknowledgeAlert("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v", err)
	}
}

func TestRaiseRequestAcceptDecline(t *testing.T) {
	c := newCompany(t, 100000)
	c.cfg.RaiseIntervalDays = 1
	c.cfg.UnderpaidRaiseDays = 1
	cand := c.JobMarket[0]
	_ = c.Hire(cand.ID, "")
	e := c.Employees[cand.ID]
	e.SalaryPerDay = 10
	e.Morale = 80

	c.dailyCycle(24, fixedRNG{})
	if e.RequestedSalary == 0 {
		t.Fatalf("no raise requested")
	}
	want := e.RequestedSalary
	if err := c.AcceptRaise(e.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if e.SalaryPerDay != want || e.RequestedSalary != 0 {
		t.Fatalf("salary=%v requested=%v", e.SalaryPerDay, e.RequestedSalary)
	}
	if err := c.DeclineRaise(e.ID); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("decline without request err=%v", err)
	}
}

func TestRestoreRoundTrip(t *testing.T) {
	c := newCompany(t, 50000)
	sid, _, zid := growSetup(t, c)
	_, _ = c.PlantStrain(sid, zid, "ak47", 5)
	c.Tick(1)

	raw, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Company
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	r, err := Restore(&back, Config{InitialCapital: 50000}, loadCatalogs(t), nil)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	c.Tick(2)
	r.Tick(2)
	ja, _ := json.Marshal(c)
	jb, _ := json.Marshal(r)
	if string(ja) != string(jb) {
		t.Fatalf("restored company diverged")
	}
}
