package company

import (
	"fmt"

	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/plant"
	"growsim.app/internal/sim/rng"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tasks"
)

// TickReport is what one tick did, for logs and read models. It is not part
// of the persisted state.
type TickReport struct {
	Tick      uint64          `json:"tick"`
	Ledger    []finance.Entry `json:"ledger,omitempty"`
	Claimed   int             `json:"claimed"`
	Resolved  []string        `json:"resolved,omitempty"`
	Harvests  []HarvestResult `json:"harvests,omitempty"`
	NewAlerts []Alert         `json:"new_alerts,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	// candidate id -> name supplied by the name source
	Names map[string]string `json:"names,omitempty"`
}

func (c *Company) warnf(format string, args ...any) {
	if c.report != nil {
		c.report.Warnings = append(c.report.Warnings, fmt.Sprintf(format, args...))
	}
}

// Tick advances the company by one hour. The order of the steps is part of the
// contract: identical state, seed and tick give identical results.
func (c *Company) Tick(tick uint64) TickReport {
	rep := &TickReport{Tick: tick}
	c.report = rep
	defer func() { c.report = nil }()
	c.LastTick = tick
	c.DrainJournal()

	r := rng.ForTick(c.Seed, tick)

	c.detectAlerts(tick)

	if tick > 0 && tick%TicksPerWeek == 0 {
		c.refreshJobMarket(r)
	}
	if tick > 0 && tick%TicksPerDay == 0 {
		c.dailyCycle(tick, r)
	}

	c.generateTasks()
	c.runStaff(tick, r, rep)
	c.updateStructures(tick, r)
	c.accrueOperatingCosts(tick)

	rep.Ledger = c.DrainJournal()
	return *rep
}

func (c *Company) generateTasks() {
	c.tasks = map[string][]tasks.Task{}
	in := tasks.Input{Blueprints: c.Blueprints(), Definitions: c.cats}
	for _, s := range c.SortedStructures() {
		list, errs := tasks.Generate(s, in)
		for _, err := range errs {
			c.warnf("%v", err)
		}
		c.tasks[s.ID] = list
	}
}

func (c *Company) runStaff(tick uint64, r rng.Source, rep *TickReport) {
	res := staff.Tick(staff.TickInput{
		NowTick:   tick,
		Employees: c.SortedEmployees(),
		Tasks:     c.tasks,
		Overtime:  c.OvertimePolicy,
	}, staff.TickHooks{
		RestCapacity: func(structureID string) int {
			if s, ok := c.Structures[structureID]; ok {
				return s.RestCapacity()
			}
			return 0
		},
		Resolve: func(now uint64, e *staff.Employee, t tasks.Task) bool {
			return c.resolveTask(now, e, t, r)
		},
		PayOvertime: func(_ uint64, _ *staff.Employee, amount float64) {
			c.LogExpense(finance.CatOvertime, amount)
		},
	})
	rep.Claimed = len(res.Claimed)
	for _, t := range res.Resolved {
		rep.Resolved = append(rep.Resolved, t.ID)
	}
}

func (c *Company) updateStructures(tick uint64, r rng.Source) {
	bp := c.Blueprints()
	ambient := c.weather.Ambient(tick)
	for _, s := range c.SortedStructures() {
		for _, ref := range s.Zones() {
			z := ref.Zone
			rates := z.SupplyConsumptionRates(bp)
			z.ConsumeSupplies(rates.WaterLPerDay/plant.TicksPerDay, rates.NutrientGPerDay/plant.TicksPerDay)

			res := z.Update(facility.UpdateInput{
				Tick:          tick,
				Ambient:       ambient,
				Blueprints:    bp,
				RNG:           r,
				DiseaseChance: c.cfg.DiseaseChance,
			})
			for _, id := range res.MissingStrainIDs {
				c.warnf("zone %s: unknown strain %s skipped", z.ID, id)
			}
			if res.DiseasedPlantID != "" {
				c.raiseEvent(tick, AlertDisease, z.ID, fmt.Sprintf("Disease spotted in %s", z.Name),
					tasks.Location{StructureID: s.ID, RoomID: ref.Room.ID, ZoneID: z.ID, ItemID: res.DiseasedPlantID}, nil)
			}
		}
	}
}

// accrueOperatingCosts books rent, device maintenance and power for the tick.
func (c *Company) accrueOperatingCosts(tick uint64) {
	util, err := c.cats.Utility()
	if err != nil {
		c.warnf("operating costs: %v", err)
		return
	}
	var rent, maint, kwh float64
	for _, s := range c.SortedStructures() {
		rent += s.RentPerTick(c.cfg.TicksPerMonth)
		for _, ref := range s.Zones() {
			maint += ref.Zone.MaintenanceCostPerTick()
			kwh += ref.Zone.PowerDrawKW(tick)
		}
	}
	c.LogExpense(finance.CatRent, rent)
	c.LogExpense(finance.CatMaintenance, maint)
	c.LogExpense(finance.CatPower, kwh*util.PricePerKWh)
}
