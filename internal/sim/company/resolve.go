package company

import (
	"fmt"

	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/finance"
	"growsim.app/internal/sim/rng"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tasks"
)

type HarvestResult struct {
	Count        int     `json:"count"`
	TotalYield   float64 `json:"total_yield"`
	TotalRevenue float64 `json:"total_revenue"`
}

// resolveTask applies the gameplay effect of a finished task and reports
// whether it took effect. Targets that no longer exist are reported and
// skipped.
func (c *Company) resolveTask(tick uint64, e *staff.Employee, t tasks.Task, r rng.Source) bool {
	s, ref, err := c.zone(t.Location.StructureID, t.Location.ZoneID)
	if err != nil {
		c.warnf("resolve %s: %v", t.ID, err)
		return false
	}
	z := ref.Zone
	bp := c.Blueprints()

	switch t.Type {
	case tasks.TypeRepairDevice, tasks.TypeMaintainDevice:
		d, ok := z.Devices[t.Location.ItemID]
		if !ok {
			c.warnf("resolve %s: device %s gone", t.ID, t.Location.ItemID)
			return false
		}
		d.Repair()

	case tasks.TypeHarvestPlants:
		c.Harvest(tick, s, ref, c.negotiationBonus(s))

	case tasks.TypeRefillWater:
		return c.buySupplies(tick, t.Location, z, c.cfg.RefillWaterL, 0)

	case tasks.TypeRefillNutrients:
		return c.buySupplies(tick, t.Location, z, 0, c.cfg.RefillNutrient)

	case tasks.TypeCleanZone:
		z.Status = facility.ZoneReady

	case tasks.TypeOverhaulZone:
		m, err := bp.Method(z.MethodID)
		if err != nil {
			c.warnf("resolve %s: %v", t.ID, err)
			return false
		}
		cost := z.AreaM2 * m.OverhaulCostPerSqm
		if err := c.SpendCapital(finance.CatOverhaul, cost); err != nil {
			c.purchaseFailed(tick, t.Location, "overhaul "+z.Name, cost)
			return false
		}
		z.CyclesUsed = 0
		z.Status = facility.ZoneReady

	case tasks.TypeResetLightCycle:
		return z.SetLightCycle(z.VegetativeCycle(bp)) == nil

	case tasks.TypeAdjustLightCycle:
		return z.SetLightCycle(z.FloweringCycle(bp)) == nil

	case tasks.TypeExecutePlantingPlan:
		return c.executePlan(tick, t.Location, z, r)

	default:
		c.warnf("resolve %s: unknown task type %s", t.ID, t.Type)
		return false
	}
	return true
}

// Harvest sells every harvest-ready plant in the zone, clears dead plants and
// flips an emptied zone to Harvested.
func (c *Company) Harvest(tick uint64, s *facility.Structure, ref facility.ZoneRef, bonus float64) HarvestResult {
	z := ref.Zone
	var res HarvestResult
	for _, h := range z.HarvestablePlants() {
		price, err := c.cats.StrainPrice(h.Plant.StrainID)
		if err != nil {
			c.warnf("harvest %s: %v", h.Plant.ID, err)
			continue
		}
		yield := h.Plant.Biomass
		res.Count++
		res.TotalYield += yield
		res.TotalRevenue += yield * price.HarvestPricePerGram * (0.5 + 0.5*h.Plant.Health) * (1 + bonus)
		h.Planting.RemovePlant(h.Plant.ID)
	}
	z.ClearDead()
	z.CleanupEmptyPlantings()
	c.LogRevenue(finance.CatHarvest, res.TotalRevenue)

	if z.PlantedCount() == 0 && z.Status == facility.ZoneGrowing {
		z.CyclesUsed++
		z.Status = facility.ZoneHarvested
		c.raiseEvent(tick, AlertNeedsCleaning, z.ID, fmt.Sprintf("%s needs cleaning", z.Name),
			tasks.Location{StructureID: s.ID, RoomID: ref.Room.ID, ZoneID: z.ID}, nil)
	}
	if c.report != nil && res.Count > 0 {
		c.report.Harvests = append(c.report.Harvests, res)
	}
	return res
}

// negotiationBonus comes from the best negotiator assigned to the structure.
func (c *Company) negotiationBonus(s *facility.Structure) float64 {
	best := 0
	for _, id := range s.EmployeeIDs {
		if e, ok := c.Employees[id]; ok {
			if lvl := e.SkillLevel(staff.SkillNegotiation); lvl > best {
				best = lvl
			}
		}
	}
	return float64(best) * c.cfg.NegotiationBonusPerLevel
}

func (c *Company) buySupplies(tick uint64, loc tasks.Location, z *facility.Zone, waterL, nutrientG float64) bool {
	util, err := c.cats.Utility()
	if err != nil {
		c.warnf("supplies: %v", err)
		return false
	}
	cost := waterL*util.PricePerLiterWater + nutrientG*util.PricePerGramNutrients
	if err := c.SpendCapital(finance.CatSupplies, cost); err != nil {
		c.purchaseFailed(tick, loc, "supplies for "+z.Name, cost)
		return false
	}
	z.AddSupplies(waterL, nutrientG)
	return true
}

// executePlan plants the zone's plan. Planting a Ready zone also puts it
// back on the vegetative light schedule.
func (c *Company) executePlan(tick uint64, loc tasks.Location, z *facility.Zone, r rng.Source) bool {
	plan := z.Plan
	if plan == nil || z.Status != facility.ZoneReady {
		return false
	}
	bp := c.Blueprints()
	strain, err := bp.Strain(plan.StrainID)
	if err != nil {
		c.warnf("planting plan in %s: %v", z.ID, err)
		return false
	}
	capacity, err := z.PlantCapacity(bp)
	if err != nil {
		c.warnf("planting plan in %s: %v", z.ID, err)
		return false
	}
	qty := plan.Quantity
	if free := capacity - z.PlantedCount(); qty > free {
		qty = free
	}
	if qty <= 0 {
		return false
	}
	price, err := c.cats.StrainPrice(strain.ID)
	if err != nil {
		c.warnf("planting plan in %s: %v", z.ID, err)
		return false
	}
	cost := float64(qty) * price.SeedPrice
	if !c.CanAfford(cost) {
		c.purchaseFailed(tick, loc, "seeds for "+z.Name, cost)
		return false
	}
	_ = z.SetLightCycle(z.VegetativeCycle(bp))
	if _, err := z.PlantStrain(strain, qty, bp, c.newID, r, tick); err != nil {
		c.warnf("planting plan in %s: %v", z.ID, err)
		return false
	}
	_ = c.SpendCapital(finance.CatSeeds, cost)
	return true
}

func (c *Company) purchaseFailed(tick uint64, loc tasks.Location, what string, cost float64) {
	key := loc.ZoneID + ":" + what
	c.raiseEvent(tick, AlertPurchase, key, fmt.Sprintf("Could not afford %s (%s)", what, money(cost)), loc, nil)
}
