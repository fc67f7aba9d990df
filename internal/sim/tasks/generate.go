package tasks

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/facility"
)

const (
	MaintainBelowDurability = 0.8
	RefillRunwayDays        = 1.0
	FloweringLeadDays       = 2.0
)

type Definitions interface {
	Task(taskType string) (catalogs.TaskDefinition, error)
}

type Input struct {
	Blueprints  facility.Blueprints
	Definitions Definitions
}

type need struct {
	typ   Type
	zone  facility.ZoneRef
	item  string
	label string
	count int
}

// Generate builds the structure's task list from each zone's status, sorted by
// priority (highest first) and then by id. Task types without a definition are
// skipped and reported.
func Generate(s *facility.Structure, in Input) ([]Task, []error) {
	var needs []need
	for _, ref := range s.Zones() {
		needs = append(needs, zoneNeeds(ref, in.Blueprints)...)
	}

	var out []Task
	var errs []error
	for _, n := range needs {
		def, err := in.Definitions.Task(string(n.typ))
		if err != nil {
			errs = append(errs, fmt.Errorf("task %s in zone %s: %w", n.typ, n.zone.Zone.ID, err))
			continue
		}
		dur := duration(def.CostModel, n)
		if dur == 0 {
			continue
		}
		out = append(out, Task{
			ID:   taskID(n.typ, n.zone.Zone.ID, n.item),
			Type: n.typ,
			Location: Location{
				StructureID: s.ID,
				RoomID:      n.zone.Room.ID,
				ZoneID:      n.zone.Zone.ID,
				ItemID:      n.item,
			},
			Priority:      def.Priority,
			RequiredRole:  def.RequiredRole,
			RequiredSkill: def.RequiredSkill,
			MinSkillLevel: def.MinSkillLevel,
			DurationTicks: dur,
			Description:   describe(def.Description, n),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, errs
}

func zoneNeeds(ref facility.ZoneRef, bp facility.Blueprints) []need {
	z := ref.Zone
	var out []need
	add := func(t Type, item, label string, count int) {
		out = append(out, need{typ: t, zone: ref, item: item, label: label, count: count})
	}

	switch z.Status {
	case facility.ZoneGrowing:
		for _, d := range z.SortedDevices() {
			switch {
			case d.Status == facility.DeviceBroken:
				add(TypeRepairDevice, d.ID, d.Name, 1)
			case d.Durability < MaintainBelowDurability:
				add(TypeMaintainDevice, d.ID, d.Name, 1)
			}
		}

		if h := len(z.HarvestablePlants()); h > 0 {
			add(TypeHarvestPlants, "", "", h)
		} else if planted := z.PlantedCount(); planted > 0 && z.LivingCount() == 0 {
			// only dead plants left; harvesting clears them
			add(TypeHarvestPlants, "", "", planted)
		}

		rates := z.SupplyConsumptionRates(bp)
		if rates.WaterLPerDay > 0 && facility.RunwayDays(z.WaterL, rates.WaterLPerDay) < RefillRunwayDays {
			add(TypeRefillWater, "", "water", 1)
		}
		if rates.NutrientGPerDay > 0 && facility.RunwayDays(z.NutrientG, rates.NutrientGPerDay) < RefillRunwayDays {
			add(TypeRefillNutrients, "", "nutrients", 1)
		}

		if z.NearFlowering(bp, FloweringLeadDays) && z.LightCycle != z.FloweringCycle(bp) {
			add(TypeAdjustLightCycle, "", "", 1)
		}

	case facility.ZoneHarvested:
		if m, err := bp.Method(z.MethodID); err == nil && m.MaxCycles > 0 && z.CyclesUsed >= m.MaxCycles {
			add(TypeOverhaulZone, "", "", 1)
		} else {
			add(TypeCleanZone, "", "", 1)
		}

	case facility.ZoneReady:
		if z.LightCycle != z.VegetativeCycle(bp) {
			add(TypeResetLightCycle, "", "", 1)
		}
		if z.Plan != nil && z.Plan.AutoReplant && z.Plan.Quantity > 0 {
			add(TypeExecutePlantingPlan, "", z.Plan.StrainID, z.Plan.Quantity)
		}
	}
	return out
}

// duration converts the cost model to whole hours, rounding up.
func duration(cm catalogs.CostModel, n need) int {
	minutes := cm.LaborMinutes
	switch cm.Basis {
	case catalogs.BasisPerPlant:
		minutes *= float64(n.count)
	case catalogs.BasisPerSquareMeter:
		minutes *= n.zone.Zone.AreaM2
	}
	if minutes <= 0 {
		return 0
	}
	return int(math.Ceil(minutes/60 - 1e-9))
}

func describe(tmpl string, n need) string {
	item := n.label
	if item == "" {
		item = n.item
	}
	return strings.NewReplacer(
		"{zone}", n.zone.Zone.Name,
		"{item}", item,
		"{count}", strconv.Itoa(n.count),
	).Replace(tmpl)
}
