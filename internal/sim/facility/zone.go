package facility

import (
	"fmt"
	"math"
	"sort"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/plant"
	"growsim.app/internal/sim/rng"
)

type ZoneStatus string

const (
	ZoneReady     ZoneStatus = "Ready"
	ZoneGrowing   ZoneStatus = "Growing"
	ZoneHarvested ZoneStatus = "Harvested"
)

// DefaultLightCycle is used when no strain preference applies.
var DefaultLightCycle = LightCycle{On: 18, Off: 6}

type LightCycle struct {
	On  int `json:"on"`
	Off int `json:"off"`
}

func (c LightCycle) Valid() bool { return c.On >= 0 && c.Off >= 0 && c.On+c.Off == 24 }

// Lit reports whether lamps are on during the given tick.
func (c LightCycle) Lit(tick uint64) bool { return int(tick%24) < c.On }

type Environment struct {
	TemperatureC float64 `json:"temperature_c"`
	HumidityRH   float64 `json:"humidity_rh"`
	CO2PPM       float64 `json:"co2_ppm"`
}

// PlantingPlan describes an automatic replant once a zone is Ready.
type PlantingPlan struct {
	StrainID    string `json:"strain_id"`
	Quantity    int    `json:"quantity"`
	AutoReplant bool   `json:"auto_replant"`
}

// GroupSetting overrides device targets for every device of one blueprint.
// Zero values fall back to the blueprint's own targets.
type GroupSetting struct {
	TargetTemperature float64 `json:"target_temperature,omitempty"`
	TargetHumidity    float64 `json:"target_humidity,omitempty"`
	TargetCO2         float64 `json:"target_co2,omitempty"`
}

// Blueprints is the lookup surface a zone needs. *catalogs.Catalogs satisfies
// it; the company wraps it to add bred strains.
type Blueprints interface {
	Strain(id string) (catalogs.StrainBlueprint, error)
	Method(id string) (catalogs.CultivationMethod, error)
}

// IDSource hands out fresh entity ids for the given kind.
type IDSource func(kind string) string

type Zone struct {
	ID            string                     `json:"id"`
	Name          string                     `json:"name"`
	AreaM2        float64                    `json:"area_m2"`
	HeightM       float64                    `json:"height_m"`
	MethodID      string                     `json:"cultivation_method_id"`
	Devices       map[string]*Device         `json:"devices"`
	Plantings     map[string]*plant.Planting `json:"plantings"`
	GroupSettings map[string]GroupSetting    `json:"device_group_settings,omitempty"`
	LightCycle    LightCycle                 `json:"light_cycle"`
	Environment   Environment                `json:"current_environment"`
	WaterL        float64                    `json:"water_level_l"`
	NutrientG     float64                    `json:"nutrient_level_g"`
	Status        ZoneStatus                 `json:"status"`
	CyclesUsed    int                        `json:"cycles_used"`
	Plan          *PlantingPlan              `json:"planting_plan,omitempty"`
}

func NewZone(id, name string, area, height float64, methodID string, ambient Environment) (*Zone, error) {
	if methodID == "" {
		return nil, ErrMissingMethod
	}
	if !ValidArea(area) {
		return nil, ErrInvalidArea
	}
	return &Zone{
		ID:          id,
		Name:        name,
		AreaM2:      area,
		HeightM:     height,
		MethodID:    methodID,
		Devices:     map[string]*Device{},
		Plantings:   map[string]*plant.Planting{},
		LightCycle:  DefaultLightCycle,
		Environment: ambient,
		Status:      ZoneReady,
	}, nil
}

// Restore fills nil maps after decoding.
func (z *Zone) Restore() {
	if z.Devices == nil {
		z.Devices = map[string]*Device{}
	}
	if z.Plantings == nil {
		z.Plantings = map[string]*plant.Planting{}
	}
	if z.Status == "" {
		z.Status = ZoneReady
	}
	if !z.LightCycle.Valid() {
		z.LightCycle = DefaultLightCycle
	}
}

func (z *Zone) SetLightCycle(c LightCycle) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %d/%d", ErrInvalidCycle, c.On, c.Off)
	}
	z.LightCycle = c
	return nil
}

// PlantCapacity is floor(area / area-per-plant) of the zone's method.
func (z *Zone) PlantCapacity(bp Blueprints) (int, error) {
	m, err := bp.Method(z.MethodID)
	if err != nil {
		return 0, err
	}
	if m.AreaPerPlantM2 <= 0 {
		return 0, nil
	}
	return int(math.Floor(z.AreaM2/m.AreaPerPlantM2 + 1e-9)), nil
}

func (z *Zone) PlantedCount() int {
	n := 0
	for _, p := range z.Plantings {
		n += p.Quantity()
	}
	return n
}

func (z *Zone) LivingCount() int {
	n := 0
	for _, p := range z.Plantings {
		n += p.LivingCount()
	}
	return n
}

func (z *Zone) SortedPlantings() []*plant.Planting {
	ids := make([]string, 0, len(z.Plantings))
	for id := range z.Plantings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*plant.Planting, 0, len(ids))
	for _, id := range ids {
		out = append(out, z.Plantings[id])
	}
	return out
}

func (z *Zone) SortedDevices() []*Device {
	ids := make([]string, 0, len(z.Devices))
	for id := range z.Devices {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*Device, 0, len(ids))
	for _, id := range ids {
		out = append(out, z.Devices[id])
	}
	return out
}

func (z *Zone) InstallDevice(d *Device) { z.Devices[d.ID] = d }

type PlantResult struct {
	PlantingID      string   `json:"planting_id,omitempty"`
	GerminatedCount int      `json:"germinated_count"`
	PlantedIDs      []string `json:"planted_ids"`
}

// PlantStrain sows quantity seeds; each germinates with the strain's rate.
// Requests beyond the free capacity fail with ErrZoneAtCapacity and leave the
// zone and the RNG untouched.
func (z *Zone) PlantStrain(strain catalogs.StrainBlueprint, quantity int, bp Blueprints, newID IDSource, r rng.Source, tick uint64) (PlantResult, error) {
	if quantity <= 0 {
		return PlantResult{}, ErrInvalidQuantity
	}
	capacity, err := z.PlantCapacity(bp)
	if err != nil {
		return PlantResult{}, err
	}
	if free := capacity - z.PlantedCount(); quantity > free {
		return PlantResult{}, fmt.Errorf("%w: requested %d, free %d", ErrZoneAtCapacity, quantity, free)
	}

	res := PlantResult{PlantedIDs: []string{}}
	var plants []*plant.Plant
	for i := 0; i < quantity; i++ {
		if !r.Chance(strain.GerminationRate) {
			continue
		}
		p := plant.New(newID("plant"), strain.ID)
		plants = append(plants, p)
		res.PlantedIDs = append(res.PlantedIDs, p.ID)
	}
	res.GerminatedCount = len(plants)
	if len(plants) == 0 {
		return res, nil
	}
	pl := &plant.Planting{ID: newID("planting"), StrainID: strain.ID, PlantedTick: tick, Plants: plants}
	z.Plantings[pl.ID] = pl
	res.PlantingID = pl.ID
	if z.Status != ZoneGrowing {
		// a new cycle starts on the vegetative schedule
		z.LightCycle = vegetativeCycleOf(strain)
		z.Status = ZoneGrowing
	}
	return res, nil
}

type HarvestEntry struct {
	Planting *plant.Planting
	Plant    *plant.Plant
}

// HarvestablePlants lists harvest-ready plants ordered by planting id and then
// by position within the planting.
func (z *Zone) HarvestablePlants() []HarvestEntry {
	var out []HarvestEntry
	for _, pl := range z.SortedPlantings() {
		for _, p := range pl.Plants {
			if p.Stage == plant.Harvestable {
				out = append(out, HarvestEntry{Planting: pl, Plant: p})
			}
		}
	}
	return out
}

// ClearDead removes dead plants and returns how many were removed.
func (z *Zone) ClearDead() int {
	n := 0
	for _, pl := range z.Plantings {
		kept := pl.Plants[:0]
		for _, p := range pl.Plants {
			if p.Alive() {
				kept = append(kept, p)
			} else {
				n++
			}
		}
		pl.Plants = kept
	}
	return n
}

func (z *Zone) CleanupEmptyPlantings() {
	for id, pl := range z.Plantings {
		if pl.Quantity() == 0 {
			delete(z.Plantings, id)
		}
	}
}

// NearFlowering reports whether a vegetative planting is within days of its
// strain's flowering transition.
func (z *Zone) NearFlowering(bp Blueprints, days float64) bool {
	for _, pl := range z.SortedPlantings() {
		s, err := bp.Strain(pl.StrainID)
		if err != nil {
			continue
		}
		for _, p := range pl.Plants {
			if p.Stage == plant.Vegetative && s.Photoperiod.VegetationDays-p.AgeInDays() <= days {
				return true
			}
		}
	}
	return false
}

// FloweringCycle returns the flowering light schedule of the first planting
// with a known strain, or 12/12.
func (z *Zone) FloweringCycle(bp Blueprints) LightCycle {
	for _, pl := range z.SortedPlantings() {
		s, err := bp.Strain(pl.StrainID)
		if err != nil {
			continue
		}
		c := LightCycle{On: s.Environment.LightCycle.Flowering[0], Off: s.Environment.LightCycle.Flowering[1]}
		if c.Valid() {
			return c
		}
	}
	return LightCycle{On: 12, Off: 12}
}

// VegetativeCycle is the plan strain's vegetative preference, or 18/6.
func (z *Zone) VegetativeCycle(bp Blueprints) LightCycle {
	if z.Plan == nil {
		return DefaultLightCycle
	}
	s, err := bp.Strain(z.Plan.StrainID)
	if err != nil {
		return DefaultLightCycle
	}
	return vegetativeCycleOf(s)
}

func vegetativeCycleOf(s catalogs.StrainBlueprint) LightCycle {
	c := LightCycle{On: s.Environment.LightCycle.Vegetation[0], Off: s.Environment.LightCycle.Vegetation[1]}
	if !c.Valid() {
		return DefaultLightCycle
	}
	return c
}

type SupplyRates struct {
	WaterLPerDay     float64  `json:"water_l_per_day"`
	NutrientGPerDay  float64  `json:"nutrient_g_per_day"`
	MissingStrainIDs []string `json:"-"`
}

// SupplyConsumptionRates sums per-day plant demand. Plantings whose strain
// cannot be resolved are reported and skipped.
func (z *Zone) SupplyConsumptionRates(bp Blueprints) SupplyRates {
	var out SupplyRates
	for _, pl := range z.SortedPlantings() {
		s, err := bp.Strain(pl.StrainID)
		if err != nil {
			out.MissingStrainIDs = append(out.MissingStrainIDs, pl.StrainID)
			continue
		}
		out.WaterLPerDay += pl.WaterDemandPerTick(&s) * plant.TicksPerDay
		out.NutrientGPerDay += pl.NutrientDemandPerTick(&s) * plant.TicksPerDay
	}
	return out
}

// ConsumeSupplies draws down the tanks, never below zero.
func (z *Zone) ConsumeSupplies(waterL, nutrientG float64) {
	z.WaterL = math.Max(0, z.WaterL-waterL)
	z.NutrientG = math.Max(0, z.NutrientG-nutrientG)
}

func (z *Zone) AddSupplies(waterL, nutrientG float64) {
	z.WaterL += waterL
	z.NutrientG += nutrientG
}

// RunwayDays is how long the current stock lasts at the given rates; +Inf
// when nothing is consumed.
func RunwayDays(level, perDay float64) float64 {
	if perDay <= 0 {
		return math.Inf(1)
	}
	return level / perDay
}
