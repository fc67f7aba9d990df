package catalogs

type StructureBlueprint struct {
	ID                       string  `json:"id"`
	Name                     string  `json:"name"`
	AreaM2                   float64 `json:"area_m2"`
	HeightM                  float64 `json:"height_m"`
	RentalCostPerSqmPerMonth float64 `json:"rental_cost_per_sqm_per_month"`
	UpfrontFee               float64 `json:"upfront_fee"`
}

type StrainBlueprint struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Lineage         Lineage        `json:"lineage"`
	Genotype        Genotype       `json:"genotype"`
	Chemotype       Chemotype      `json:"chemotype"`
	GerminationRate float64        `json:"germination_rate"`
	Growth          GrowthModel    `json:"growth"`
	Photoperiod     Photoperiod    `json:"photoperiod"`
	Environment     EnvPreferences `json:"environment"`
	NutrientDemand  StageDemand    `json:"nutrient_demand"`
	WaterDemand     StageDemand    `json:"water_demand"`
}

type Lineage struct {
	Parents []string `json:"parents"`
}

type Genotype struct {
	Sativa    float64 `json:"sativa"`
	Indica    float64 `json:"indica"`
	Ruderalis float64 `json:"ruderalis"`
}

type Chemotype struct {
	THC float64 `json:"thc"`
	CBD float64 `json:"cbd"`
}

type GrowthModel struct {
	GrowthRate float64     `json:"growth_rate"`
	Noise      NoiseConfig `json:"noise"`
}

type NoiseConfig struct {
	Enabled bool    `json:"enabled"`
	Pct     float64 `json:"pct"`
}

type Photoperiod struct {
	VegetationDays float64 `json:"vegetation_days"`
	FloweringDays  float64 `json:"flowering_days"`
}

type EnvPreferences struct {
	IdealTemperature PhaseRange `json:"ideal_temperature"`
	LightCycle       PhaseCycle `json:"light_cycle"`
}

// PhaseRange holds [min,max] per growth phase.
type PhaseRange struct {
	Vegetation [2]float64 `json:"vegetation"`
	Flowering  [2]float64 `json:"flowering"`
}

// PhaseCycle holds [on,off] light hours per growth phase.
type PhaseCycle struct {
	Vegetation [2]int `json:"vegetation"`
	Flowering  [2]int `json:"flowering"`
}

// StageDemand is a per-plant daily amount (grams or liters).
type StageDemand struct {
	Seedling   float64 `json:"seedling"`
	Vegetation float64 `json:"vegetation"`
	Flowering  float64 `json:"flowering"`
}

type DeviceKind string

const (
	KindLamp                DeviceKind = "Lamp"
	KindClimateUnit         DeviceKind = "ClimateUnit"
	KindHumidityControlUnit DeviceKind = "HumidityControlUnit"
	KindCO2Injector         DeviceKind = "CO2Injector"
)

func (k DeviceKind) Valid() bool {
	switch k {
	case KindLamp, KindClimateUnit, KindHumidityControlUnit, KindCO2Injector:
		return true
	}
	return false
}

type DeviceBlueprint struct {
	ID           string       `json:"id"`
	Kind         DeviceKind   `json:"kind"`
	Name         string       `json:"name"`
	Capabilities Capabilities `json:"capabilities"`
}

// Capabilities is the union of every device kind's numeric record. Fields
// that do not apply to a kind stay zero.
type Capabilities struct {
	PowerKW            float64 `json:"power_kw"`
	CoverageM2         float64 `json:"coverage_m2,omitempty"`
	PPFD               float64 `json:"ppfd,omitempty"`
	AirflowM3H         float64 `json:"airflow_m3h,omitempty"`
	CoolingKW          float64 `json:"cooling_kw,omitempty"`
	MoistureRemovalLPH float64 `json:"moisture_removal_lph,omitempty"`
	PulseRate          float64 `json:"pulse_rate,omitempty"`
	TargetTemperature  float64 `json:"target_temperature,omitempty"`
	TargetHumidity     float64 `json:"target_humidity,omitempty"`
	TargetCO2          float64 `json:"target_co2,omitempty"`
}

type CultivationMethod struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	AreaPerPlantM2     float64 `json:"area_per_plant_m2"`
	MaxCycles          int     `json:"max_cycles"`
	SetupCostPerSqm    float64 `json:"setup_cost_per_sqm"`
	OverhaulCostPerSqm float64 `json:"overhaul_cost_per_sqm"`
}

type Prices struct {
	Devices       map[string]DevicePrice `json:"devices"`
	Strains       map[string]StrainPrice `json:"strains"`
	DefaultStrain StrainPrice            `json:"default_strain"`
	Utility       UtilityPrices          `json:"utility"`
}

type DevicePrice struct {
	CapitalExpenditure         float64 `json:"capital_expenditure"`
	BaseMaintenanceCostPerTick float64 `json:"base_maintenance_cost_per_tick"`
}

type StrainPrice struct {
	SeedPrice           float64 `json:"seed_price"`
	HarvestPricePerGram float64 `json:"harvest_price_per_gram"`
}

type UtilityPrices struct {
	PricePerKWh           float64 `json:"price_per_kwh"`
	PricePerLiterWater    float64 `json:"price_per_liter_water"`
	PricePerGramNutrients float64 `json:"price_per_gram_nutrients"`
}

type CostBasis string

const (
	BasisPerAction      CostBasis = "perAction"
	BasisPerPlant       CostBasis = "perPlant"
	BasisPerSquareMeter CostBasis = "perSquareMeter"
)

type CostModel struct {
	Basis        CostBasis `json:"basis"`
	LaborMinutes float64   `json:"labor_minutes"`
}

type TaskDefinition struct {
	Type          string    `json:"type"`
	Priority      int       `json:"priority"`
	RequiredRole  string    `json:"required_role"`
	RequiredSkill string    `json:"required_skill"`
	MinSkillLevel int       `json:"min_skill_level"`
	CostModel     CostModel `json:"cost_model"`
	Description   string    `json:"description"`
}
