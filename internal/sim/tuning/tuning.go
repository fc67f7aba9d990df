package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickIntervalMs     int     `yaml:"tick_interval_ms"`
	Speed              float64 `yaml:"speed"`
	SnapshotEveryTicks int     `yaml:"snapshot_every_ticks"`

	Economy     Economy     `yaml:"economy"`
	Environment Environment `yaml:"environment"`
	Staff       Staff       `yaml:"staff"`
	Alerts      Alerts      `yaml:"alerts"`
}

type Economy struct {
	InitialCapital float64 `yaml:"initial_capital"`
	TicksPerMonth  int     `yaml:"ticks_per_month"`
	OvertimePolicy string  `yaml:"overtime_policy"`
	RefillWaterL   float64 `yaml:"refill_water_l"`
	RefillNutrient float64 `yaml:"refill_nutrient_g"`
	BreedingFee    float64 `yaml:"breeding_fee"`
	MutationFactor float64 `yaml:"mutation_factor"`

	NegotiationBonusPerLevel float64 `yaml:"negotiation_bonus_per_level"`
}

type Environment struct {
	AmbientTemperatureC float64 `yaml:"ambient_temperature_c"`
	AmbientHumidityRH   float64 `yaml:"ambient_humidity_rh"`
	AmbientCO2PPM       float64 `yaml:"ambient_co2_ppm"`
	WeatherAmplitudeC   float64 `yaml:"weather_amplitude_c"`
	DiseaseChance       float64 `yaml:"disease_chance"`
}

type Staff struct {
	JobMarketSize      int     `yaml:"job_market_size"`
	RaiseIntervalDays  int     `yaml:"raise_interval_days"`
	UnderpaidRaiseDays int     `yaml:"underpaid_raise_days"`
	QuitMoraleBelow    float64 `yaml:"quit_morale_below"`
}

type Alerts struct {
	CooldownTicks int `yaml:"cooldown_ticks"`
	MaxAlerts     int `yaml:"max_alerts"`
}

func Defaults() Tuning {
	return Tuning{
		ProtocolVersion:    "1.0",
		TickIntervalMs:     1000,
		Speed:              1,
		SnapshotEveryTicks: 24,
		Economy: Economy{
			InitialCapital: 100000,
			TicksPerMonth:  720,
			OvertimePolicy: "payout",
			RefillWaterL:   200,
			RefillNutrient: 500,
			BreedingFee:    2500,
			MutationFactor: 0.1,

			NegotiationBonusPerLevel: 0.02,
		},
		Environment: Environment{
			AmbientTemperatureC: 22,
			AmbientHumidityRH:   50,
			AmbientCO2PPM:       400,
			WeatherAmplitudeC:   0,
			DiseaseChance:       0.002,
		},
		Staff: Staff{
			JobMarketSize:      12,
			RaiseIntervalDays:  180,
			UnderpaidRaiseDays: 7,
			QuitMoraleBelow:    20,
		},
		Alerts: Alerts{
			CooldownTicks: 24,
			MaxAlerts:     200,
		},
	}
}

// Load reads a tuning file on top of Defaults, so omitted keys keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}

// Digest identifies the effective tuning in WELCOME and the index.
func Digest(t Tuning) string {
	b, _ := json.Marshal(t)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
