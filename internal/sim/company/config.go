package company

import (
	"growsim.app/internal/sim/facility"
	"growsim.app/internal/sim/genetics"
	"growsim.app/internal/sim/staff"
	"growsim.app/internal/sim/tuning"
)

type Config struct {
	InitialCapital float64
	TicksPerMonth  int
	OvertimePolicy staff.OvertimePolicy
	RefillWaterL   float64
	RefillNutrient float64
	BreedingFee    float64
	MutationFactor float64

	Ambient           facility.Environment
	WeatherAmplitudeC float64
	DiseaseChance     float64

	JobMarketSize     int
	RaiseIntervalDays int
	// underpaid staff ask this many days after their last raise decision
	UnderpaidRaiseDays int
	QuitMoraleBelow    float64

	// revenue bonus per Negotiation level of the best negotiator on site
	NegotiationBonusPerLevel float64

	AlertCooldownTicks uint64
	MaxAlerts          int
}

func (c *Config) applyDefaults() {
	if c.InitialCapital == 0 {
		c.InitialCapital = 100000
	}
	if c.TicksPerMonth <= 0 {
		c.TicksPerMonth = 720
	}
	if !c.OvertimePolicy.Valid() {
		c.OvertimePolicy = staff.OvertimePayout
	}
	if c.RefillWaterL <= 0 {
		c.RefillWaterL = 200
	}
	if c.RefillNutrient <= 0 {
		c.RefillNutrient = 500
	}
	if c.BreedingFee < 0 {
		c.BreedingFee = 0
	}
	if !(c.MutationFactor > 0) {
		c.MutationFactor = genetics.DefaultMutationFactor
	}
	if c.MutationFactor > 1 {
		c.MutationFactor = 1
	}
	if c.Ambient == (facility.Environment{}) {
		c.Ambient = facility.Environment{TemperatureC: 22, HumidityRH: 50, CO2PPM: 400}
	}
	if c.DiseaseChance < 0 {
		c.DiseaseChance = 0
	}
	if c.JobMarketSize <= 0 {
		c.JobMarketSize = 12
	}
	if c.RaiseIntervalDays <= 0 {
		c.RaiseIntervalDays = 180
	}
	if c.UnderpaidRaiseDays <= 0 {
		c.UnderpaidRaiseDays = 7
	}
	if c.UnderpaidRaiseDays > c.RaiseIntervalDays {
		c.UnderpaidRaiseDays = c.RaiseIntervalDays
	}
	if c.QuitMoraleBelow <= 0 {
		c.QuitMoraleBelow = 20
	}
	if c.NegotiationBonusPerLevel <= 0 {
		c.NegotiationBonusPerLevel = 0.02
	}
	if c.AlertCooldownTicks == 0 {
		c.AlertCooldownTicks = 24
	}
	if c.MaxAlerts <= 0 {
		c.MaxAlerts = 200
	}
}

// ConfigFromTuning maps the tuning file onto a company config.
func ConfigFromTuning(t tuning.Tuning) Config {
	return Config{
		InitialCapital: t.Economy.InitialCapital,
		TicksPerMonth:  t.Economy.TicksPerMonth,
		OvertimePolicy: staff.OvertimePolicy(t.Economy.OvertimePolicy),
		RefillWaterL:   t.Economy.RefillWaterL,
		RefillNutrient: t.Economy.RefillNutrient,
		BreedingFee:    t.Economy.BreedingFee,
		MutationFactor: t.Economy.MutationFactor,

		NegotiationBonusPerLevel: t.Economy.NegotiationBonusPerLevel,
		Ambient: facility.Environment{
			TemperatureC: t.Environment.AmbientTemperatureC,
			HumidityRH:   t.Environment.AmbientHumidityRH,
			CO2PPM:       t.Environment.AmbientCO2PPM,
		},
		WeatherAmplitudeC:  t.Environment.WeatherAmplitudeC,
		DiseaseChance:      t.Environment.DiseaseChance,
		JobMarketSize:      t.Staff.JobMarketSize,
		RaiseIntervalDays:  t.Staff.RaiseIntervalDays,
		UnderpaidRaiseDays: t.Staff.UnderpaidRaiseDays,
		QuitMoraleBelow:    t.Staff.QuitMoraleBelow,
		AlertCooldownTicks: uint64(t.Alerts.CooldownTicks),
		MaxAlerts:          t.Alerts.MaxAlerts,
	}
}
