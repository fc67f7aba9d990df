package genetics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"growsim.app/internal/sim/catalogs"
	"growsim.app/internal/sim/rng"
)

func parents() (catalogs.StrainBlueprint, catalogs.StrainBlueprint) {
	a := catalogs.StrainBlueprint{
		ID: "a", Name: "Alpha",
		Genotype:        catalogs.Genotype{Sativa: 0.8, Indica: 0.2},
		Chemotype:       catalogs.Chemotype{THC: 0.2, CBD: 0.01},
		GerminationRate: 0.9,
		Growth:          catalogs.GrowthModel{GrowthRate: 1.2},
		Photoperiod:     catalogs.Photoperiod{VegetationDays: 20, FloweringDays: 60},
		Environment: catalogs.EnvPreferences{
			IdealTemperature: catalogs.PhaseRange{Vegetation: [2]float64{20, 28}, Flowering: [2]float64{18, 26}},
			LightCycle:       catalogs.PhaseCycle{Vegetation: [2]int{18, 6}, Flowering: [2]int{12, 12}},
		},
	}
	b := catalogs.StrainBlueprint{
		ID: "b", Name: "Beta",
		Genotype:        catalogs.Genotype{Sativa: 0.1, Indica: 0.6, Ruderalis: 0.3},
		Chemotype:       catalogs.Chemotype{THC: 0.1, CBD: 0.05},
		GerminationRate: 0.7,
		Growth:          catalogs.GrowthModel{GrowthRate: 0.8},
		Photoperiod:     catalogs.Photoperiod{VegetationDays: 30, FloweringDays: 50},
	}
	return a, b
}

func TestBreed_DeterministicUnderSeed(t *testing.T) {
	a, b := parents()
	c1, err := Breed(a, b, "c", "Child", 0.2, rng.New(77))
	require.NoError(t, err)
	c2, err := Breed(a, b, "c", "Child", 0.2, rng.New(77))
	require.NoError(t, err)
	assert.Equal(t, c1, c2)

	c3, _ := Breed(a, b, "c", "Child", 0.2, rng.New(78))
	assert.NotEqual(t, c1.Chemotype, c3.Chemotype)
}

func TestBreed_GenotypeNormalizedAndLineage(t *testing.T) {
	a, b := parents()
	c, err := Breed(a, b, "c", "Child", 0.2, rng.New(1))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Genotype.Sativa+c.Genotype.Indica+c.Genotype.Ruderalis, 1e-9)
	assert.InDelta(t, 0.45, c.Genotype.Sativa, 1e-9)
	assert.Equal(t, []string{"Alpha", "Beta"}, c.Lineage.Parents)
	assert.Equal(t, "c", c.ID)
}

func TestBreed_MutationBounded(t *testing.T) {
	a, b := parents()
	for seed := int64(0); seed < 200; seed++ {
		c, err := Breed(a, b, "c", "Child", 0.2, rng.New(seed))
		require.NoError(t, err)
		// averages are veg 25, flower 55, THC 0.15, scaled by at most +/-10%
		assert.InDelta(t, 25, c.Photoperiod.VegetationDays, 2.5+1e-9)
		assert.InDelta(t, 55, c.Photoperiod.FloweringDays, 5.5+1e-9)
		assert.InDelta(t, 0.15, c.Chemotype.THC, 0.015+1e-9)
	}
}

func TestBreed_ZeroMutationIsPureAverage(t *testing.T) {
	a, b := parents()
	c, err := Breed(a, b, "c", "Child", 0, rng.New(3))
	require.NoError(t, err)
	assert.InDelta(t, 1.0, c.Growth.GrowthRate, 1e-12)
	assert.InDelta(t, 0.8, c.GerminationRate, 1e-12)
}

func TestBreed_RejectsBadMutation(t *testing.T) {
	a, b := parents()
	_, err := Breed(a, b, "c", "Child", 1.5, rng.New(1))
	assert.ErrorIs(t, err, ErrInvalidMutation)
}
