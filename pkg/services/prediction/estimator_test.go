package prediction

import (
	"testing"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/stretchr/testify/assert"
)

func scenarioInput(region domain.Region) domain.PredictionInput {
	return domain.PredictionInput{
		MarketingSpend: 150000,
		RDSpend:        120000,
		AdminCosts:     50000,
		NumEmployees:   250,
		Region:         region,
	}
}

func TestEstimator_Scenario(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), ZeroNoise{})

	// 15000 + 127500 + 110400 - 17500 + 45125 + 3200
	assert.InDelta(t, 283725.0, e.Estimate(scenarioInput(domain.RegionNorthAmerica)), 1e-6)
}

func TestEstimator_RegionOffsets(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), ZeroNoise{})
	asia := e.Baseline(scenarioInput(domain.RegionAsia))

	assert.InDelta(t, -2500.0, e.Baseline(scenarioInput(domain.RegionEurope))-asia, 1e-6)
	assert.InDelta(t, 3200.0, e.Baseline(scenarioInput(domain.RegionNorthAmerica))-asia, 1e-6)
	assert.InDelta(t, 280525.0, asia, 1e-6)
}

func TestEstimator_ClampsAtZero(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), FixedNoise(-DefaultNoiseAmplitude))
	in := domain.PredictionInput{
		AdminCosts:   1_000_000,
		NumEmployees: 1,
		Region:       domain.RegionEurope,
	}

	assert.Less(t, e.Baseline(in), 0.0)
	assert.Equal(t, 0.0, e.Estimate(in))
}

func TestEstimator_NeverNegative(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), NewUniformNoise(DefaultNoiseAmplitude))
	for _, admin := range []float64{0, 10_000, 50_000, 100_000, 1_000_000} {
		for _, region := range domain.Regions() {
			in := domain.PredictionInput{AdminCosts: admin, NumEmployees: 1, Region: region}
			for i := 0; i < 50; i++ {
				assert.GreaterOrEqual(t, e.Estimate(in), 0.0)
			}
		}
	}
}

func TestEstimator_NoiseBound(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), NewUniformNoise(DefaultNoiseAmplitude))
	in := scenarioInput(domain.RegionAsia)
	baseline := e.Baseline(in)

	const trials = 20000
	var sum float64
	for i := 0; i < trials; i++ {
		a, b := e.Estimate(in), e.Estimate(in)
		assert.LessOrEqual(t, a-baseline, DefaultNoiseAmplitude)
		assert.GreaterOrEqual(t, a-baseline, -DefaultNoiseAmplitude)
		assert.LessOrEqual(t, b-a, 2*DefaultNoiseAmplitude)
		sum += a - b
	}

	// Standard deviation of the mean difference is ~2500*sqrt(2/3)/sqrt(trials) ≈ 14.
	assert.InDelta(t, 0, sum/trials, 100)
}

func TestEstimator_NilNoiseIsDeterministic(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), nil)
	in := scenarioInput(domain.RegionEurope)
	assert.Equal(t, e.Estimate(in), e.Estimate(in))
}

func TestEstimator_Breakdown(t *testing.T) {
	e := NewEstimator(DefaultCoefficients(), ZeroNoise{})

	parts := e.Breakdown(scenarioInput(domain.RegionNorthAmerica))
	var total float64
	for _, p := range parts {
		total += p.Value
	}
	assert.InDelta(t, 283725.0, total, 1e-6)
	assert.Equal(t, "Region (North America)", parts[len(parts)-1].Component)

	assert.Len(t, e.Breakdown(scenarioInput(domain.RegionAsia)), 5)
}

func TestUniformNoise_NonPositiveAmplitude(t *testing.T) {
	assert.Equal(t, ZeroNoise{}, NewUniformNoise(0))
	assert.Equal(t, ZeroNoise{}, NewUniformNoise(-1))
}
