package prediction

import (
	"math"

	"github.com/de-tools/revenuecast/pkg/models/domain"
)

// Estimator evaluates the linear revenue model. It is stateless apart from
// its read-only coefficients and noise source.
type Estimator struct {
	coef  Coefficients
	noise NoiseSource
}

func NewEstimator(coef Coefficients, noise NoiseSource) *Estimator {
	if noise == nil {
		noise = ZeroNoise{}
	}
	return &Estimator{coef: coef, noise: noise}
}

// Baseline returns the pre-noise, unclamped model output.
func (e *Estimator) Baseline(in domain.PredictionInput) float64 {
	value := e.coef.Intercept
	value += in.MarketingSpend * e.coef.MarketingSpend
	value += in.RDSpend * e.coef.RDSpend
	value += in.AdminCosts * e.coef.AdminCosts
	value += float64(in.NumEmployees) * e.coef.NumEmployees
	value += e.coef.RegionOffset(in.Region)
	return value
}

// Estimate returns the predicted revenue for a validated input. The result
// is never negative.
func (e *Estimator) Estimate(in domain.PredictionInput) float64 {
	return math.Max(0, e.Baseline(in)+e.noise.Noise())
}

// Breakdown lists each component's contribution to the baseline. The region
// component is omitted for the reference category.
func (e *Estimator) Breakdown(in domain.PredictionInput) []domain.Contribution {
	parts := []domain.Contribution{
		{Component: "Base Revenue", Value: e.coef.Intercept},
		{Component: "Marketing Spend", Value: in.MarketingSpend * e.coef.MarketingSpend},
		{Component: "R&D Spend", Value: in.RDSpend * e.coef.RDSpend},
		{Component: "Admin Costs", Value: in.AdminCosts * e.coef.AdminCosts},
		{Component: "Employees", Value: float64(in.NumEmployees) * e.coef.NumEmployees},
	}
	if offset := e.coef.RegionOffset(in.Region); offset != 0 {
		parts = append(parts, domain.Contribution{
			Component: "Region (" + string(in.Region) + ")",
			Value:     offset,
		})
	}
	return parts
}

func (e *Estimator) Coefficients() Coefficients {
	return e.coef
}
