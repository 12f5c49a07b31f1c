package prediction

import "github.com/de-tools/revenuecast/pkg/models/domain"

// Coefficients is the fixed linear model used by the Estimator. Region
// offsets are never written after construction, so a Coefficients can be
// shared between goroutines.
type Coefficients struct {
	Intercept      float64
	MarketingSpend float64
	RDSpend        float64
	AdminCosts     float64
	NumEmployees   float64

	regionOffsets map[domain.Region]float64
}

// DefaultCoefficients returns the coefficient table of the bundled linear
// regression model. Asia is the reference category and has no offset.
func DefaultCoefficients() Coefficients {
	return Coefficients{
		Intercept:      15000,
		MarketingSpend: 0.85,
		RDSpend:        0.92,
		AdminCosts:     -0.35,
		NumEmployees:   180.5,
		regionOffsets: map[domain.Region]float64{
			domain.RegionEurope:       -2500,
			domain.RegionNorthAmerica: 3200,
		},
	}
}

func (c Coefficients) RegionOffset(r domain.Region) float64 {
	return c.regionOffsets[r]
}

// Table flattens the coefficients into the feature names published by the
// model info endpoint.
func (c Coefficients) Table() map[string]float64 {
	return map[string]float64{
		"intercept":            c.Intercept,
		"marketing_spend":      c.MarketingSpend,
		"rd_spend":             c.RDSpend,
		"admin_costs":          c.AdminCosts,
		"num_employees":        c.NumEmployees,
		"region_europe":        c.RegionOffset(domain.RegionEurope),
		"region_north_america": c.RegionOffset(domain.RegionNorthAmerica),
	}
}
