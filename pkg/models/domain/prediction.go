package domain

import "time"

type Region string

const (
	RegionNorthAmerica Region = "North America"
	RegionEurope       Region = "Europe"
	RegionAsia         Region = "Asia"
)

// Regions lists the supported regions in display order.
func Regions() []Region {
	return []Region{RegionNorthAmerica, RegionEurope, RegionAsia}
}

func (r Region) Valid() bool {
	switch r {
	case RegionNorthAmerica, RegionEurope, RegionAsia:
		return true
	}
	return false
}

type PredictionInput struct {
	MarketingSpend float64
	RDSpend        float64
	AdminCosts     float64
	NumEmployees   int
	Region         Region
}

type ModelPerformance struct {
	R2Score float64
	MAE     float64
}

type PredictionOutput struct {
	PredictedRevenue float64
	Input            PredictionInput
	Performance      ModelPerformance
	Timestamp        time.Time
}

type BatchPrediction struct {
	CompanyIndex     int
	PredictedRevenue float64
	Input            PredictionInput
}

type BatchOutput struct {
	Predictions []BatchPrediction
	Timestamp   time.Time
}

// Contribution is the share of a single feature in a pre-noise estimate.
type Contribution struct {
	Component string
	Value     float64
}
