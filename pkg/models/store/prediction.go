package store

import "time"

type SavedPrediction struct {
	ID               string
	OwnerID          string
	CompanyName      string
	MarketingSpend   float64
	RDSpend          float64
	AdminCosts       float64
	NumEmployees     int
	Region           string
	PredictedRevenue float64
	R2Score          float64
	MAE              float64
	CreatedAt        time.Time
	Notes            string
}

type PredictionStats struct {
	Count          int64
	AverageRevenue float64
	LatestAt       *time.Time
}
