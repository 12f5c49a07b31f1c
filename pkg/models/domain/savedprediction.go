package domain

import "time"

type SavedPrediction struct {
	ID               string
	OwnerID          string
	CompanyName      string
	Input            PredictionInput
	PredictedRevenue float64
	Performance      ModelPerformance
	CreatedAt        time.Time
	Notes            string
}

type HistorySummary struct {
	Total                   int
	AveragePredictedRevenue float64
	ModelAccuracy           float64
	LatestAt                *time.Time
}
