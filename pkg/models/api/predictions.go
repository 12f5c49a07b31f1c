package api

type SavedPrediction struct {
	ID               string           `json:"id"`
	UserID           string           `json:"userId"`
	CompanyName      string           `json:"companyName"`
	InputData        PredictionInput  `json:"input_data"`
	PredictedRevenue float64          `json:"predicted_revenue"`
	ModelPerformance ModelPerformance `json:"model_performance"`
	CreatedAt        string           `json:"createdAt"`
	Notes            string           `json:"notes"`
}

type SavePredictionRequest struct {
	CompanyName      string           `json:"companyName"`
	InputData        PredictionInput  `json:"input_data"`
	PredictedRevenue float64          `json:"predicted_revenue"`
	ModelPerformance ModelPerformance `json:"model_performance"`
	Notes            string           `json:"notes"`
}

type PredictionList struct {
	Predictions []SavedPrediction `json:"predictions"`
	Total       int               `json:"total"`
	Status      string            `json:"status"`
}

type SavePredictionResponse struct {
	Prediction SavedPrediction `json:"prediction"`
	Message    string          `json:"message"`
	Status     string          `json:"status"`
}

type HistorySummary struct {
	TotalPredictions        int     `json:"total_predictions"`
	AveragePredictedRevenue float64 `json:"average_predicted_revenue"`
	ModelAccuracy           float64 `json:"model_accuracy"`
	LatestAt                *string `json:"latest_at"`
	Status                  string  `json:"status"`
}

type ExportResponse struct {
	Location string `json:"location"`
	Rows     int    `json:"rows"`
	Status   string `json:"status"`
}
