package api

// TimestampLayout renders timestamps with millisecond precision in UTC.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

const StatusSuccess = "success"

type PredictionInput struct {
	MarketingSpend float64 `json:"marketing_spend"`
	RDSpend        float64 `json:"rd_spend"`
	AdminCosts     float64 `json:"admin_costs"`
	NumEmployees   int     `json:"num_employees"`
	Region         string  `json:"region"`
}

type ModelPerformance struct {
	R2Score float64 `json:"r2_score"`
	MAE     float64 `json:"mae"`
}

type PredictionResponse struct {
	PredictedRevenue float64          `json:"predicted_revenue"`
	InputData        PredictionInput  `json:"input_data"`
	ModelPerformance ModelPerformance `json:"model_performance"`
	Timestamp        string           `json:"timestamp"`
	Status           string           `json:"status"`
	Breakdown        []Contribution   `json:"breakdown,omitempty"`
}

type BatchRequest struct {
	Companies []map[string]any `json:"companies"`
}

type BatchPrediction struct {
	CompanyIndex     int             `json:"company_index"`
	PredictedRevenue float64         `json:"predicted_revenue"`
	InputData        PredictionInput `json:"input_data"`
}

type BatchResponse struct {
	Predictions    []BatchPrediction `json:"predictions"`
	TotalCompanies int               `json:"total_companies"`
	Timestamp      string            `json:"timestamp"`
	Status         string            `json:"status"`
}

type APIDescription struct {
	Message          string            `json:"message"`
	Version          string            `json:"version"`
	Endpoints        map[string]string `json:"endpoints"`
	ModelPerformance ModelPerformance  `json:"model_performance"`
}

type Contribution struct {
	Component string  `json:"component"`
	Value     float64 `json:"value"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
	Message string   `json:"message,omitempty"`
	Status  string   `json:"status,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type Health struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
	Timestamp   string `json:"timestamp"`
}
