package api

type InputRange struct {
	Min     float64    `json:"min"`
	Max     float64    `json:"max"`
	Typical [2]float64 `json:"typical"`
}

type ExtendedPerformance struct {
	R2Score    float64 `json:"r2_score"`
	MAE        float64 `json:"mae"`
	RMSE       float64 `json:"rmse"`
	TrainingR2 float64 `json:"training_r2"`
	TestR2     float64 `json:"test_r2"`
}

type ModelInfo struct {
	ModelType        string                `json:"model_type"`
	Version          string                `json:"version"`
	TrainingDate     string                `json:"training_date"`
	DatasetSize      int                   `json:"dataset_size"`
	Features         []string              `json:"features"`
	Performance      ExtendedPerformance   `json:"performance"`
	RegionsSupported []string              `json:"regions_supported"`
	InputRanges      map[string]InputRange `json:"input_ranges"`
	Coefficients     map[string]float64    `json:"coefficients"`
	ModelDescription string                `json:"model_description"`
	LastUpdated      string                `json:"last_updated"`
}

type ModelInfoResponse struct {
	Success   bool      `json:"success"`
	Data      ModelInfo `json:"data"`
	Timestamp string    `json:"timestamp"`
}
