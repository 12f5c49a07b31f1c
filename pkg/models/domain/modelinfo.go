package domain

import "time"

type InputRange struct {
	Min        float64
	Max        float64
	TypicalLow float64
	TypicalHi  float64
}

type ExtendedPerformance struct {
	R2Score    float64
	MAE        float64
	RMSE       float64
	TrainingR2 float64
	TestR2     float64
}

type ModelInfo struct {
	ModelType        string
	Version          string
	TrainingDate     time.Time
	DatasetSize      int
	Features         []string
	Performance      ExtendedPerformance
	RegionsSupported []Region
	InputRanges      map[string]InputRange
	Coefficients     map[string]float64
	Description      string
	LastUpdated      time.Time
}
