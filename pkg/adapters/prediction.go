package adapters

import (
	"time"

	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
)

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(api.TimestampLayout)
}

func MapDomainInputToAPI(in domain.PredictionInput) api.PredictionInput {
	return api.PredictionInput{
		MarketingSpend: in.MarketingSpend,
		RDSpend:        in.RDSpend,
		AdminCosts:     in.AdminCosts,
		NumEmployees:   in.NumEmployees,
		Region:         string(in.Region),
	}
}

func MapDomainPerformanceToAPI(p domain.ModelPerformance) api.ModelPerformance {
	return api.ModelPerformance{R2Score: p.R2Score, MAE: p.MAE}
}

func MapDomainOutputToAPI(out *domain.PredictionOutput) api.PredictionResponse {
	return api.PredictionResponse{
		PredictedRevenue: out.PredictedRevenue,
		InputData:        MapDomainInputToAPI(out.Input),
		ModelPerformance: MapDomainPerformanceToAPI(out.Performance),
		Timestamp:        FormatTimestamp(out.Timestamp),
		Status:           api.StatusSuccess,
	}
}

func MapDomainBatchToAPI(out *domain.BatchOutput) api.BatchResponse {
	predictions := make([]api.BatchPrediction, 0, len(out.Predictions))
	for _, p := range out.Predictions {
		predictions = append(predictions, api.BatchPrediction{
			CompanyIndex:     p.CompanyIndex,
			PredictedRevenue: p.PredictedRevenue,
			InputData:        MapDomainInputToAPI(p.Input),
		})
	}
	return api.BatchResponse{
		Predictions:    predictions,
		TotalCompanies: len(predictions),
		Timestamp:      FormatTimestamp(out.Timestamp),
		Status:         api.StatusSuccess,
	}
}

func MapDomainContributionsToAPI(parts []domain.Contribution) []api.Contribution {
	res := make([]api.Contribution, 0, len(parts))
	for _, p := range parts {
		res = append(res, api.Contribution{Component: p.Component, Value: p.Value})
	}
	return res
}

func MapDomainModelInfoToAPI(info domain.ModelInfo) api.ModelInfo {
	regions := make([]string, 0, len(info.RegionsSupported))
	for _, r := range info.RegionsSupported {
		regions = append(regions, string(r))
	}

	ranges := make(map[string]api.InputRange, len(info.InputRanges))
	for name, r := range info.InputRanges {
		ranges[name] = api.InputRange{
			Min:     r.Min,
			Max:     r.Max,
			Typical: [2]float64{r.TypicalLow, r.TypicalHi},
		}
	}

	return api.ModelInfo{
		ModelType:    info.ModelType,
		Version:      info.Version,
		TrainingDate: info.TrainingDate.UTC().Format(time.RFC3339),
		DatasetSize:  info.DatasetSize,
		Features:     info.Features,
		Performance: api.ExtendedPerformance{
			R2Score:    info.Performance.R2Score,
			MAE:        info.Performance.MAE,
			RMSE:       info.Performance.RMSE,
			TrainingR2: info.Performance.TrainingR2,
			TestR2:     info.Performance.TestR2,
		},
		RegionsSupported: regions,
		InputRanges:      ranges,
		Coefficients:     info.Coefficients,
		ModelDescription: info.Description,
		LastUpdated:      info.LastUpdated.UTC().Format(time.RFC3339),
	}
}
