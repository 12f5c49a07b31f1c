package adapters

import (
	"github.com/de-tools/revenuecast/pkg/models/api"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/models/store"
)

func MapDomainSavedPredictionToAPI(p domain.SavedPrediction) api.SavedPrediction {
	return api.SavedPrediction{
		ID:               p.ID,
		UserID:           p.OwnerID,
		CompanyName:      p.CompanyName,
		InputData:        MapDomainInputToAPI(p.Input),
		PredictedRevenue: p.PredictedRevenue,
		ModelPerformance: MapDomainPerformanceToAPI(p.Performance),
		CreatedAt:        FormatTimestamp(p.CreatedAt),
		Notes:            p.Notes,
	}
}

func MapDomainSavedPredictionsToAPI(list []domain.SavedPrediction) []api.SavedPrediction {
	res := make([]api.SavedPrediction, 0, len(list))
	for _, p := range list {
		res = append(res, MapDomainSavedPredictionToAPI(p))
	}
	return res
}

func MapStoreSavedPredictionToDomain(p *store.SavedPrediction) *domain.SavedPrediction {
	if p == nil {
		return nil
	}

	return &domain.SavedPrediction{
		ID:          p.ID,
		OwnerID:     p.OwnerID,
		CompanyName: p.CompanyName,
		Input: domain.PredictionInput{
			MarketingSpend: p.MarketingSpend,
			RDSpend:        p.RDSpend,
			AdminCosts:     p.AdminCosts,
			NumEmployees:   p.NumEmployees,
			Region:         domain.Region(p.Region),
		},
		PredictedRevenue: p.PredictedRevenue,
		Performance:      domain.ModelPerformance{R2Score: p.R2Score, MAE: p.MAE},
		CreatedAt:        p.CreatedAt,
		Notes:            p.Notes,
	}
}

func MapDomainSavedPredictionToStore(p *domain.SavedPrediction) *store.SavedPrediction {
	return &store.SavedPrediction{
		ID:               p.ID,
		OwnerID:          p.OwnerID,
		CompanyName:      p.CompanyName,
		MarketingSpend:   p.Input.MarketingSpend,
		RDSpend:          p.Input.RDSpend,
		AdminCosts:       p.Input.AdminCosts,
		NumEmployees:     p.Input.NumEmployees,
		Region:           string(p.Input.Region),
		PredictedRevenue: p.PredictedRevenue,
		R2Score:          p.Performance.R2Score,
		MAE:              p.Performance.MAE,
		CreatedAt:        p.CreatedAt,
		Notes:            p.Notes,
	}
}

func MapDomainSummaryToAPI(s domain.HistorySummary) api.HistorySummary {
	res := api.HistorySummary{
		TotalPredictions:        s.Total,
		AveragePredictedRevenue: s.AveragePredictedRevenue,
		ModelAccuracy:           s.ModelAccuracy,
		Status:                  api.StatusSuccess,
	}
	if s.LatestAt != nil {
		latest := FormatTimestamp(*s.LatestAt)
		res.LatestAt = &latest
	}
	return res
}
