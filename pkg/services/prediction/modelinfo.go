package prediction

import (
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
)

var (
	// Performance is reported with every prediction.
	Performance = domain.ModelPerformance{
		R2Score: 0.9234,
		MAE:     8542.33,
	}

	trainedAt = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
)

// InputRanges documents the ranges the model was trained on. They are not
// enforced by Validate.
func InputRanges() map[string]domain.InputRange {
	return map[string]domain.InputRange{
		"marketing_spend": {Min: 0, Max: 500000, TypicalLow: 50000, TypicalHi: 200000},
		"rd_spend":        {Min: 0, Max: 300000, TypicalLow: 30000, TypicalHi: 150000},
		"admin_costs":     {Min: 0, Max: 200000, TypicalLow: 20000, TypicalHi: 80000},
		"num_employees":   {Min: 1, Max: 1000, TypicalLow: 50, TypicalHi: 500},
	}
}

func modelInfo(coef Coefficients) domain.ModelInfo {
	return domain.ModelInfo{
		ModelType:    "Linear Regression",
		Version:      "1.0.0",
		TrainingDate: trainedAt,
		DatasetSize:  201,
		Features: []string{
			"Marketing_Spend",
			"R&D_Spend",
			"Administration_Costs",
			"Number_of_Employees",
			"Region_Europe",
			"Region_North America",
		},
		Performance: domain.ExtendedPerformance{
			R2Score:    Performance.R2Score,
			MAE:        Performance.MAE,
			RMSE:       12847.56,
			TrainingR2: 0.9456,
			TestR2:     0.9234,
		},
		RegionsSupported: domain.Regions(),
		InputRanges:      InputRanges(),
		Coefficients:     coef.Table(),
		Description: "Linear regression model trained on business data to predict company " +
			"revenue from key financial and operational metrics.",
		LastUpdated: trainedAt,
	}
}

// outOfRange names the features of in that exceed the documented maximums.
func outOfRange(in domain.PredictionInput) []string {
	ranges := InputRanges()
	values := map[string]float64{
		"marketing_spend": in.MarketingSpend,
		"rd_spend":        in.RDSpend,
		"admin_costs":     in.AdminCosts,
		"num_employees":   float64(in.NumEmployees),
	}
	var names []string
	for _, name := range []string{"marketing_spend", "rd_spend", "admin_costs", "num_employees"} {
		if values[name] > ranges[name].Max {
			names = append(names, name)
		}
	}
	return names
}
