package prediction

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/revenuecast/pkg/models/domain"
)

const (
	msgMarketingSpend = "Marketing spend must be a non-negative number"
	msgRDSpend        = "R&D spend must be a non-negative number"
	msgAdminCosts     = "Administrative costs must be a non-negative number"
	msgEmployeesMin   = "Number of employees must be at least 1"
	msgEmployeesWhole = "Number of employees must be a whole number"
)

// MaxEmployees is the largest head count the saved-prediction stores can
// hold in their INTEGER column.
const MaxEmployees = math.MaxInt32

var msgEmployeesMax = fmt.Sprintf("Number of employees must be at most %d", MaxEmployees)

var msgRegion = fmt.Sprintf("Region must be one of: %s", joinRegions(domain.Regions()))

// Validate checks a raw payload against the model's input constraints.
// Every rule runs independently; the returned error is a
// *domain.ValidationError listing all violations in field order.
func Validate(payload map[string]any) (domain.PredictionInput, error) {
	var (
		violations []string
		input      domain.PredictionInput
	)

	nonNegative := func(key, msg string) float64 {
		v, ok := number(payload[key])
		if !ok || v < 0 {
			violations = append(violations, msg)
			return 0
		}
		return v
	}

	input.MarketingSpend = nonNegative("marketing_spend", msgMarketingSpend)
	input.RDSpend = nonNegative("rd_spend", msgRDSpend)
	input.AdminCosts = nonNegative("admin_costs", msgAdminCosts)

	employees, ok := number(payload["num_employees"])
	switch {
	case !ok || employees < 1:
		violations = append(violations, msgEmployeesMin)
	case employees != math.Trunc(employees):
		violations = append(violations, msgEmployeesWhole)
	case employees > MaxEmployees:
		violations = append(violations, msgEmployeesMax)
	default:
		input.NumEmployees = int(employees)
	}

	region, _ := payload["region"].(string)
	if !domain.Region(region).Valid() {
		violations = append(violations, msgRegion)
	} else {
		input.Region = domain.Region(region)
	}

	if len(violations) > 0 {
		return domain.PredictionInput{}, domain.NewValidationError(violations...)
	}
	return input, nil
}

// InputPayload converts a typed input back into the payload shape accepted
// by Validate.
func InputPayload(in domain.PredictionInput) map[string]any {
	return map[string]any{
		"marketing_spend": in.MarketingSpend,
		"rd_spend":        in.RDSpend,
		"admin_costs":     in.AdminCosts,
		"num_employees":   in.NumEmployees,
		"region":          string(in.Region),
	}
}

func number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func joinRegions(regions []domain.Region) string {
	names := make([]string, 0, len(regions))
	for _, r := range regions {
		names = append(names, string(r))
	}
	return strings.Join(names, ", ")
}
