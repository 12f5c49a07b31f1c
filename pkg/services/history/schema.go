package history

import (
	"fmt"
	"slices"
	"strings"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/xeipuuv/gojsonschema"
)

var requiredFields = []string{"companyName", "input_data", "predicted_revenue", "model_performance"}

var saveRequestSchema = gojsonschema.NewGoLoader(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"companyName":       map[string]any{"type": "string", "maxLength": 200},
		"input_data":        map[string]any{"type": "object"},
		"predicted_revenue": map[string]any{"type": "number", "minimum": 0},
		"model_performance": map[string]any{
			"type":     "object",
			"required": []any{"r2_score", "mae"},
			"properties": map[string]any{
				"r2_score": map[string]any{"type": "number"},
				"mae":      map[string]any{"type": "number", "minimum": 0},
			},
		},
		"notes": map[string]any{"type": []any{"string", "null"}, "maxLength": 2000},
	},
})

// checkSaveRequest reports the first absent required field, then any
// schema violations.
func checkSaveRequest(payload map[string]any) error {
	for _, field := range requiredFields {
		if missing(payload[field]) {
			return domain.NewValidationError(fmt.Sprintf("Missing required field: %s", field))
		}
	}

	result, err := gojsonschema.Validate(saveRequestSchema, gojsonschema.NewGoLoader(payload))
	if err != nil {
		return fmt.Errorf("validate save request: %w", err)
	}
	if result.Valid() {
		return nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
	}
	slices.Sort(violations)
	return domain.NewValidationError(violations...)
}

func missing(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}
