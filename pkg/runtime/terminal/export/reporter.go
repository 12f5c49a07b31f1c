package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/de-tools/revenuecast/pkg/format"
	"github.com/de-tools/revenuecast/pkg/models/domain"
)

type TableConfig struct {
	NameWidth  int
	ValueWidth int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		NameWidth:  28,
		ValueWidth: 24,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

const predictionTemplate = `
Predicted Annual Revenue: {{currency .Output.PredictedRevenue}}
Model Accuracy: {{percent .Output.Performance.R2Score}}   Avg. Error: {{currency .Output.Performance.MAE}}

{{separator}}
{{row "Input" "Value"}}
{{separator}}
{{row "Marketing Spend" (currency .Output.Input.MarketingSpend)}}
{{row "R&D Spend" (currency .Output.Input.RDSpend)}}
{{row "Admin Costs" (currency .Output.Input.AdminCosts)}}
{{row "Employees" (number .Output.Input.NumEmployees)}}
{{row "Region" (print .Output.Input.Region)}}
{{separator}}
{{if .Breakdown}}{{row "Component" "Contribution"}}
{{separator}}
{{range .Breakdown}}{{row .Component (currency .Value)}}
{{end}}{{separator}}
{{end}}`

const modelInfoTemplate = `
{{.ModelType}} v{{.Version}} (trained {{.TrainingDate.Format "2006-01-02"}} on {{.DatasetSize}} companies)
{{.Description}}

{{separator}}
{{row "Metric" "Value"}}
{{separator}}
{{row "R² score" (printf "%.4f" .Performance.R2Score)}}
{{row "Training R²" (printf "%.4f" .Performance.TrainingR2)}}
{{row "Test R²" (printf "%.4f" .Performance.TestR2)}}
{{row "MAE" (currency .Performance.MAE)}}
{{row "RMSE" (currency .Performance.RMSE)}}
{{separator}}
{{row "Coefficient" "Value"}}
{{separator}}
{{range coefficients .Coefficients}}{{row .Name (printf "%.4f" .Value)}}
{{end}}{{separator}}
Regions: {{join .RegionsSupported}}
`

type coefficient struct {
	Name  string
	Value float64
}

func (c *Reporter) funcs() template.FuncMap {
	return template.FuncMap{
		"currency": format.Currency,
		"percent":  format.Percent,
		"number":   func(n int) string { return format.Number(int64(n)) },
		"row": func(name, value string) string {
			return fmt.Sprintf("| %-*s | %*s |", c.config.NameWidth, name, c.config.ValueWidth, value)
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+",
				strings.Repeat("-", c.config.NameWidth+2),
				strings.Repeat("-", c.config.ValueWidth+2))
		},
		"coefficients": func(table map[string]float64) []coefficient {
			res := make([]coefficient, 0, len(table))
			for name, value := range table {
				res = append(res, coefficient{Name: name, Value: value})
			}
			sort.Slice(res, func(i, j int) bool { return res[i].Name < res[j].Name })
			return res
		},
		"join": func(regions []domain.Region) string {
			names := make([]string, 0, len(regions))
			for _, r := range regions {
				names = append(names, string(r))
			}
			return strings.Join(names, ", ")
		},
	}
}

func (c *Reporter) render(name, text string, data any) error {
	t, err := template.New(name).Funcs(c.funcs()).Parse(text)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, data)
}

func (c *Reporter) Prediction(out *domain.PredictionOutput, breakdown []domain.Contribution) error {
	return c.render("prediction", predictionTemplate, struct {
		Output    *domain.PredictionOutput
		Breakdown []domain.Contribution
	}{out, breakdown})
}

func (c *Reporter) ModelInfo(info domain.ModelInfo) error {
	return c.render("model-info", modelInfoTemplate, info)
}

// JSON writes v as indented JSON, used by --output json.
func (c *Reporter) JSON(v any) error {
	enc := json.NewEncoder(c.writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
