package commands

import (
	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/runtime/terminal/export"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/spf13/cobra"
)

func NewModelInfoCmd(reporter *export.Reporter) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "model-info",
		Short: "Show model metadata, performance and coefficients",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := prediction.NewService(prediction.NewEstimator(prediction.DefaultCoefficients(), nil), 1)
			if output == "json" {
				return reporter.JSON(adapters.MapDomainModelInfoToAPI(svc.ModelInfo()))
			}
			return reporter.ModelInfo(svc.ModelInfo())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text or json")
	return cmd
}
