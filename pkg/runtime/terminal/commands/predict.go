package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/runtime/terminal/export"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/spf13/cobra"
)

type PredictCmd struct {
	marketingSpend float64
	rdSpend        float64
	adminCosts     float64
	employees      int
	region         string
	output         string
	deterministic  bool
	noise          float64
	reporter       *export.Reporter
}

func NewPredictCmd(noiseAmplitude float64, reporter *export.Reporter) *cobra.Command {
	pc := &PredictCmd{noise: noiseAmplitude, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate annual revenue for a single company",
		RunE:  pc.run,
	}

	cmd.Flags().Float64Var(&pc.marketingSpend, "marketing-spend", 0, "Annual marketing spend in USD")
	cmd.Flags().Float64Var(&pc.rdSpend, "rd-spend", 0, "Annual R&D spend in USD")
	cmd.Flags().Float64Var(&pc.adminCosts, "admin-costs", 0, "Annual administrative costs in USD")
	cmd.Flags().IntVar(&pc.employees, "employees", 0, "Number of employees")
	cmd.Flags().StringVar(&pc.region, "region", string(domain.RegionNorthAmerica), "Region (North America, Europe, Asia)")
	cmd.Flags().StringVarP(&pc.output, "output", "o", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&pc.deterministic, "deterministic", false, "Disable the random perturbation")

	_ = cmd.MarkFlagRequired("marketing-spend")
	_ = cmd.MarkFlagRequired("rd-spend")
	_ = cmd.MarkFlagRequired("admin-costs")
	_ = cmd.MarkFlagRequired("employees")

	return cmd
}

func (pc *PredictCmd) run(cmd *cobra.Command, _ []string) error {
	if pc.output != "text" && pc.output != "json" {
		return fmt.Errorf("unsupported output format %q", pc.output)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	noise := prediction.NewUniformNoise(pc.noise)
	if pc.deterministic {
		noise = prediction.ZeroNoise{}
	}
	svc := prediction.NewService(prediction.NewEstimator(prediction.DefaultCoefficients(), noise), 1)

	out, err := svc.Predict(ctx, prediction.InputPayload(domain.PredictionInput{
		MarketingSpend: pc.marketingSpend,
		RDSpend:        pc.rdSpend,
		AdminCosts:     pc.adminCosts,
		NumEmployees:   pc.employees,
		Region:         domain.Region(pc.region),
	}))
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("invalid input:\n  - %s", strings.Join(verr.Violations, "\n  - "))
	}
	if err != nil {
		return fmt.Errorf("failed to estimate revenue: %w", err)
	}

	breakdown := svc.Breakdown(out.Input)
	if pc.output == "json" {
		resp := adapters.MapDomainOutputToAPI(out)
		resp.Breakdown = adapters.MapDomainContributionsToAPI(breakdown)
		return pc.reporter.JSON(resp)
	}
	return pc.reporter.Prediction(out, breakdown)
}
