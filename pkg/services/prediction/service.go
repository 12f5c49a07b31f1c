package prediction

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/rs/zerolog"
)

// DefaultMaxBatchSize caps the number of companies in one batch request.
const DefaultMaxBatchSize = 100

// Observer is notified about every estimation outcome.
type Observer interface {
	ObservePrediction(revenue float64)
	ObserveValidationFailure(violations int)
}

type Service struct {
	estimator *Estimator
	maxBatch  int
	observer  Observer
	now       func() time.Time
}

func NewService(estimator *Estimator, maxBatch int) *Service {
	if maxBatch <= 0 {
		maxBatch = DefaultMaxBatchSize
	}
	return &Service{
		estimator: estimator,
		maxBatch:  maxBatch,
		now:       time.Now,
	}
}

// WithObserver attaches an observer, typically the metrics collector.
func (s *Service) WithObserver(o Observer) *Service {
	s.observer = o
	return s
}

// Predict validates payload and estimates revenue for it. A failed
// validation returns *domain.ValidationError; a failure inside the
// computation returns an error wrapping domain.ErrUnexpected.
func (s *Service) Predict(ctx context.Context, payload map[string]any) (out *domain.PredictionOutput, err error) {
	defer s.recoverUnexpected(ctx, &err)

	input, err := Validate(payload)
	if err != nil {
		s.observeInvalid(err)
		return nil, err
	}

	revenue, err := s.estimate(ctx, input)
	if err != nil {
		return nil, err
	}
	return &domain.PredictionOutput{
		PredictedRevenue: revenue,
		Input:            input,
		Performance:      Performance,
		Timestamp:        s.now().UTC(),
	}, nil
}

// PredictBatch validates all companies before estimating any of them.
func (s *Service) PredictBatch(ctx context.Context, companies []map[string]any) (out *domain.BatchOutput, err error) {
	defer s.recoverUnexpected(ctx, &err)

	if len(companies) == 0 {
		return nil, domain.NewValidationError("No companies provided")
	}
	if len(companies) > s.maxBatch {
		return nil, domain.NewValidationError(fmt.Sprintf("Too many companies (max %d)", s.maxBatch))
	}

	inputs := make([]domain.PredictionInput, len(companies))
	var violations []string
	for i, company := range companies {
		input, verr := Validate(company)
		if verr != nil {
			for _, v := range verr.(*domain.ValidationError).Violations {
				violations = append(violations, fmt.Sprintf("Company %d: %s", i+1, v))
			}
			continue
		}
		inputs[i] = input
	}
	if len(violations) > 0 {
		verr := domain.NewValidationError(violations...)
		s.observeInvalid(verr)
		return nil, verr
	}

	out = &domain.BatchOutput{
		Predictions: make([]domain.BatchPrediction, 0, len(inputs)),
		Timestamp:   s.now().UTC(),
	}
	for i, input := range inputs {
		revenue, err := s.estimate(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("company %d: %w", i+1, err)
		}
		out.Predictions = append(out.Predictions, domain.BatchPrediction{
			CompanyIndex:     i,
			PredictedRevenue: revenue,
			Input:            input,
		})
	}
	return out, nil
}

// Breakdown returns the per-feature contributions for a validated input.
func (s *Service) Breakdown(input domain.PredictionInput) []domain.Contribution {
	return s.estimator.Breakdown(input)
}

func (s *Service) ModelInfo() domain.ModelInfo {
	return modelInfo(s.estimator.Coefficients())
}

// estimate fails with domain.ErrUnexpected when the model output is not a
// finite number, which happens for inputs near the float64 range.
func (s *Service) estimate(ctx context.Context, input domain.PredictionInput) (float64, error) {
	logger := zerolog.Ctx(ctx)
	if names := outOfRange(input); len(names) > 0 {
		logger.Warn().
			Strs("features", names).
			Msg("input outside of the model's training range")
	}

	revenue := s.estimator.Estimate(input)
	if math.IsInf(revenue, 0) || math.IsNaN(revenue) {
		logger.Error().
			Str("region", string(input.Region)).
			Msg("estimate is not a finite number")
		return 0, fmt.Errorf("%w: estimate overflowed", domain.ErrUnexpected)
	}
	logger.Debug().
		Str("region", string(input.Region)).
		Int("num_employees", input.NumEmployees).
		Float64("predicted_revenue", revenue).
		Msg("revenue estimated")

	if s.observer != nil {
		s.observer.ObservePrediction(revenue)
	}
	return revenue, nil
}

func (s *Service) observeInvalid(err error) {
	if s.observer == nil {
		return
	}
	if verr, ok := err.(*domain.ValidationError); ok {
		s.observer.ObserveValidationFailure(len(verr.Violations))
	}
}

func (s *Service) recoverUnexpected(ctx context.Context, err *error) {
	if r := recover(); r != nil {
		zerolog.Ctx(ctx).Error().
			Interface("panic", r).
			Msg("prediction failed")
		*err = fmt.Errorf("%w: %v", domain.ErrUnexpected, r)
	}
}
