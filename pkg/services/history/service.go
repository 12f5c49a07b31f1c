package history

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/revenuecast/pkg/adapters"
	"github.com/de-tools/revenuecast/pkg/models/domain"
	"github.com/de-tools/revenuecast/pkg/services/prediction"
	"github.com/de-tools/revenuecast/pkg/store/predictions"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Service struct {
	store predictions.Store
	now   func() time.Time
	newID func() string
}

func NewService(store predictions.Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// List returns the owner's saved predictions, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.SavedPrediction, error) {
	records, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list saved predictions: %w", err)
	}

	result := make([]domain.SavedPrediction, 0, len(records))
	for _, r := range records {
		result = append(result, *adapters.MapStoreSavedPredictionToDomain(r))
	}
	return result, nil
}

// Save validates a raw save request and stores it for the owner.
func (s *Service) Save(ctx context.Context, ownerID string, payload map[string]any) (*domain.SavedPrediction, error) {
	if err := checkSaveRequest(payload); err != nil {
		return nil, err
	}

	inputPayload, _ := payload["input_data"].(map[string]any)
	input, err := prediction.Validate(inputPayload)
	if err != nil {
		return nil, err
	}

	perf, _ := payload["model_performance"].(map[string]any)
	notes, _ := payload["notes"].(string)

	p := &domain.SavedPrediction{
		ID:               s.newID(),
		OwnerID:          ownerID,
		CompanyName:      strings.TrimSpace(payload["companyName"].(string)),
		Input:            input,
		PredictedRevenue: float(payload["predicted_revenue"]),
		Performance: domain.ModelPerformance{
			R2Score: float(perf["r2_score"]),
			MAE:     float(perf["mae"]),
		},
		CreatedAt: s.now().UTC(),
		Notes:     notes,
	}

	if err := s.store.Add(ctx, adapters.MapDomainSavedPredictionToStore(p)); err != nil {
		return nil, fmt.Errorf("save prediction: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("prediction_id", p.ID).
		Str("owner_id", ownerID).
		Msg("prediction saved")
	return p, nil
}

// Delete removes one of the owner's predictions. Predictions of other
// owners are reported as domain.ErrNotFound.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	deleted, err := s.store.Delete(ctx, ownerID, id)
	if err != nil {
		return fmt.Errorf("delete prediction %s: %w", id, err)
	}
	if !deleted {
		return domain.ErrNotFound
	}

	zerolog.Ctx(ctx).Info().
		Str("prediction_id", id).
		Str("owner_id", ownerID).
		Msg("prediction deleted")
	return nil
}

// Summary feeds the dashboard quick stats.
func (s *Service) Summary(ctx context.Context, ownerID string) (*domain.HistorySummary, error) {
	stats, err := s.store.Stats(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("prediction summary: %w", err)
	}

	return &domain.HistorySummary{
		Total:                   int(stats.Count),
		AveragePredictedRevenue: stats.AverageRevenue,
		ModelAccuracy:           prediction.Performance.R2Score,
		LatestAt:                stats.LatestAt,
	}, nil
}

func float(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case json.Number:
		f, _ := n.Float64()
		return f
	case int:
		return float64(n)
	default:
		return 0
	}
}
