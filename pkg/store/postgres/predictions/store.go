package predictions

import (
	"context"
	"fmt"

	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/de-tools/revenuecast/pkg/store/postgres"
	"github.com/de-tools/revenuecast/pkg/store/predictions"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type pgStore struct {
	pool postgres.Pool
}

func NewStore(pool postgres.Pool) (predictions.Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	return &pgStore{pool: pool}, nil
}

const selectColumns = `id, owner_id, company_name, marketing_spend, rd_spend, admin_costs,
	num_employees, region, predicted_revenue, r2_score, mae, notes, created_at`

func (s *pgStore) ListByOwner(ctx context.Context, ownerID string) ([]*store.SavedPrediction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+selectColumns+` FROM saved_predictions WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		ownerID)
	if err != nil {
		return nil, fmt.Errorf("query saved predictions: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*store.SavedPrediction, error) {
		var p store.SavedPrediction
		err := row.Scan(
			&p.ID, &p.OwnerID, &p.CompanyName, &p.MarketingSpend, &p.RDSpend, &p.AdminCosts,
			&p.NumEmployees, &p.Region, &p.PredictedRevenue, &p.R2Score, &p.MAE, &p.Notes, &p.CreatedAt,
		)
		return &p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan saved predictions: %w", err)
	}
	if records == nil {
		records = make([]*store.SavedPrediction, 0)
	}
	return records, nil
}

func (s *pgStore) Add(ctx context.Context, p *store.SavedPrediction) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO saved_predictions (`+selectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		p.ID, p.OwnerID, p.CompanyName, p.MarketingSpend, p.RDSpend, p.AdminCosts,
		p.NumEmployees, p.Region, p.PredictedRevenue, p.R2Score, p.MAE, p.Notes, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saved prediction: %w", err)
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM saved_predictions WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete saved prediction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *pgStore) Stats(ctx context.Context, ownerID string) (*store.PredictionStats, error) {
	var (
		stats  store.PredictionStats
		latest pgtype.Timestamptz
	)
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(AVG(predicted_revenue), 0), MAX(created_at)
		FROM saved_predictions
		WHERE owner_id = $1`, ownerID).
		Scan(&stats.Count, &stats.AverageRevenue, &latest)
	if err != nil {
		return nil, fmt.Errorf("get saved prediction stats: %w", err)
	}
	if latest.Valid {
		t := latest.Time
		stats.LatestAt = &t
	}
	return &stats, nil
}
