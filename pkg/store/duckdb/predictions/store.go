package predictions

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/de-tools/revenuecast/pkg/models/store"
	"github.com/de-tools/revenuecast/pkg/store/duckdb"
	"github.com/de-tools/revenuecast/pkg/store/predictions"
)

type defaultStore struct {
	db *sql.DB
}

func NewStore(db *sql.DB) (predictions.Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &defaultStore{
		db: db,
	}, nil
}

func (s *defaultStore) ListByOwner(ctx context.Context, ownerID string) ([]*store.SavedPrediction, error) {
	query := `
		SELECT id, owner_id, company_name, marketing_spend, rd_spend, admin_costs,
		       num_employees, region, predicted_revenue, r2_score, mae, notes, created_at
		FROM saved_predictions
		WHERE owner_id = ?
		ORDER BY created_at DESC, id
	`
	rows, err := duckdb.Conn(ctx, s.db).QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query saved predictions: %w", err)
	}
	defer rows.Close()

	records := make([]*store.SavedPrediction, 0)
	for rows.Next() {
		var p store.SavedPrediction
		if err := rows.Scan(
			&p.ID, &p.OwnerID, &p.CompanyName, &p.MarketingSpend, &p.RDSpend, &p.AdminCosts,
			&p.NumEmployees, &p.Region, &p.PredictedRevenue, &p.R2Score, &p.MAE, &p.Notes, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan saved prediction: %w", err)
		}
		records = append(records, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate saved predictions: %w", err)
	}
	return records, nil
}

func (s *defaultStore) Add(ctx context.Context, p *store.SavedPrediction) error {
	query := `
		INSERT INTO saved_predictions (
			id, owner_id, company_name, marketing_spend, rd_spend, admin_costs,
			num_employees, region, predicted_revenue, r2_score, mae, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := duckdb.Conn(ctx, s.db).ExecContext(ctx, query,
		p.ID,
		p.OwnerID,
		p.CompanyName,
		p.MarketingSpend,
		p.RDSpend,
		p.AdminCosts,
		p.NumEmployees,
		p.Region,
		p.PredictedRevenue,
		p.R2Score,
		p.MAE,
		p.Notes,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert saved prediction: %w", err)
	}
	return nil
}

func (s *defaultStore) Delete(ctx context.Context, ownerID, id string) (bool, error) {
	res, err := duckdb.Conn(ctx, s.db).ExecContext(ctx,
		`DELETE FROM saved_predictions WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return false, fmt.Errorf("delete saved prediction: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete saved prediction: %w", err)
	}
	return n > 0, nil
}

func (s *defaultStore) Stats(ctx context.Context, ownerID string) (*store.PredictionStats, error) {
	query := `
		SELECT COUNT(*), COALESCE(AVG(predicted_revenue), 0), MAX(created_at)
		FROM saved_predictions
		WHERE owner_id = ?`

	var (
		stats  store.PredictionStats
		latest sql.NullTime
	)
	if err := duckdb.Conn(ctx, s.db).QueryRowContext(ctx, query, ownerID).
		Scan(&stats.Count, &stats.AverageRevenue, &latest); err != nil {
		return nil, fmt.Errorf("get saved prediction stats: %w", err)
	}
	if latest.Valid {
		t := latest.Time
		stats.LatestAt = &t
	}
	return &stats, nil
}
