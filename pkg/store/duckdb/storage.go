package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/marcboeker/go-duckdb/v2"
)

const UsersTableSchema = `
	CREATE TABLE IF NOT EXISTS users (
		id VARCHAR PRIMARY KEY,
		email VARCHAR NOT NULL UNIQUE,
		name VARCHAR NOT NULL,
		role VARCHAR NOT NULL,
		password_hash VARCHAR NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
`
const SavedPredictionsTableSchema = `
	CREATE TABLE IF NOT EXISTS saved_predictions (
		id VARCHAR PRIMARY KEY,
		owner_id VARCHAR NOT NULL,
		company_name VARCHAR NOT NULL,
		marketing_spend DOUBLE NOT NULL,
		rd_spend DOUBLE NOT NULL,
		admin_costs DOUBLE NOT NULL,
		num_employees INTEGER NOT NULL,
		region VARCHAR NOT NULL,
		predicted_revenue DOUBLE NOT NULL,
		r2_score DOUBLE NOT NULL,
		mae DOUBLE NOT NULL,
		notes VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	);
`
const SavedPredictionsOwnerIndex = `
	CREATE INDEX IF NOT EXISTS idx_saved_predictions_owner
	ON saved_predictions (owner_id, created_at);
`

var bootQueries = []string{
	UsersTableSchema,
	SavedPredictionsTableSchema,
	SavedPredictionsOwnerIndex,
}

type Settings struct {
	DbPath string
}

func NewDB(settings Settings) (*sql.DB, error) {
	c, err := duckdb.NewConnector(fmt.Sprintf("%s?threads=4", settings.DbPath), func(exec driver.ExecerContext) error {
		bootQueries := append([]string{}, bootQueries...)

		for _, query := range bootQueries {
			_, err := exec.ExecContext(context.Background(), query, nil)
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	db := sql.OpenDB(c)
	return db, nil
}
