package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vrp-route-env/internal/domain"
)

// Initialize the database schema. The DDL is accepted by both SQLite and
// Postgres.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createCustomersQuery := `
	CREATE TABLE IF NOT EXISTS customers (
		customer_index INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		latitude DOUBLE PRECISION NOT NULL,
		longitude DOUBLE PRECISION NOT NULL,
		demand DOUBLE PRECISION NOT NULL,
		time_window_start DOUBLE PRECISION NOT NULL,
		time_window_end DOUBLE PRECISION NOT NULL,
		service_time DOUBLE PRECISION NOT NULL
	);
	`

	createImpactCacheQuery := `
	CREATE TABLE IF NOT EXISTS impact_cache (
		cache_key TEXT PRIMARY KEY,
		factor DOUBLE PRECISION NOT NULL,
		expires_at BIGINT NOT NULL DEFAULT 0
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_impact_cache_expires_at
	ON impact_cache(expires_at);
	`

	statements := []string{
		createCustomersQuery,
		createImpactCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// SeedCustomers validates data and writes it to the customers table,
// replacing rows with the same index. Rows beyond the dataset are removed so
// the table always holds exactly one dense dataset.
func SeedCustomers(ctx context.Context, db *sql.DB, data domain.Dataset) error {
	if db == nil {
		return errors.New("seed customers: DB is nil")
	}
	if err := data.Validate(); err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed customers: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO customers (
		customer_index,
		name,
		latitude,
		longitude,
		demand,
		time_window_start,
		time_window_end,
		service_time
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (customer_index) DO UPDATE
	SET name = EXCLUDED.name,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		demand = EXCLUDED.demand,
		time_window_start = EXCLUDED.time_window_start,
		time_window_end = EXCLUDED.time_window_end,
		service_time = EXCLUDED.service_time;
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("seed customers: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range data {
		if _, err := stmt.ExecContext(ctx,
			c.Index, c.Name,
			c.Location.Lat, c.Location.Lon,
			c.Demand, c.WindowStart, c.WindowEnd, c.ServiceTime,
		); err != nil {
			return fmt.Errorf("seed customers: insert customer_index=%d: %w", c.Index, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE customer_index >= $1;`, len(data)); err != nil {
		return fmt.Errorf("seed customers: trim stale rows: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed customers: commit tx: %w", err)
	}

	return nil
}

// Populate the database with customer data from a JSON or CSV file.
func SeedFromFile(ctx context.Context, db *sql.DB, path string) error {
	data, err := NewFileCustomerRepository(path).ListCustomers(ctx)
	if err != nil {
		return fmt.Errorf("seed customers: %w", err)
	}
	return SeedCustomers(ctx, db, data)
}

func scanCustomers(rows *sql.Rows) ([]domain.Customer, error) {
	out := make([]domain.Customer, 0, 64)
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(
			&c.Index, &c.Name,
			&c.Location.Lat, &c.Location.Lon,
			&c.Demand, &c.WindowStart, &c.WindowEnd, &c.ServiceTime,
		); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return out, nil
}

const selectCustomerColumns = `
	SELECT
		customer_index,
		name,
		latitude,
		longitude,
		demand,
		time_window_start,
		time_window_end,
		service_time
	FROM customers`
