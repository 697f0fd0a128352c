package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vrp-route-env/internal/domain"
)

// Postgres-backed implementation of the CustomerRepository port, used through
// the pgx stdlib driver.
type PostgresCustomerRepository struct{ DB *sql.DB }

func NewPostgresCustomerRepository(db *sql.DB) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{DB: db}
}

func (p *PostgresCustomerRepository) ListCustomers(ctx context.Context) (domain.Dataset, error) {
	if p.DB == nil {
		return nil, errors.New("postgres customer repository: DB is nil")
	}

	rows, err := p.DB.QueryContext(ctx, selectCustomerColumns+` ORDER BY customer_index;`)
	if err != nil {
		return nil, fmt.Errorf("list customers: query customers table: %w", err)
	}
	defer rows.Close()

	out, err := scanCustomers(rows)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return out, nil
}

func (p *PostgresCustomerRepository) GetCustomers(ctx context.Context, indices []int) ([]domain.Customer, error) {
	if p.DB == nil {
		return nil, errors.New("postgres customer repository: DB is nil")
	}
	if len(indices) == 0 {
		return []domain.Customer{}, nil
	}

	ids := make([]int64, 0, len(indices))
	for _, i := range indices {
		ids = append(ids, int64(i))
	}

	rows, err := p.DB.QueryContext(ctx, selectCustomerColumns+`
	WHERE customer_index = ANY($1::bigint[])
	ORDER BY customer_index;`, ids)
	if err != nil {
		return nil, fmt.Errorf("get customers: query customers table: %w", err)
	}
	defer rows.Close()

	out, err := scanCustomers(rows)
	if err != nil {
		return nil, fmt.Errorf("get customers: %w", err)
	}
	return out, nil
}
