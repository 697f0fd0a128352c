package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vrp-route-env/internal/domain"
)

// SQLite-backed implementation of the CustomerRepository port.
type SqliteCustomerRepository struct{ DB *sql.DB }

func NewSqliteCustomerRepository(db *sql.DB) *SqliteCustomerRepository {
	return &SqliteCustomerRepository{DB: db}
}

// Return every customer stored in the database, depot first.
func (s *SqliteCustomerRepository) ListCustomers(ctx context.Context) (domain.Dataset, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite customer repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, selectCustomerColumns+` ORDER BY customer_index;`)
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

func (s *SqliteCustomerRepository) GetCustomers(ctx context.Context, indices []int) ([]domain.Customer, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite customer repository: DB is nil")
	}
	if len(indices) == 0 {
		return []domain.Customer{}, nil
	}

	seen := map[int]struct{}{}
	ph := make([]string, 0, len(indices))
	args := make([]any, 0, len(indices))
	for _, i := range indices {
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		ph = append(ph, "?")
		args = append(args, i)
	}

	// SQLite does not support binding slices directly in an IN (...) clause.
	// Only the placeholder structure is interpolated; all values remain parameterized.
	q := fmt.Sprintf(selectCustomerColumns+`
	WHERE customer_index IN (%s)
	ORDER BY customer_index;`, strings.Join(ph, ","))

	rows, err := s.DB.QueryContext(ctx, q, args...)
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
