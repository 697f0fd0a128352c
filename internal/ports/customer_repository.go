package ports

import (
	"context"

	"vrp-route-env/internal/domain"
)

// Source of customer tables. Row 0 of ListCustomers is the depot.
type CustomerRepository interface {
	ListCustomers(ctx context.Context) (domain.Dataset, error)
	// GetCustomers returns the rows with the given indices, ordered by index.
	// Unknown indices are skipped.
	GetCustomers(ctx context.Context, indices []int) ([]domain.Customer, error)
}
