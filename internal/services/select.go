package services

import (
	"context"
	"fmt"
	"slices"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/ports"
)

// SelectCustomers builds a dataset from the depot and the requested customer
// indices of repo, renumbered densely in index order.
func SelectCustomers(ctx context.Context, repo ports.CustomerRepository, indices []int) (domain.Dataset, error) {
	want := slices.Clone(indices)
	slices.Sort(want)
	want = slices.Compact(want)
	want = slices.DeleteFunc(want, func(i int) bool { return i == domain.DepotIndex })

	rows, err := repo.GetCustomers(ctx, append([]int{domain.DepotIndex}, want...))
	if err != nil {
		return nil, fmt.Errorf("select customers: %w", err)
	}
	if len(rows) == 0 || rows[0].Index != domain.DepotIndex {
		return nil, fmt.Errorf("select customers: %w", &domain.ValidationError{Row: domain.DepotIndex, Reason: "depot not found"})
	}
	if len(rows)-1 != len(want) {
		return nil, fmt.Errorf("select customers: found %d of %d requested customers", len(rows)-1, len(want))
	}

	return domain.Reindex(rows[0], rows[1:]), nil
}
