package services

import (
	"math"
	"testing"

	"vrp-route-env/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestGenerateCustomers(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Customers = 50
	opts.Seed = 99

	data, err := GenerateCustomers(opts)
	require.NoError(t, err)
	require.Len(t, data, 51)
	require.NoError(t, data.Validate())
	require.Equal(t, opts.Center, data.Depot().Location)

	for _, c := range data.Customers() {
		require.GreaterOrEqual(t, c.Demand, 10.0)
		require.LessOrEqual(t, c.Demand, 100.0)
		require.GreaterOrEqual(t, c.WindowStart, 0.0)
		require.LessOrEqual(t, c.WindowStart, 12.0)
		require.LessOrEqual(t, c.WindowEnd, domain.DayHours)
		require.Greater(t, c.WindowEnd, c.WindowStart)
		require.GreaterOrEqual(t, c.ServiceTime, 5.0/60)
		require.LessOrEqual(t, c.ServiceTime, 0.5)
		require.LessOrEqual(t, math.Abs(c.Location.Lat-opts.Center.Lat), opts.Spread)
		require.LessOrEqual(t, math.Abs(c.Location.Lon-opts.Center.Lon), opts.Spread)
	}

	again, err := GenerateCustomers(opts)
	require.NoError(t, err)
	require.Equal(t, data, again)

	opts.Seed = 100
	other, err := GenerateCustomers(opts)
	require.NoError(t, err)
	require.NotEqual(t, data, other)
}

func TestGenerateCustomers_Invalid(t *testing.T) {
	opts := DefaultGenerateOptions()
	opts.Customers = -1
	_, err := GenerateCustomers(opts)
	require.Error(t, err)

	opts = DefaultGenerateOptions()
	opts.Spread = math.NaN()
	_, err = GenerateCustomers(opts)
	require.Error(t, err)

	opts = DefaultGenerateOptions()
	opts.Customers = 0
	data, err := GenerateCustomers(opts)
	require.NoError(t, err)
	require.Len(t, data, 1)
}
