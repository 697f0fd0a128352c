package services

import (
	"context"
	"errors"
	"testing"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/env"
	"vrp-route-env/internal/impact"

	"github.com/stretchr/testify/require"
)

var (
	jakarta   = domain.Location{Lat: -6.2088, Lon: 106.8456}
	northJkt  = domain.Location{Lat: -6.1702, Lon: 106.9417}
	bekasi    = domain.Location{Lat: -6.2383, Lon: 106.9756}
	bogor     = domain.Location{Lat: -6.5950, Lon: 106.8167}
	tangerang = domain.Location{Lat: -6.1783, Lon: 106.6319}
)

func seedCustomers() domain.Dataset {
	return domain.Dataset{
		domain.NewDepot("Jakarta Depot", jakarta),
		{Index: 1, Name: "Jakarta", Location: northJkt, Demand: 1700, WindowStart: 8, WindowEnd: 12, ServiceTime: 0.5},
		{Index: 2, Name: "Bekasi", Location: bekasi, Demand: 500, WindowStart: 9, WindowEnd: 17, ServiceTime: 0.25},
		{Index: 3, Name: "Bogor", Location: bogor, Demand: 2000, WindowStart: 10, WindowEnd: 18, ServiceTime: 0.75},
		{Index: 4, Name: "Tangerang", Location: tangerang, Demand: 700, WindowStart: 8, WindowEnd: 16, ServiceTime: 0.5},
	}
}

func TestPartitionByDistance(t *testing.T) {
	data := seedCustomers()
	vehicles := []*domain.Vehicle{domain.NewVehicle(1, 5000), domain.NewVehicle(2, 5000)}

	require.NoError(t, PartitionByDistance(data.Depot(), data.Customers(), vehicles))

	indices := func(v *domain.Vehicle) []int {
		var out []int
		for _, c := range v.Customers {
			out = append(out, c.Index)
		}
		return out
	}
	require.Equal(t, []int{1, 2}, indices(vehicles[0]))
	require.Equal(t, []int{4, 3}, indices(vehicles[1]))
	require.Equal(t, 2200.0, vehicles[0].Assigned())

	// the input order is left alone
	require.Equal(t, 1, data.Customers()[0].Index)
}

func TestPartitionByDistance_MoreVehiclesThanCustomers(t *testing.T) {
	data := seedCustomers()
	vehicles := make([]*domain.Vehicle, 6)
	for i := range vehicles {
		vehicles[i] = domain.NewVehicle(i+1, 5000)
	}

	require.NoError(t, PartitionByDistance(data.Depot(), data.Customers(), vehicles))
	for i, v := range vehicles {
		if i < 4 {
			require.Len(t, v.Customers, 1)
		} else {
			require.Empty(t, v.Customers)
		}
	}
}

func TestPartitionByDistance_Errors(t *testing.T) {
	data := seedCustomers()
	require.Error(t, PartitionByDistance(data.Depot(), data.Customers(), nil))

	small := []*domain.Vehicle{domain.NewVehicle(1, 1000)}
	err := PartitionByDistance(data.Depot(), data.Customers(), small)
	require.ErrorContains(t, err, "vehicle 1")
}

func TestRunFleet(t *testing.T) {
	plans, err := RunFleet(context.Background(), FleetRequest{
		VehicleCount: 2,
		Capacity:     5000,
		Config:       env.DefaultConfig(),
		Concurrency:  2,
	}, seedCustomers(), impact.Fixed{Travel: 1.2, Local: 1})
	require.NoError(t, err)
	require.Len(t, plans, 2)

	require.Equal(t, 1, plans[0].VehicleID)
	require.Equal(t, []int{1, 2}, plans[0].Indices())
	require.Equal(t, "Jakarta", plans[0].Stops[0].Name)
	require.True(t, plans[0].Completed)
	require.Equal(t, 2800.0, plans[0].RemainingLoad)

	require.Equal(t, 2, plans[1].VehicleID)
	require.Equal(t, []int{4, 3}, plans[1].Indices())
	require.True(t, plans[1].Completed)
}

func TestRunFleet_Validation(t *testing.T) {
	_, err := RunFleet(context.Background(), FleetRequest{VehicleCount: 1, Capacity: 10, Config: env.DefaultConfig()}, nil, nil)
	require.ErrorIs(t, err, env.ErrConfiguration)

	_, err = RunFleet(context.Background(), FleetRequest{VehicleCount: 0, Capacity: 10, Config: env.DefaultConfig()}, seedCustomers(), nil)
	require.ErrorIs(t, err, env.ErrConfiguration)
}

type staticRepo struct {
	data domain.Dataset
	err  error
}

func (r staticRepo) ListCustomers(context.Context) (domain.Dataset, error) {
	return r.data, r.err
}

func (r staticRepo) GetCustomers(_ context.Context, indices []int) ([]domain.Customer, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []domain.Customer
	for _, i := range indices {
		if i >= 0 && i < len(r.data) {
			out = append(out, r.data[i])
		}
	}
	return out, nil
}

func TestPlanFleet(t *testing.T) {
	req := FleetRequest{VehicleCount: 1, Capacity: 5000, Config: env.DefaultConfig()}

	plans, err := PlanFleet(context.Background(), req, staticRepo{data: seedCustomers()}, nil)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	require.Len(t, plans[0].Stops, 4)

	boom := errors.New("boom")
	_, err = PlanFleet(context.Background(), req, staticRepo{err: boom}, nil)
	require.ErrorIs(t, err, boom)
}

func TestSelectCustomers(t *testing.T) {
	repo := staticRepo{data: seedCustomers()}

	data, err := SelectCustomers(context.Background(), repo, []int{4, 2, 2, 0})
	require.NoError(t, err)
	require.NoError(t, data.Validate())
	require.Len(t, data, 3)
	require.Equal(t, "Bekasi", data[1].Name)
	require.Equal(t, 1, data[1].Index)
	require.Equal(t, "Tangerang", data[2].Name)

	_, err = SelectCustomers(context.Background(), repo, []int{9})
	require.ErrorContains(t, err, "found 0 of 1")
}
