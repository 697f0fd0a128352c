package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"vrp-route-env/internal/domain"
	"vrp-route-env/internal/platform/db"

	"github.com/stretchr/testify/require"
)

const seedJSON = "../../../data/seeds/customers.json"
const seedCSV = "../../../data/seeds/customers.csv"

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, InitSchema(context.Background(), conn))
	return conn
}

func TestFileRepository_SeedFiles(t *testing.T) {
	ctx := context.Background()

	fromJSON, err := NewFileCustomerRepository(seedJSON).ListCustomers(ctx)
	require.NoError(t, err)
	fromCSV, err := NewFileCustomerRepository(seedCSV).ListCustomers(ctx)
	require.NoError(t, err)

	require.NoError(t, fromJSON.Validate())
	require.Equal(t, fromJSON, fromCSV)
	require.Len(t, fromJSON, 5)
	require.Equal(t, "Bogor", fromJSON[3].Name)
	require.Equal(t, 2000.0, fromJSON[3].Demand)
	require.Equal(t, 3, fromJSON[3].Index)
	require.Equal(t, 4900.0, fromJSON.TotalDemand())
}

func TestFileRepository_GetCustomers(t *testing.T) {
	got, err := NewFileCustomerRepository(seedJSON).GetCustomers(context.Background(), []int{4, 0, 9})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, 0, got[0].Index)
	require.Equal(t, "Tangerang", got[1].Name)
}

func TestFileRepository_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewFileCustomerRepository("does-not-exist.json").ListCustomers(ctx)
	require.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "customers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("[]"), 0o644))
	_, err = NewFileCustomerRepository(path).ListCustomers(ctx)
	require.ErrorContains(t, err, "unsupported file type")
}

func TestDecodeCSV(t *testing.T) {
	t.Run("column order is free and name optional", func(t *testing.T) {
		in := "service_time,demand,latitude,longitude,time_window_end,time_window_start\n" +
			"0,0,-6.2,106.8,24,0\n" +
			"0.25, 40, -6.3, 106.9, 17, 9\n"
		data, err := DecodeCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.NoError(t, data.Validate())
		require.Equal(t, 40.0, data[1].Demand)
		require.Equal(t, 9.0, data[1].WindowStart)
		require.Empty(t, data[1].Name)
	})

	t.Run("missing column", func(t *testing.T) {
		_, err := DecodeCSV(strings.NewReader("latitude,longitude,demand\n0,0,0\n"))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, "time_window_start", ve.Field)
		require.ErrorIs(t, err, domain.ErrInvalidDataset)
	})

	t.Run("bad number", func(t *testing.T) {
		in := "latitude,longitude,demand,time_window_start,time_window_end,service_time\n0,0,lots,0,24,0\n"
		_, err := DecodeCSV(strings.NewReader(in))
		var ve *domain.ValidationError
		require.ErrorAs(t, err, &ve)
		require.Equal(t, 0, ve.Row)
		require.Equal(t, "demand", ve.Field)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := DecodeCSV(strings.NewReader(""))
		require.ErrorIs(t, err, domain.ErrInvalidDataset)
	})
}

func TestEncodeJSON_RoundTrip(t *testing.T) {
	data, err := NewFileCustomerRepository(seedJSON).ListCustomers(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeJSON(&buf, data))
	back, err := DecodeJSON(&buf)
	require.NoError(t, err)
	require.Equal(t, data, back)
}

func TestSqliteRepository_SeedAndList(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)

	require.NoError(t, SeedFromFile(ctx, conn, seedJSON))

	repo := NewSqliteCustomerRepository(conn)
	got, err := repo.ListCustomers(ctx)
	require.NoError(t, err)

	want, err := NewFileCustomerRepository(seedJSON).ListCustomers(ctx)
	require.NoError(t, err)
	require.Equal(t, want, got)

	subset, err := repo.GetCustomers(ctx, []int{3, 0, 3})
	require.NoError(t, err)
	require.Len(t, subset, 2)
	require.Equal(t, 0, subset[0].Index)
	require.Equal(t, "Bogor", subset[1].Name)

	empty, err := repo.GetCustomers(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSeedCustomers_ReplacesDataset(t *testing.T) {
	ctx := context.Background()
	conn := openMemory(t)
	repo := NewSqliteCustomerRepository(conn)

	require.NoError(t, SeedFromFile(ctx, conn, seedCSV))

	smaller := domain.Dataset{
		domain.NewDepot("depot", domain.Location{Lat: 1, Lon: 2}),
		{Index: 1, Name: "only", Location: domain.Location{Lat: 1.1, Lon: 2.1}, Demand: 3, WindowEnd: 24},
	}
	require.NoError(t, SeedCustomers(ctx, conn, smaller))

	got, err := repo.ListCustomers(ctx)
	require.NoError(t, err)
	require.Equal(t, smaller, got)
}

func TestSeedCustomers_RejectsInvalid(t *testing.T) {
	conn := openMemory(t)
	err := SeedCustomers(context.Background(), conn, domain.Dataset{})
	require.ErrorIs(t, err, domain.ErrInvalidDataset)

	require.Error(t, InitSchema(context.Background(), nil))
}

func TestSqliteRepository_NilDB(t *testing.T) {
	_, err := NewSqliteCustomerRepository(nil).ListCustomers(context.Background())
	require.Error(t, err)
	_, err = NewPostgresCustomerRepository(nil).ListCustomers(context.Background())
	require.Error(t, err)
}
