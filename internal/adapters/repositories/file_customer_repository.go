package repositories

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"vrp-route-env/internal/domain"
)

// CustomerRecord is the on-disk shape of one dataset row. Row order defines
// the index; row 0 is the depot.
type CustomerRecord struct {
	Name            string  `json:"name,omitempty"`
	Latitude        float64 `json:"latitude"`
	Longitude       float64 `json:"longitude"`
	Demand          float64 `json:"demand"`
	TimeWindowStart float64 `json:"time_window_start"`
	TimeWindowEnd   float64 `json:"time_window_end"`
	ServiceTime     float64 `json:"service_time"`
}

// Required CSV columns; "name" is optional.
var csvColumns = []string{
	"latitude",
	"longitude",
	"demand",
	"time_window_start",
	"time_window_end",
	"service_time",
}

// FileCustomerRepository reads a dataset from a JSON array or a CSV file
// with a header row, chosen by extension.
type FileCustomerRepository struct{ Path string }

func NewFileCustomerRepository(path string) *FileCustomerRepository {
	return &FileCustomerRepository{Path: path}
}

func (f *FileCustomerRepository) ListCustomers(ctx context.Context) (domain.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("list customers: open %q: %w", f.Path, err)
	}
	defer file.Close()

	var data domain.Dataset
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv":
		data, err = DecodeCSV(file)
	case ".json":
		data, err = DecodeJSON(file)
	default:
		return nil, fmt.Errorf("list customers: unsupported file type %q", filepath.Ext(f.Path))
	}
	if err != nil {
		return nil, fmt.Errorf("list customers: %q: %w", f.Path, err)
	}
	return data, nil
}

func (f *FileCustomerRepository) GetCustomers(ctx context.Context, indices []int) ([]domain.Customer, error) {
	all, err := f.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("get customers: %w", err)
	}

	want := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		want[i] = struct{}{}
	}

	out := make([]domain.Customer, 0, len(want))
	for _, c := range all {
		if _, ok := want[c.Index]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func toCustomer(i int, r CustomerRecord) domain.Customer {
	return domain.Customer{
		Index:       i,
		Name:        strings.TrimSpace(r.Name),
		Location:    domain.Location{Lat: r.Latitude, Lon: r.Longitude},
		Demand:      r.Demand,
		WindowStart: r.TimeWindowStart,
		WindowEnd:   r.TimeWindowEnd,
		ServiceTime: r.ServiceTime,
	}
}

// DecodeJSON parses a JSON array of CustomerRecord.
func DecodeJSON(r io.Reader) (domain.Dataset, error) {
	var records []CustomerRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	out := make(domain.Dataset, 0, len(records))
	for i, rec := range records {
		out = append(out, toCustomer(i, rec))
	}
	return out, nil
}

// EncodeJSON writes data in the format DecodeJSON reads.
func EncodeJSON(w io.Writer, data domain.Dataset) error {
	records := make([]CustomerRecord, 0, len(data))
	for _, c := range data {
		records = append(records, CustomerRecord{
			Name:            c.Name,
			Latitude:        c.Location.Lat,
			Longitude:       c.Location.Lon,
			Demand:          c.Demand,
			TimeWindowStart: c.WindowStart,
			TimeWindowEnd:   c.WindowEnd,
			ServiceTime:     c.ServiceTime,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// DecodeCSV parses a CSV table with a header row. Column order is free; a
// missing required column is a *domain.ValidationError.
func DecodeCSV(r io.Reader) (domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.ValidationError{Row: -1, Reason: "no rows"}
	}
	if err != nil {
		return nil, fmt.Errorf("parse csv header: %w", err)
	}

	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range csvColumns {
		if _, ok := pos[col]; !ok {
			return nil, &domain.ValidationError{Row: -1, Field: col, Reason: fmt.Sprintf("missing column %q", col)}
		}
	}
	nameCol, hasName := pos["name"]

	var out domain.Dataset
	for row := 0; ; row++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse csv row %d: %w", row, err)
		}

		var nums [6]float64
		for i, col := range csvColumns {
			raw := strings.TrimSpace(fields[pos[col]])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &domain.ValidationError{Row: row, Field: col, Reason: fmt.Sprintf("not a number: %q", raw)}
			}
			nums[i] = v
		}

		rec := CustomerRecord{
			Latitude:        nums[0],
			Longitude:       nums[1],
			Demand:          nums[2],
			TimeWindowStart: nums[3],
			TimeWindowEnd:   nums[4],
			ServiceTime:     nums[5],
		}
		if hasName {
			rec.Name = fields[nameCol]
		}
		out = append(out, toCustomer(row, rec))
	}

	return out, nil
}
