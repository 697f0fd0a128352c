package domain

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidDataset is the root of every dataset validation failure.
var ErrInvalidDataset = errors.New("invalid customer dataset")

// ValidationError points at the offending row and field of a dataset.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("dataset: %s", e.Reason)
	}
	if e.Field == "" {
		return fmt.Sprintf("dataset row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("dataset row %d: %s: %s", e.Row, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDataset }

// Dataset is an ordered customer table whose row 0 is the depot.
type Dataset []Customer

// Validate checks the structural rules every environment relies on:
// a non-empty table, a depot at index 0, dense unique indices and sane
// numeric fields.
func (d Dataset) Validate() error {
	if len(d) == 0 {
		return &ValidationError{Row: -1, Reason: "no rows"}
	}

	seen := make(map[int]int, len(d))
	for row, c := range d {
		if prev, ok := seen[c.Index]; ok {
			return &ValidationError{
				Row:    row,
				Field:  "index",
				Reason: fmt.Sprintf("duplicate index %d (first at row %d)", c.Index, prev),
			}
		}
		seen[c.Index] = row

		if c.Index != row {
			return &ValidationError{
				Row:    row,
				Field:  "index",
				Reason: fmt.Sprintf("index %d does not match position", c.Index),
			}
		}

		if !c.Location.Finite() {
			return &ValidationError{Row: row, Field: "location", Reason: "coordinates must be finite"}
		}

		for _, f := range []struct {
			name string
			v    float64
		}{
			{"demand", c.Demand},
			{"time_window_start", c.WindowStart},
			{"time_window_end", c.WindowEnd},
			{"service_time", c.ServiceTime},
		} {
			if !isFinite(f.v) {
				return &ValidationError{Row: row, Field: f.name, Reason: "must be finite"}
			}
			if f.v < 0 {
				return &ValidationError{Row: row, Field: f.name, Reason: "must be non-negative"}
			}
		}

		if c.WindowStart > c.WindowEnd {
			return &ValidationError{
				Row:    row,
				Field:  "time_window_start",
				Reason: fmt.Sprintf("start %.2f is after end %.2f", c.WindowStart, c.WindowEnd),
			}
		}
	}

	depot := d[DepotIndex]
	if depot.Demand != 0 {
		return &ValidationError{Row: DepotIndex, Field: "demand", Reason: "depot demand must be zero"}
	}
	if depot.WindowStart != 0 || depot.WindowEnd != DayHours {
		return &ValidationError{Row: DepotIndex, Field: "time_window", Reason: "depot window must be [0, 24]"}
	}

	return nil
}

// Depot returns row 0. Callers must validate first.
func (d Dataset) Depot() Customer { return d[DepotIndex] }

// Customers returns every non-depot row.
func (d Dataset) Customers() []Customer {
	if len(d) <= 1 {
		return nil
	}
	return d[1:]
}

// TotalDemand sums the demand of every non-depot customer.
func (d Dataset) TotalDemand() float64 {
	total := 0.0
	for _, c := range d.Customers() {
		total += c.Demand
	}
	return total
}

// Reindex returns a copy of the given customers placed behind the depot with
// dense indices, preserving their relative order. It is used when a subset of
// a dataset is handed to its own environment.
func Reindex(depot Customer, customers []Customer) Dataset {
	out := make(Dataset, 0, 1+len(customers))
	depot.Index = DepotIndex
	out = append(out, depot)
	for i, c := range customers {
		c.Index = i + 1
		out = append(out, c)
	}
	return out
}

// SortByIndex orders a slice of customers in place by index.
func SortByIndex(cs []Customer) {
	sort.Slice(cs, func(i, j int) bool { return cs[i].Index < cs[j].Index })
}
