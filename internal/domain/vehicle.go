package domain

import (
	"fmt"
)

// Delivery vehicle holding the customers assigned to it for one episode.
type Vehicle struct {
	VehicleID int
	Capacity  float64
	Customers []Customer
}

func NewVehicle(id int, capacity float64) *Vehicle {
	return &Vehicle{
		VehicleID: id,
		Capacity:  capacity,
	}
}

// Load assigns a single customer to the vehicle.
func (v *Vehicle) Load(c Customer) error {
	if v.Assigned()+c.Demand > v.Capacity {
		return fmt.Errorf(
			"load vehicle: vehicle %d cannot take customer %d (load=%.2f demand=%.2f capacity=%.2f)",
			v.VehicleID, c.Index, v.Assigned(), c.Demand, v.Capacity,
		)
	}
	v.Customers = append(v.Customers, c)
	return nil
}

// Assigned returns the summed demand of the assigned customers.
func (v *Vehicle) Assigned() float64 {
	total := 0.0
	for _, c := range v.Customers {
		total += c.Demand
	}
	return total
}

// Load multiple customers onto the vehicle.
func (v *Vehicle) LoadMultiple(cs []Customer) error {
	for _, c := range cs {
		if err := v.Load(c); err != nil {
			return err
		}
	}

	return nil
}

// Unassign all customers from the vehicle.
func (v *Vehicle) Clear() {
	v.Customers = nil
}
