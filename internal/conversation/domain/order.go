package domain

import (
	"fmt"
	"math"
)

// AnonymousCustomer is the customer name sentinel until identification succeeds.
// An order may never be finalized while the name is still this value.
const AnonymousCustomer = "Cliente anónimo"

// Area is the downstream station responsible for preparing an item.
type Area string

const (
	AreaBar     Area = "bar"
	AreaKitchen Area = "kitchen"
)

// ParseArea validates a raw preparation area name.
func ParseArea(raw string) (Area, bool) {
	a := Area(raw)
	return a, a == AreaBar || a == AreaKitchen
}

// Item is a single line of the running order. Names are unique within an
// order; customizations attach to bar-area items only.
type Item struct {
	Name            string   `json:"name"`
	UnitPrice       float64  `json:"unitPrice"`
	PreparationArea Area     `json:"preparationArea"`
	Customizations  []string `json:"customizations,omitempty"`
}

// RoundTotal rounds a monetary amount to 2 decimal places, half away from zero.
func RoundTotal(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatTotal renders a monetary amount with exactly two decimals.
func FormatTotal(v float64) string {
	return fmt.Sprintf("%.2f", RoundTotal(v))
}

// PartitionByArea splits an item list per preparation area, preserving order.
func PartitionByArea(items []Item) map[Area][]Item {
	parts := make(map[Area][]Item)
	for _, item := range items {
		parts[item.PreparationArea] = append(parts[item.PreparationArea], item)
	}
	return parts
}
