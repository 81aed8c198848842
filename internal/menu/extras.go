package menu

import (
	"sort"
	"strings"
)

// ExtrasTable maps a customization display name to its unit price.
// Lookups are case-insensitive; unknown names price at zero.
type ExtrasTable map[string]float64

// Price returns the price for a customization name and whether it is known.
func (t ExtrasTable) Price(name string) (float64, bool) {
	price, ok := t[strings.ToLower(strings.TrimSpace(name))]
	return price, ok
}

// Names returns the customization names in stable order.
func (t ExtrasTable) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultExtras returns the fixed extras price table. Keys are stored
// lowercase so Price lookups stay case-insensitive.
func DefaultExtras() ExtrasTable {
	return ExtrasTable{
		"leche de almendra":  0.50,
		"leche de avena":     0.60,
		"leche deslactosada": 0.40,
		"shot extra":         0.75,
		"crema batida":       0.50,
		"jarabe de vainilla": 0.45,
		"jarabe de caramelo": 0.45,
		"descafeinado":       0.00,
	}
}
