// Package menu provides the café menu catalog and the fixed extras price
// table used to price customizations.
package menu

import (
	"strings"

	"cafe_voice_backend/internal/conversation/domain"
)

// Item is a menu entry offered to callers.
type Item struct {
	Name            string
	Price           float64
	PreparationArea domain.Area
}

// Catalog is a read-only menu with case-insensitive name lookup.
type Catalog struct {
	items  []Item
	byName map[string]Item
}

// NewCatalog builds a catalog from the given items.
func NewCatalog(items []Item) *Catalog {
	byName := make(map[string]Item, len(items))
	for _, item := range items {
		byName[strings.ToLower(item.Name)] = item
	}
	return &Catalog{items: items, byName: byName}
}

// Lookup finds a menu item by name, case-insensitively.
func (c *Catalog) Lookup(name string) (Item, bool) {
	item, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return item, ok
}

// Items returns the full menu in presentation order.
func (c *Catalog) Items() []Item {
	return c.items
}

// Default returns the café's standing menu.
func Default() *Catalog {
	return NewCatalog([]Item{
		{Name: "Espresso", Price: 2.00, PreparationArea: domain.AreaBar},
		{Name: "Americano", Price: 2.50, PreparationArea: domain.AreaBar},
		{Name: "Capuchino", Price: 3.50, PreparationArea: domain.AreaBar},
		{Name: "Latte", Price: 3.80, PreparationArea: domain.AreaBar},
		{Name: "Mocha", Price: 4.00, PreparationArea: domain.AreaBar},
		{Name: "Té Chai", Price: 3.20, PreparationArea: domain.AreaBar},
		{Name: "Chocolate Caliente", Price: 3.00, PreparationArea: domain.AreaBar},
		{Name: "Croissant", Price: 2.80, PreparationArea: domain.AreaKitchen},
		{Name: "Panini de Jamón", Price: 5.50, PreparationArea: domain.AreaKitchen},
		{Name: "Bagel con Queso Crema", Price: 3.90, PreparationArea: domain.AreaKitchen},
		{Name: "Pastel de Chocolate", Price: 4.20, PreparationArea: domain.AreaKitchen},
		{Name: "Galleta de Avena", Price: 1.80, PreparationArea: domain.AreaKitchen},
	})
}
