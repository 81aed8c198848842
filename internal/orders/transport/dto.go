// Package transport defines the response bodies of the orders endpoints.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// OrderItemResponse is one line of an order.
type OrderItemResponse struct {
	Name            string   `json:"name"`
	UnitPrice       float64  `json:"unitPrice"`
	PreparationArea string   `json:"preparationArea"`
	Customizations  []string `json:"customizations,omitempty"`
}

// OrderResponse is the response body for an order lookup.
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"orderNumber"`
	CustomerName  string              `json:"customerName"`
	CustomerPhone string              `json:"customerPhone"`
	Total         float64             `json:"total"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"createdAt"`
}
