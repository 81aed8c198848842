// Package handler exposes order lookups over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cafe_voice_backend/internal/orders/service"
	"cafe_voice_backend/internal/orders/transport"
	"cafe_voice_backend/platform/httpkit"
)

const msgInvalidOrderID = "invalid order id"

// Handler handles HTTP requests for orders
type Handler struct {
	svc *service.Service
}

// New creates a new orders handler
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the order routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id", h.GetByID)
}

// GetByID handles GET /api/v1/orders/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidOrderID, nil)
		return
	}

	order, items, err := h.svc.GetByID(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.OrderResponse{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Total:         float64(order.TotalCents) / 100,
		CreatedAt:     order.CreatedAt,
	}
	for _, item := range items {
		resp.Items = append(resp.Items, transport.OrderItemResponse{
			Name:            item.Name,
			UnitPrice:       float64(item.UnitPriceCents) / 100,
			PreparationArea: item.PreparationArea,
			Customizations:  item.Customizations,
		})
	}

	httpkit.OK(c, resp)
}
