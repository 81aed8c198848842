// Package orders provides the orders domain module.
package orders

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "cafe_voice_backend/internal/http"
	"cafe_voice_backend/internal/orders/handler"
	"cafe_voice_backend/internal/orders/repository"
	"cafe_voice_backend/internal/orders/service"
	"cafe_voice_backend/platform/logger"
)

// Module represents the orders domain module
type Module struct {
	handler *handler.Handler
	Service *service.Service
}

// NewModule creates a new orders module with all dependencies wired
func NewModule(pool *pgxpool.Pool, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	h := handler.New(svc)

	return &Module{
		handler: h,
		Service: svc,
	}
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "orders"
}

// RegisterRoutes registers the module's routes under /api/v1/orders
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	orders := ctx.V1.Group("/orders")
	m.handler.RegisterRoutes(orders)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
