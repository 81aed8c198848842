// Package service implements order persistence on top of the repository.
package service

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"cafe_voice_backend/internal/conversation"
	"cafe_voice_backend/internal/orders/repository"
	"cafe_voice_backend/platform/logger"
)

// Service persists finalized orders and serves lookups.
type Service struct {
	repo *repository.Repository
	log  *logger.Logger
}

// New creates a new orders service
func New(repo *repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// WriteOrder stores a finalized order atomically and returns the speakable
// order number.
func (s *Service) WriteOrder(ctx context.Context, order conversation.FinalOrder) (string, error) {
	orderID := uuid.New()
	record := &repository.Order{
		ID:            orderID,
		CallID:        order.CallID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		TotalCents:    toCents(order.Total),
		CreatedAt:     time.Now().UTC(),
	}

	items := make([]repository.OrderItem, 0, len(order.Items))
	for i, item := range order.Items {
		items = append(items, repository.OrderItem{
			ID:              uuid.New(),
			OrderID:         orderID,
			Name:            item.Name,
			UnitPriceCents:  toCents(item.UnitPrice),
			PreparationArea: string(item.PreparationArea),
			Customizations:  item.Customizations,
			Position:        i,
		})
	}

	if err := s.repo.CreateWithItems(ctx, record, items); err != nil {
		s.log.DatabaseError("create_order", err)
		return "", err
	}

	return record.OrderNumber, nil
}

// GetByID retrieves an order with its items.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*repository.Order, []repository.OrderItem, error) {
	return s.repo.GetByID(ctx, id)
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

var _ conversation.OrderWriter = (*Service)(nil)
