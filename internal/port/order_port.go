package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/v-23-69/coinkart/internal/domain"
)

type OrderRepository interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, ownerID, key string) (domain.Order, error)

	ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error)

	InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error)

	UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error
}
