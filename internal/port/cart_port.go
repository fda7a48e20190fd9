package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/v-23-69/coinkart/internal/domain"
)

type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)

	AddItem(ctx context.Context, ownerID string, item domain.CartItem) error
	UpdateQuantity(ctx context.Context, ownerID string, listingID uuid.UUID, quantity int32) (bool, error)
	DeleteItem(ctx context.Context, ownerID string, listingID uuid.UUID) (bool, error)

	Clear(ctx context.Context, ownerID string) error
}
