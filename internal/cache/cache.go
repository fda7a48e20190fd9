package cache

import (
	"context"
	"errors"

	"github.com/v-23-69/coinkart/internal/domain"
)

// CartCache is a read-through optimization in front of the cart store. It is
// never the authoritative copy, a miss or a cache failure always falls back to
// the store.
type CartCache interface {
	Get(ctx context.Context, ownerID string) (*domain.Cart, error)
	Set(ctx context.Context, ownerID string, cart *domain.Cart) error
	Delete(ctx context.Context, ownerID string) error
}

var ErrCacheMiss = errors.New("cache miss")
