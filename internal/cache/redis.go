package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/v-23-69/coinkart/internal/domain"
	"golang.org/x/text/currency"
)

func NewRedisCartCache(client *redis.Client) *RedisCartCache {
	return &RedisCartCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCartCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// cachedCartItem flattens Money for JSON, currency.Unit does not round-trip
// through encoding/json on its own.
type cachedCartItem struct {
	ListingID   uuid.UUID       `json:"listing_id"`
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	ImageURL    string          `json:"image_url"`
	Quantity    int32           `json:"quantity"`
	StockOnHand int32           `json:"stock_on_hand"`
	CreatedAt   time.Time       `json:"created_at"`
}

type cachedCart struct {
	OwnerID string           `json:"owner_id"`
	Items   []cachedCartItem `json:"items"`
}

func (r *RedisCartCache) Get(ctx context.Context, ownerID string) (*domain.Cart, error) {
	key := cacheKey(ownerID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedCart
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}

	cart, err := cached.toDomain()
	if err != nil {
		return nil, fmt.Errorf("cached cart invalid: %w", err)
	}

	return cart, nil
}

func (r *RedisCartCache) Set(ctx context.Context, ownerID string, cart *domain.Cart) error {
	key := cacheKey(ownerID)

	data, err := json.Marshal(fromDomain(cart))
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// Jitter spreads out expiry so carts cached together do not all miss at once.
	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if err := r.client.Set(ctx, key, data, r.baseTTL+jitter).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (r *RedisCartCache) Delete(ctx context.Context, ownerID string) error {
	if err := r.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cacheKey(ownerID string) string {
	return fmt.Sprintf("checkout:cart:%s", ownerID)
}

func fromDomain(cart *domain.Cart) cachedCart {
	cached := cachedCart{OwnerID: cart.OwnerID}

	for _, item := range cart.Items {
		cached.Items = append(cached.Items, cachedCartItem{
			ListingID:   item.ListingID,
			Title:       item.Title,
			Amount:      item.UnitPrice.Amount,
			Currency:    item.UnitPrice.Currency.String(),
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			StockOnHand: item.StockOnHand,
			CreatedAt:   item.CreatedAt,
		})
	}

	return cached
}

func (c cachedCart) toDomain() (*domain.Cart, error) {
	cart := &domain.Cart{OwnerID: c.OwnerID}

	for _, item := range c.Items {
		parsedCurrency, err := currency.ParseISO(item.Currency)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", item.Currency, err)
		}

		cart.Items = append(cart.Items, domain.CartItem{
			OwnerID:     c.OwnerID,
			ListingID:   item.ListingID,
			Title:       item.Title,
			UnitPrice:   domain.Money{Amount: item.Amount, Currency: parsedCurrency},
			ImageURL:    item.ImageURL,
			Quantity:    item.Quantity,
			StockOnHand: item.StockOnHand,
			CreatedAt:   item.CreatedAt,
		})
	}

	return cart, nil
}
