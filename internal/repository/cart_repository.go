package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/port"
	"golang.org/x/text/currency"
)

type cartRepository struct {
	pool *pgxpool.Pool
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{pool: pool}
}

func (r *cartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	var c domain.Cart

	rows, err := r.pool.Query(ctx, `
		SELECT listing_id, title, unit_price_amount, unit_price_currency,
		       image_url, quantity, stock_on_hand, created_at
		FROM cart_items
		WHERE owner_id = $1
		ORDER BY created_at, listing_id`, ownerID)
	if err != nil {
		return c, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	items, err := scanCartItems(rows, ownerID)
	if err != nil {
		return c, fmt.Errorf("scanCartItems: %w", err)
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}

func (r *cartRepository) AddItem(ctx context.Context, ownerID string, item domain.CartItem) error {
	if item.Quantity < 1 {
		return errors.New("quantity must be at least 1")
	}

	// Best-effort stock guard against the listing snapshot carried on the item.
	if item.StockOnHand > 0 && item.Quantity > item.StockOnHand {
		item.Quantity = item.StockOnHand
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO cart_items (owner_id, listing_id, title, unit_price_amount, unit_price_currency,
		                        image_url, quantity, stock_on_hand)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (owner_id, listing_id) DO UPDATE SET
			quantity      = CASE WHEN EXCLUDED.stock_on_hand > 0
			                     THEN LEAST(cart_items.quantity + EXCLUDED.quantity, EXCLUDED.stock_on_hand)
			                     ELSE cart_items.quantity + EXCLUDED.quantity END,
			title         = EXCLUDED.title,
			image_url     = EXCLUDED.image_url,
			stock_on_hand = EXCLUDED.stock_on_hand`,
		ownerID, item.ListingID, item.Title, item.UnitPrice.Amount, item.UnitPrice.Currency.String(),
		item.ImageURL, item.Quantity, item.StockOnHand)
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, ownerID string, listingID uuid.UUID, quantity int32) (bool, error) {
	if quantity < 1 {
		return false, errors.New("quantity must be at least 1")
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE cart_items
		SET quantity = CASE WHEN stock_on_hand > 0 THEN LEAST($3, stock_on_hand) ELSE $3 END
		WHERE owner_id = $1 AND listing_id = $2`,
		ownerID, listingID, quantity)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, ownerID string, listingID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM cart_items WHERE owner_id = $1 AND listing_id = $2`,
		ownerID, listingID)
	if err != nil {
		return false, fmt.Errorf("pool.Exec: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) Clear(ctx context.Context, ownerID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE owner_id = $1`, ownerID); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}

func scanCartItems(rows pgx.Rows, ownerID string) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for rows.Next() {
		var (
			item         domain.CartItem
			amount       decimal.Decimal
			currencyCode string
		)

		err := rows.Scan(&item.ListingID, &item.Title, &amount, &currencyCode,
			&item.ImageURL, &item.Quantity, &item.StockOnHand, &item.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		parsedCurrency, err := currency.ParseISO(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
		}

		item.OwnerID = ownerID
		item.UnitPrice = domain.Money{Amount: amount, Currency: parsedCurrency}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}
