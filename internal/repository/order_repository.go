package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/port"
	"golang.org/x/text/currency"
)

var (
	ErrNotFound = errors.New("order not found")

	// ErrOrderExists means another insert with the same idempotency key won the
	// race. Callers should re-read by key instead of retrying the insert.
	ErrOrderExists = errors.New("order with this idempotency key already exists")
)

const uniqueViolation = "23505"

type orderRepository struct {
	pool *pgxpool.Pool
}

func NewOrder(pool *pgxpool.Pool) port.OrderRepository {
	return &orderRepository{pool: pool}
}

func (r *orderRepository) GetOrder(ctx context.Context, orderID uuid.UUID) (domain.Order, error) {
	var o domain.Order

	if orderID == uuid.Nil {
		return o, fmt.Errorf("orderID is empty")
	}

	order, err := withTx(ctx, r.pool, func(tx pgx.Tx) (domain.Order, error) {
		order, err := scanOrder(tx.QueryRow(ctx, `
			SELECT id, owner_id, COALESCE(idempotency_key, ''), total_amount, total_currency, status,
			       full_name, phone, line1, line2, city, state, postal_code, country,
			       created_at, updated_at
			FROM orders
			WHERE id = $1`, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return o, fmt.Errorf("scanOrder: %w", ErrNotFound)
			}
			return o, fmt.Errorf("scanOrder: %w", err)
		}

		items, err := getOrderItems(ctx, tx, orderID)
		if err != nil {
			return o, fmt.Errorf("getOrderItems: %w", err)
		}

		order.Items = items
		return order, nil
	})
	if err != nil {
		return o, fmt.Errorf("withTx: %w", err)
	}

	return order, nil
}

func (r *orderRepository) GetOrderByIdempotencyKey(ctx context.Context, ownerID, key string) (domain.Order, error) {
	var o domain.Order

	if key == "" {
		return o, fmt.Errorf("idempotency key is empty")
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, COALESCE(idempotency_key, ''), total_amount, total_currency, status,
		       full_name, phone, line1, line2, city, state, postal_code, country,
		       created_at, updated_at
		FROM orders
		WHERE owner_id = $1 AND idempotency_key = $2`, ownerID, key)

	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return o, fmt.Errorf("scanOrder: %w", ErrNotFound)
		}
		return o, fmt.Errorf("scanOrder: %w", err)
	}

	return order, nil
}

func (r *orderRepository) InsertOrder(ctx context.Context, order domain.Order) (uuid.UUID, error) {
	if len(order.Items) == 0 {
		return uuid.Nil, errors.New("no items in order")
	}

	if order.Status == "" {
		order.Status = domain.PaymentStatusPending
	}

	orderID, err := withTx(ctx, r.pool, func(tx pgx.Tx) (uuid.UUID, error) {
		var orderID uuid.UUID

		err := tx.QueryRow(ctx, `
			INSERT INTO orders (owner_id, idempotency_key, total_amount, total_currency, status,
			                    full_name, phone, line1, line2, city, state, postal_code, country)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id`,
			order.OwnerID, order.IdempotencyKey,
			order.Total.Amount, order.Total.Currency.String(), string(order.Status),
			order.Address.FullName, order.Address.Phone, order.Address.Line1, order.Address.Line2,
			order.Address.City, order.Address.State, order.Address.PostalCode, order.Address.Country,
		).Scan(&orderID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
				return uuid.Nil, ErrOrderExists
			}
			return uuid.Nil, fmt.Errorf("insert order: %w", err)
		}

		// TODO: batch with pgx.Batch
		for _, item := range order.Items {
			_, err := tx.Exec(ctx, `
				INSERT INTO order_items (order_id, listing_id, title, quantity, unit_price_amount, unit_price_currency)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				orderID, item.ListingID, item.Title, item.Quantity,
				item.UnitPrice.Amount, item.UnitPrice.Currency.String())
			if err != nil {
				return uuid.Nil, fmt.Errorf("insert order item: %w", err)
			}
		}

		return orderID, nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderExists) {
			return uuid.Nil, ErrOrderExists
		}
		return uuid.Nil, fmt.Errorf("withTx: %w", err)
	}

	return orderID, nil
}

func (r *orderRepository) ListOrders(ctx context.Context, ownerID string) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.owner_id, COALESCE(o.idempotency_key, ''), o.total_amount, o.total_currency, o.status,
		       o.full_name, o.phone, o.line1, o.line2, o.city, o.state, o.postal_code, o.country,
		       o.created_at, o.updated_at,
		       i.listing_id, i.title, i.quantity, i.unit_price_amount, i.unit_price_currency
		FROM orders o
		JOIN order_items i ON i.order_id = o.id
		WHERE o.owner_id = $1
		ORDER BY o.created_at DESC, i.listing_id`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pool.Query: %w", err)
	}
	defer rows.Close()

	// Group joined rows into orders, preserving the row order.
	orderMap := make(map[uuid.UUID]domain.Order)
	var orderIDs []uuid.UUID

	for rows.Next() {
		order, item, err := scanOrderJoinRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanOrderJoinRow: %w", err)
		}

		if _, exists := orderMap[order.ID]; !exists {
			orderMap[order.ID] = order
			orderIDs = append(orderIDs, order.ID)
		}

		grouped := orderMap[order.ID]
		grouped.Items = append(grouped.Items, item)
		orderMap[order.ID] = grouped
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return lo.Map(orderIDs, func(id uuid.UUID, _ int) domain.Order {
		return orderMap[id]
	}), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	if orderID == uuid.Nil {
		return fmt.Errorf("orderID is empty")
	}

	if _, err := domain.ToPaymentStatus(string(status)); err != nil {
		return fmt.Errorf("domain.ToPaymentStatus[%s]: %w", status, err)
	}

	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, updated_at = now() WHERE id = $1`,
		orderID, string(status))
	if err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update status: %w", ErrNotFound)
	}

	return nil
}

func scanOrder(row pgx.Row) (domain.Order, error) {
	var (
		o            domain.Order
		amount       decimal.Decimal
		currencyCode string
		status       string
	)

	err := row.Scan(&o.ID, &o.OwnerID, &o.IdempotencyKey, &amount, &currencyCode, &status,
		&o.Address.FullName, &o.Address.Phone, &o.Address.Line1, &o.Address.Line2,
		&o.Address.City, &o.Address.State, &o.Address.PostalCode, &o.Address.Country,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return o, err
	}

	parsedCurrency, err := currency.ParseISO(currencyCode)
	if err != nil {
		return o, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
	}
	o.Total = domain.Money{Amount: amount, Currency: parsedCurrency}

	o.Status, err = domain.ToPaymentStatus(status)
	if err != nil {
		return o, fmt.Errorf("domain.ToPaymentStatus[%s]: %w", status, err)
	}

	return o, nil
}

func getOrderItems(ctx context.Context, tx pgx.Tx, orderID uuid.UUID) ([]domain.OrderItem, error) {
	rows, err := tx.Query(ctx, `
		SELECT listing_id, title, quantity, unit_price_amount, unit_price_currency
		FROM order_items
		WHERE order_id = $1
		ORDER BY listing_id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("tx.Query: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem

	for rows.Next() {
		var (
			item         domain.OrderItem
			amount       decimal.Decimal
			currencyCode string
		)

		if err := rows.Scan(&item.ListingID, &item.Title, &item.Quantity, &amount, &currencyCode); err != nil {
			return nil, fmt.Errorf("rows.Scan: %w", err)
		}

		parsedCurrency, err := currency.ParseISO(currencyCode)
		if err != nil {
			return nil, fmt.Errorf("currency[%s] is not valid: %w", currencyCode, err)
		}
		item.UnitPrice = domain.Money{Amount: amount, Currency: parsedCurrency}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}

	return items, nil
}

func scanOrderJoinRow(rows pgx.Rows) (domain.Order, domain.OrderItem, error) {
	var (
		o             domain.Order
		item          domain.OrderItem
		totalAmount   decimal.Decimal
		totalCurrency string
		status        string
		itemAmount    decimal.Decimal
		itemCurrency  string
	)

	err := rows.Scan(&o.ID, &o.OwnerID, &o.IdempotencyKey, &totalAmount, &totalCurrency, &status,
		&o.Address.FullName, &o.Address.Phone, &o.Address.Line1, &o.Address.Line2,
		&o.Address.City, &o.Address.State, &o.Address.PostalCode, &o.Address.Country,
		&o.CreatedAt, &o.UpdatedAt,
		&item.ListingID, &item.Title, &item.Quantity, &itemAmount, &itemCurrency)
	if err != nil {
		return o, item, fmt.Errorf("rows.Scan: %w", err)
	}

	parsedTotalCurrency, err := currency.ParseISO(totalCurrency)
	if err != nil {
		return o, item, fmt.Errorf("currency[%s] is not valid: %w", totalCurrency, err)
	}
	o.Total = domain.Money{Amount: totalAmount, Currency: parsedTotalCurrency}

	o.Status, err = domain.ToPaymentStatus(status)
	if err != nil {
		return o, item, fmt.Errorf("domain.ToPaymentStatus[%s]: %w", status, err)
	}

	parsedItemCurrency, err := currency.ParseISO(itemCurrency)
	if err != nil {
		return o, item, fmt.Errorf("currency[%s] is not valid: %w", itemCurrency, err)
	}
	item.UnitPrice = domain.Money{Amount: itemAmount, Currency: parsedItemCurrency}

	return o, item, nil
}
