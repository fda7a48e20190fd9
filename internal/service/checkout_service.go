package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/v-23-69/coinkart/internal/cache"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/notification"
	"github.com/v-23-69/coinkart/internal/port"
	"github.com/v-23-69/coinkart/internal/repository"
	"go.uber.org/zap"
)

type PaymentDispatcher interface {
	Dispatch(ctx context.Context, method domain.PaymentMethod, req domain.PaymentRequest) (domain.PaymentResponse, error)
}

type Notifier interface {
	SendAll(ctx context.Context, conf notification.OrderConfirmation) ([]notification.ChannelResult, error)
}

// CheckoutService orchestrates the checkout flow: cart aggregation, address
// validation, order placement, payment and confirmation fan-out. Stages run
// strictly in that sequence, nothing retries automatically.
type CheckoutService struct {
	carts     port.CartRepository
	orders    port.OrderRepository
	cartCache cache.CartCache
	payments  PaymentDispatcher
	notifier  Notifier
	logger    *zap.Logger
}

func NewCheckoutService(
	carts port.CartRepository,
	orders port.OrderRepository,
	cartCache cache.CartCache,
	payments PaymentDispatcher,
	notifier Notifier,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		carts:     carts,
		orders:    orders,
		cartCache: cartCache,
		payments:  payments,
		notifier:  notifier,
		logger:    logger,
	}
}

// CartSummary is what the cart and checkout views render. Both use the same
// total formula.
type CartSummary struct {
	Items       []domain.CartItem
	Subtotal    domain.Money
	Tax         domain.Money
	ShippingFee domain.Money
	Total       domain.Money
}

func (s *CheckoutService) GetCartItems(ctx context.Context, userID string) ([]domain.CartItem, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	if s.cartCache != nil {
		cached, err := s.cartCache.Get(ctx, userID)
		if err == nil {
			return cached.Items, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("cart cache read failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("carts.GetCart: %w: %w", ErrCartLoadFailed, err)
	}

	if s.cartCache != nil {
		if err := s.cartCache.Set(ctx, userID, &cart); err != nil {
			s.logger.Warn("cart cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	return cart.Items, nil
}

func (s *CheckoutService) GetCartSummary(ctx context.Context, userID string) (CartSummary, error) {
	items, err := s.GetCartItems(ctx, userID)
	if err != nil {
		return CartSummary{}, err
	}

	subtotal, err := domain.Subtotal(items)
	if err != nil {
		return CartSummary{}, fmt.Errorf("domain.Subtotal: %w", err)
	}

	total, err := domain.OrderTotal(items)
	if err != nil {
		return CartSummary{}, fmt.Errorf("domain.OrderTotal: %w", err)
	}

	return CartSummary{
		Items:       items,
		Subtotal:    subtotal,
		Tax:         domain.Tax(subtotal),
		ShippingFee: domain.ShippingFee(subtotal),
		Total:       total,
	}, nil
}

func (s *CheckoutService) AddCartItem(ctx context.Context, userID string, item domain.CartItem) error {
	if userID == "" {
		return ErrNotAuthenticated
	}

	if err := s.carts.AddItem(ctx, userID, item); err != nil {
		return fmt.Errorf("carts.AddItem: %w", err)
	}

	s.invalidateCart(ctx, userID)
	return nil
}

func (s *CheckoutService) UpdateCartQuantity(ctx context.Context, userID string, listingID uuid.UUID, quantity int32) (bool, error) {
	if userID == "" {
		return false, ErrNotAuthenticated
	}

	found, err := s.carts.UpdateQuantity(ctx, userID, listingID, quantity)
	if err != nil {
		return false, fmt.Errorf("carts.UpdateQuantity: %w", err)
	}

	s.invalidateCart(ctx, userID)
	return found, nil
}

func (s *CheckoutService) RemoveCartItem(ctx context.Context, userID string, listingID uuid.UUID) (bool, error) {
	if userID == "" {
		return false, ErrNotAuthenticated
	}

	found, err := s.carts.DeleteItem(ctx, userID, listingID)
	if err != nil {
		return false, fmt.Errorf("carts.DeleteItem: %w", err)
	}

	s.invalidateCart(ctx, userID)
	return found, nil
}

func (s *CheckoutService) ListOrders(ctx context.Context, userID string) ([]domain.Order, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}

	orders, err := s.orders.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return orders, nil
}

type PlaceOrderInput struct {
	// IdempotencyKey is generated by the client per checkout attempt. A
	// repeated key returns the already-created order instead of a duplicate.
	IdempotencyKey string
	Address        domain.ShippingAddress
	Items          []domain.CartItem
}

// PlaceOrder moves a validated cart and address to a durable pending order and
// returns its id. It does not clear the cart or touch payment, those happen
// once the payment is confirmed.
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID string, input PlaceOrderInput) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, ErrNotAuthenticated
	}

	state := domain.CheckoutStateIdle
	if err := s.advance(&state, domain.CheckoutStateValidating, userID); err != nil {
		return uuid.Nil, err
	}

	if len(input.Items) == 0 {
		return uuid.Nil, ErrEmptyCart
	}

	address := input.Address.WithDefaults()
	if err := address.Validate(); err != nil {
		// back to idle, the user corrects the form and resubmits
		return uuid.Nil, err
	}

	if err := s.advance(&state, domain.CheckoutStatePlacing, userID); err != nil {
		return uuid.Nil, err
	}

	if input.IdempotencyKey != "" {
		existing, err := s.orders.GetOrderByIdempotencyKey(ctx, userID, input.IdempotencyKey)
		if err == nil {
			s.logger.Info("duplicate checkout attempt, returning existing order",
				zap.String("user_id", userID),
				zap.String("idempotency_key", input.IdempotencyKey),
				zap.String("order_id", existing.ID.String()))
			return existing.ID, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return uuid.Nil, fmt.Errorf("orders.GetOrderByIdempotencyKey: %w: %w", ErrOrderPersistence, err)
		}
	}

	total, err := domain.OrderTotal(input.Items)
	if err != nil {
		return uuid.Nil, fmt.Errorf("domain.OrderTotal: %w", err)
	}

	order := domain.Order{
		OwnerID:        userID,
		IdempotencyKey: input.IdempotencyKey,
		Total:          total,
		Address:        address,
		Items:          domain.NewOrderItems(input.Items),
		Status:         domain.PaymentStatusPending,
	}

	orderID, err := s.orders.InsertOrder(ctx, order)
	if err != nil {
		if errors.Is(err, repository.ErrOrderExists) {
			// lost the race to a concurrent submit with the same key
			existing, getErr := s.orders.GetOrderByIdempotencyKey(ctx, userID, input.IdempotencyKey)
			if getErr != nil {
				return uuid.Nil, fmt.Errorf("orders.GetOrderByIdempotencyKey: %w: %w", ErrOrderPersistence, getErr)
			}
			return existing.ID, nil
		}

		_ = s.advance(&state, domain.CheckoutStateFailed, userID)
		return uuid.Nil, fmt.Errorf("orders.InsertOrder: %w: %w", ErrOrderPersistence, err)
	}

	if err := s.advance(&state, domain.CheckoutStateAwaitingPayment, userID); err != nil {
		return uuid.Nil, err
	}

	s.logger.Info("order placed",
		zap.String("user_id", userID),
		zap.String("order_id", orderID.String()),
		zap.String("total", order.Total.String()))

	return orderID, nil
}

type PayInput struct {
	Method        domain.PaymentMethod
	Token         string
	CustomerEmail string
}

// Pay runs one payment attempt against a pending order. A declined payment
// returns Success=false with the order left pending, so the user can retry
// with the same or another method without creating a new order.
func (s *CheckoutService) Pay(ctx context.Context, userID string, orderID uuid.UUID, input PayInput) (domain.PaymentResponse, error) {
	var zero domain.PaymentResponse

	if userID == "" {
		return zero, ErrNotAuthenticated
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return zero, fmt.Errorf("orders.GetOrder: %w", err)
	}

	if order.OwnerID != userID {
		return zero, fmt.Errorf("orders.GetOrder: %w", repository.ErrNotFound)
	}

	if order.Status == domain.PaymentStatusCompleted {
		return zero, ErrOrderAlreadyPaid
	}

	req := domain.PaymentRequest{
		OrderID:       order.ID,
		Amount:        order.Total,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: order.Address.Phone,
		Method:        input.Method,
		Token:         input.Token,
	}

	resp, err := s.payments.Dispatch(ctx, input.Method, req)
	if err != nil {
		// order stays pending, the user may retry
		return zero, fmt.Errorf("payments.Dispatch: %w", err)
	}

	if !resp.Success {
		return resp, nil
	}

	// Payment is captured from here on. A status write failure is logged and
	// left to reconciliation, it must not resurface as a payment failure.
	if err := s.orders.UpdateStatus(ctx, order.ID, domain.PaymentStatusCompleted); err != nil {
		s.logger.Error("failed to mark order completed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	if err := s.carts.Clear(ctx, userID); err != nil {
		s.logger.Error("failed to clear cart after payment",
			zap.String("user_id", userID), zap.Error(err))
	}
	s.invalidateCart(ctx, userID)

	s.notify(ctx, order, input.CustomerEmail)

	s.logger.Info("payment completed",
		zap.String("order_id", order.ID.String()),
		zap.String("method", string(resp.Method)),
		zap.String("transaction_id", resp.TransactionID))

	return resp, nil
}

func (s *CheckoutService) notify(ctx context.Context, order domain.Order, customerEmail string) {
	if s.notifier == nil {
		return
	}

	conf := notification.OrderConfirmation{
		OrderID:       order.ID,
		CustomerName:  order.Address.FullName,
		CustomerEmail: customerEmail,
		CustomerPhone: order.Address.Phone,
		OrderAmount:   order.Total,
		OrderItems:    order.Items,
		Address:       order.Address,
		PaymentStatus: domain.PaymentStatusCompleted,
	}

	if _, err := s.notifier.SendAll(ctx, conf); err != nil {
		// informational only, never rolls back the order or payment
		s.logger.Error("order confirmation delivery failed",
			zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

func (s *CheckoutService) invalidateCart(ctx context.Context, userID string) {
	if s.cartCache == nil {
		return
	}

	if err := s.cartCache.Delete(ctx, userID); err != nil {
		s.logger.Warn("cart cache invalidation failed",
			zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *CheckoutService) advance(state *domain.CheckoutState, next domain.CheckoutState, userID string) error {
	if !state.CanTransitionTo(next) {
		return fmt.Errorf("illegal checkout transition %s -> %s", *state, next)
	}

	*state = next

	s.logger.Debug("checkout state",
		zap.String("user_id", userID),
		zap.String("state", next.String()))

	return nil
}
