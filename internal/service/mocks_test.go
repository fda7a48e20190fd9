package service_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/v-23-69/coinkart/internal/cache"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/notification"
	"github.com/v-23-69/coinkart/internal/repository"
)

type mockCartRepo struct {
	carts map[string][]domain.CartItem

	getErr     error
	clearCalls int
}

func newMockCartRepo() *mockCartRepo {
	return &mockCartRepo{carts: make(map[string][]domain.CartItem)}
}

func (m *mockCartRepo) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	if m.getErr != nil {
		return domain.Cart{}, m.getErr
	}
	return domain.Cart{OwnerID: ownerID, Items: m.carts[ownerID]}, nil
}

func (m *mockCartRepo) AddItem(_ context.Context, ownerID string, item domain.CartItem) error {
	m.carts[ownerID] = append(m.carts[ownerID], item)
	return nil
}

func (m *mockCartRepo) UpdateQuantity(_ context.Context, ownerID string, listingID uuid.UUID, quantity int32) (bool, error) {
	for i, item := range m.carts[ownerID] {
		if item.ListingID == listingID {
			m.carts[ownerID][i].Quantity = quantity
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCartRepo) DeleteItem(_ context.Context, ownerID string, listingID uuid.UUID) (bool, error) {
	for i, item := range m.carts[ownerID] {
		if item.ListingID == listingID {
			m.carts[ownerID] = append(m.carts[ownerID][:i], m.carts[ownerID][i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockCartRepo) Clear(_ context.Context, ownerID string) error {
	m.clearCalls++
	delete(m.carts, ownerID)
	return nil
}

type mockOrderRepo struct {
	orders map[uuid.UUID]domain.Order
	byKey  map[string]uuid.UUID

	insertErr   error
	insertCalls int
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{
		orders: make(map[uuid.UUID]domain.Order),
		byKey:  make(map[string]uuid.UUID),
	}
}

func keyFor(ownerID, key string) string {
	return ownerID + "/" + key
}

func (m *mockOrderRepo) GetOrder(_ context.Context, orderID uuid.UUID) (domain.Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return order, nil
}

func (m *mockOrderRepo) GetOrderByIdempotencyKey(_ context.Context, ownerID, key string) (domain.Order, error) {
	orderID, ok := m.byKey[keyFor(ownerID, key)]
	if !ok {
		return domain.Order{}, repository.ErrNotFound
	}
	return m.orders[orderID], nil
}

func (m *mockOrderRepo) ListOrders(_ context.Context, ownerID string) ([]domain.Order, error) {
	var result []domain.Order
	for _, order := range m.orders {
		if order.OwnerID == ownerID {
			result = append(result, order)
		}
	}
	return result, nil
}

func (m *mockOrderRepo) InsertOrder(_ context.Context, order domain.Order) (uuid.UUID, error) {
	m.insertCalls++

	if m.insertErr != nil {
		return uuid.Nil, m.insertErr
	}

	order.ID = uuid.New()

	m.orders[order.ID] = order
	if order.IdempotencyKey != "" {
		m.byKey[keyFor(order.OwnerID, order.IdempotencyKey)] = order.ID
	}

	return order.ID, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	order, ok := m.orders[orderID]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	m.orders[orderID] = order
	return nil
}

type mockCartCache struct {
	carts map[string]*domain.Cart

	getCalls, setCalls, deleteCalls int
}

func newMockCartCache() *mockCartCache {
	return &mockCartCache{carts: make(map[string]*domain.Cart)}
}

func (m *mockCartCache) Get(_ context.Context, ownerID string) (*domain.Cart, error) {
	m.getCalls++
	cart, ok := m.carts[ownerID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *mockCartCache) Set(_ context.Context, ownerID string, cart *domain.Cart) error {
	m.setCalls++
	m.carts[ownerID] = cart
	return nil
}

func (m *mockCartCache) Delete(_ context.Context, ownerID string) error {
	m.deleteCalls++
	delete(m.carts, ownerID)
	return nil
}

type mockDispatcher struct {
	resp domain.PaymentResponse
	err  error

	calls    int
	lastReq  domain.PaymentRequest
	lastMeth domain.PaymentMethod
}

func (m *mockDispatcher) Dispatch(_ context.Context, method domain.PaymentMethod, req domain.PaymentRequest) (domain.PaymentResponse, error) {
	m.calls++
	m.lastReq = req
	m.lastMeth = method

	if m.err != nil {
		return domain.PaymentResponse{}, m.err
	}

	resp := m.resp
	resp.Method = method
	return resp, nil
}

type mockNotifier struct {
	err error

	calls    int
	lastConf notification.OrderConfirmation
}

func (m *mockNotifier) SendAll(_ context.Context, conf notification.OrderConfirmation) ([]notification.ChannelResult, error) {
	m.calls++
	m.lastConf = conf

	if m.err != nil {
		return nil, m.err
	}

	return []notification.ChannelResult{
		{Channel: notification.ChannelEmail, MessageID: "email-1"},
		{Channel: notification.ChannelSMS, MessageID: "sms-1"},
	}, nil
}
