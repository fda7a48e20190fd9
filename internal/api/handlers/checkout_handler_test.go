package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/v-23-69/coinkart/internal/api"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/payment"
	"github.com/v-23-69/coinkart/internal/repository"
	"github.com/v-23-69/coinkart/internal/service"
	"go.uber.org/zap"
)

func inr(amount string) domain.Money {
	return domain.Money{Amount: decimal.RequireFromString(amount), Currency: domain.INR}
}

type fakeCheckoutService struct {
	summary    service.CartSummary
	summaryErr error

	items    []domain.CartItem
	itemsErr error

	addedItem *domain.CartItem
	addErr    error

	updateFound bool
	updatedQty  int32
	removeFound bool

	orders    []domain.Order
	ordersErr error

	placeOrderID uuid.UUID
	placeErr     error
	placeInput   service.PlaceOrderInput

	payResp    domain.PaymentResponse
	payErr     error
	payOrderID uuid.UUID
	payInput   service.PayInput
}

func (f *fakeCheckoutService) auth(userID string) error {
	if userID == "" {
		return service.ErrNotAuthenticated
	}
	return nil
}

func (f *fakeCheckoutService) GetCartItems(_ context.Context, userID string) ([]domain.CartItem, error) {
	if err := f.auth(userID); err != nil {
		return nil, err
	}
	return f.items, f.itemsErr
}

func (f *fakeCheckoutService) GetCartSummary(_ context.Context, userID string) (service.CartSummary, error) {
	if err := f.auth(userID); err != nil {
		return service.CartSummary{}, err
	}
	return f.summary, f.summaryErr
}

func (f *fakeCheckoutService) AddCartItem(_ context.Context, userID string, item domain.CartItem) error {
	if err := f.auth(userID); err != nil {
		return err
	}
	f.addedItem = &item
	return f.addErr
}

func (f *fakeCheckoutService) UpdateCartQuantity(_ context.Context, userID string, _ uuid.UUID, quantity int32) (bool, error) {
	if err := f.auth(userID); err != nil {
		return false, err
	}
	f.updatedQty = quantity
	return f.updateFound, nil
}

func (f *fakeCheckoutService) RemoveCartItem(_ context.Context, userID string, _ uuid.UUID) (bool, error) {
	if err := f.auth(userID); err != nil {
		return false, err
	}
	return f.removeFound, nil
}

func (f *fakeCheckoutService) ListOrders(_ context.Context, userID string) ([]domain.Order, error) {
	if err := f.auth(userID); err != nil {
		return nil, err
	}
	return f.orders, f.ordersErr
}

func (f *fakeCheckoutService) PlaceOrder(_ context.Context, userID string, input service.PlaceOrderInput) (uuid.UUID, error) {
	if err := f.auth(userID); err != nil {
		return uuid.Nil, err
	}
	f.placeInput = input
	return f.placeOrderID, f.placeErr
}

func (f *fakeCheckoutService) Pay(_ context.Context, userID string, orderID uuid.UUID, input service.PayInput) (domain.PaymentResponse, error) {
	if err := f.auth(userID); err != nil {
		return domain.PaymentResponse{}, err
	}
	f.payOrderID = orderID
	f.payInput = input
	return f.payResp, f.payErr
}

func doRequest(t *testing.T, svc *fakeCheckoutService, method, path, userID, body string) *httptest.ResponseRecorder {
	t.Helper()

	router := api.NewRouter(svc, zap.NewNop())

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGetCart(t *testing.T) {
	svc := &fakeCheckoutService{
		summary: service.CartSummary{
			Items: []domain.CartItem{{
				ListingID:   uuid.New(),
				Title:       "1918 George V Rupee",
				UnitPrice:   inr("15000"),
				Quantity:    1,
				StockOnHand: 1,
			}},
			Subtotal:    inr("15000"),
			Tax:         inr("2700"),
			ShippingFee: inr("0"),
			Total:       inr("17700"),
		},
	}

	rec := doRequest(t, svc, http.MethodGet, "/cart", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, map[string]any{"amount": "17700", "currency": "INR"}, body["total"])
	assert.Len(t, body["items"], 1)
}

func TestGetCart_NotAuthenticated(t *testing.T) {
	rec := doRequest(t, &fakeCheckoutService{}, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAddItem(t *testing.T) {
	listingID := uuid.New()

	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{
			name:     "valid item",
			body:     `{"listing_id":"` + listingID.String() + `","title":"1835 East India Company Rupee","unit_price":"2000","quantity":2,"stock_on_hand":5}`,
			wantCode: http.StatusNoContent,
		},
		{
			name:     "malformed body",
			body:     `{not json`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid listing id",
			body:     `{"listing_id":"abc","unit_price":"2000","quantity":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid price",
			body:     `{"listing_id":"` + listingID.String() + `","unit_price":"two thousand","quantity":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "invalid currency",
			body:     `{"listing_id":"` + listingID.String() + `","unit_price":"2000","currency":"RUPEES","quantity":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "non-INR currency rejected",
			body:     `{"listing_id":"` + listingID.String() + `","unit_price":"50","currency":"USD","quantity":1}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "explicit INR accepted",
			body:     `{"listing_id":"` + listingID.String() + `","title":"1947 Half Rupee","unit_price":"2000","currency":"INR","quantity":2,"stock_on_hand":5}`,
			wantCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeCheckoutService{}
			rec := doRequest(t, svc, http.MethodPost, "/cart/items", "user-1", tt.body)
			assert.Equal(t, tt.wantCode, rec.Code)

			if tt.wantCode == http.StatusNoContent {
				require.NotNil(t, svc.addedItem)
				assert.Equal(t, listingID, svc.addedItem.ListingID)
				assert.Equal(t, int32(2), svc.addedItem.Quantity)
				assert.Equal(t, domain.INR, svc.addedItem.UnitPrice.Currency)
			}
		})
	}
}

func TestUpdateItem(t *testing.T) {
	listingID := uuid.New()

	t.Run("found", func(t *testing.T) {
		svc := &fakeCheckoutService{updateFound: true}
		rec := doRequest(t, svc, http.MethodPatch, "/cart/items/"+listingID.String(), "user-1", `{"quantity":3}`)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, int32(3), svc.updatedQty)
	})

	t.Run("not in cart", func(t *testing.T) {
		rec := doRequest(t, &fakeCheckoutService{}, http.MethodPatch, "/cart/items/"+listingID.String(), "user-1", `{"quantity":3}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid listing id", func(t *testing.T) {
		rec := doRequest(t, &fakeCheckoutService{}, http.MethodPatch, "/cart/items/abc", "user-1", `{"quantity":3}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveItem(t *testing.T) {
	listingID := uuid.New()

	t.Run("found", func(t *testing.T) {
		rec := doRequest(t, &fakeCheckoutService{removeFound: true}, http.MethodDelete, "/cart/items/"+listingID.String(), "user-1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not in cart", func(t *testing.T) {
		rec := doRequest(t, &fakeCheckoutService{}, http.MethodDelete, "/cart/items/"+listingID.String(), "user-1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPlaceOrder(t *testing.T) {
	orderID := uuid.New()
	addressJSON := `{"full_name":"Asha Verma","phone":"+919876543210","line1":"12 MG Road","city":"Bengaluru","state":"Karnataka","postal_code":"560001"}`

	t.Run("created", func(t *testing.T) {
		svc := &fakeCheckoutService{
			items:        []domain.CartItem{{ListingID: uuid.New(), UnitPrice: inr("15000"), Quantity: 1}},
			placeOrderID: orderID,
		}

		rec := doRequest(t, svc, http.MethodPost, "/checkout/orders", "user-1",
			`{"idempotency_key":"chk-1","address":`+addressJSON+`}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, orderID.String(), body["order_id"])
		assert.Equal(t, "chk-1", svc.placeInput.IdempotencyKey)
		assert.Len(t, svc.placeInput.Items, 1)
	})

	t.Run("invalid address", func(t *testing.T) {
		svc := &fakeCheckoutService{
			placeErr: &domain.ValidationError{MissingFields: []string{"city", "state"}},
		}

		rec := doRequest(t, svc, http.MethodPost, "/checkout/orders", "user-1", `{"address":{}}`)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, []any{"city", "state"}, body["missing_fields"])
	})

	t.Run("empty cart", func(t *testing.T) {
		svc := &fakeCheckoutService{placeErr: service.ErrEmptyCart}
		rec := doRequest(t, svc, http.MethodPost, "/checkout/orders", "user-1", `{"address":`+addressJSON+`}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestPay(t *testing.T) {
	orderID := uuid.New()
	payPath := "/checkout/orders/" + orderID.String() + "/payment"

	t.Run("approved", func(t *testing.T) {
		svc := &fakeCheckoutService{
			payResp: domain.PaymentResponse{
				Success:       true,
				TransactionID: "txn-1",
				Method:        domain.PaymentMethodUPI,
			},
		}

		rec := doRequest(t, svc, http.MethodPost, payPath, "user-1",
			`{"method":"upi","customer_email":"asha@example.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "txn-1", body["transaction_id"])
		assert.Equal(t, orderID, svc.payOrderID)
		assert.Equal(t, domain.PaymentMethodUPI, svc.payInput.Method)
	})

	t.Run("declined", func(t *testing.T) {
		svc := &fakeCheckoutService{
			payResp: domain.PaymentResponse{
				Success: false,
				Message: "insufficient funds",
				Method:  domain.PaymentMethodCard,
			},
		}

		rec := doRequest(t, svc, http.MethodPost, payPath, "user-1", `{"method":"card","token":"pm_123"}`)
		require.Equal(t, http.StatusPaymentRequired, rec.Code)

		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "insufficient funds", body["message"])
	})

	t.Run("unknown method rejected before dispatch", func(t *testing.T) {
		rec := doRequest(t, &fakeCheckoutService{}, http.MethodPost, payPath, "user-1", `{"method":"cheque"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("provider fault", func(t *testing.T) {
		svc := &fakeCheckoutService{payErr: payment.ErrPaymentProcessing}
		rec := doRequest(t, svc, http.MethodPost, payPath, "user-1", `{"method":"upi"}`)
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})

	t.Run("already paid", func(t *testing.T) {
		svc := &fakeCheckoutService{payErr: service.ErrOrderAlreadyPaid}
		rec := doRequest(t, svc, http.MethodPost, payPath, "user-1", `{"method":"upi"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown order", func(t *testing.T) {
		svc := &fakeCheckoutService{payErr: repository.ErrNotFound}
		rec := doRequest(t, svc, http.MethodPost, payPath, "user-1", `{"method":"upi"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestListOrders(t *testing.T) {
	svc := &fakeCheckoutService{
		orders: []domain.Order{{
			ID:      uuid.New(),
			OwnerID: "user-1",
			Total:   inr("17700"),
			Status:  domain.PaymentStatusCompleted,
		}},
	}

	rec := doRequest(t, svc, http.MethodGet, "/orders", "user-1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Len(t, body["orders"], 1)
}

func TestHealth(t *testing.T) {
	rec := doRequest(t, &fakeCheckoutService{}, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
