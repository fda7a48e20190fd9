package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/v-23-69/coinkart/internal/domain"
	"github.com/v-23-69/coinkart/internal/payment"
	"github.com/v-23-69/coinkart/internal/repository"
	"github.com/v-23-69/coinkart/internal/service"
	"go.uber.org/zap"
	"golang.org/x/text/currency"
)

// userIDHeader carries the authenticated user, set by the gateway in front of
// this service.
const userIDHeader = "X-User-ID"

// CheckoutService is the slice of the service layer the HTTP handlers need.
type CheckoutService interface {
	GetCartItems(ctx context.Context, userID string) ([]domain.CartItem, error)
	GetCartSummary(ctx context.Context, userID string) (service.CartSummary, error)
	AddCartItem(ctx context.Context, userID string, item domain.CartItem) error
	UpdateCartQuantity(ctx context.Context, userID string, listingID uuid.UUID, quantity int32) (bool, error)
	RemoveCartItem(ctx context.Context, userID string, listingID uuid.UUID) (bool, error)
	ListOrders(ctx context.Context, userID string) ([]domain.Order, error)
	PlaceOrder(ctx context.Context, userID string, input service.PlaceOrderInput) (uuid.UUID, error)
	Pay(ctx context.Context, userID string, orderID uuid.UUID, input service.PayInput) (domain.PaymentResponse, error)
}

// --- Request / Response DTOs ---

type moneyDTO struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

func toMoneyDTO(m domain.Money) moneyDTO {
	return moneyDTO{Amount: m.Amount.String(), Currency: m.Currency.String()}
}

type cartItemDTO struct {
	ListingID   string   `json:"listing_id"`
	Title       string   `json:"title"`
	UnitPrice   moneyDTO `json:"unit_price"`
	ImageURL    string   `json:"image_url,omitempty"`
	Quantity    int32    `json:"quantity"`
	StockOnHand int32    `json:"stock_on_hand"`
}

func toCartItemDTO(item domain.CartItem) cartItemDTO {
	return cartItemDTO{
		ListingID:   item.ListingID.String(),
		Title:       item.Title,
		UnitPrice:   toMoneyDTO(item.UnitPrice),
		ImageURL:    item.ImageURL,
		Quantity:    item.Quantity,
		StockOnHand: item.StockOnHand,
	}
}

type cartResponse struct {
	Items       []cartItemDTO `json:"items"`
	Subtotal    moneyDTO      `json:"subtotal"`
	Tax         moneyDTO      `json:"tax"`
	ShippingFee moneyDTO      `json:"shipping_fee"`
	Total       moneyDTO      `json:"total"`
}

type addItemRequest struct {
	ListingID   string `json:"listing_id"`
	Title       string `json:"title"`
	UnitPrice   string `json:"unit_price"`
	Currency    string `json:"currency,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	Quantity    int32  `json:"quantity"`
	StockOnHand int32  `json:"stock_on_hand"`
}

type updateQuantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type placeOrderRequest struct {
	IdempotencyKey string                 `json:"idempotency_key,omitempty"`
	Address        domain.ShippingAddress `json:"address"`
}

type placeOrderResponse struct {
	OrderID string `json:"order_id"`
}

type payRequest struct {
	Method        string `json:"method"`
	Token         string `json:"token,omitempty"`
	CustomerEmail string `json:"customer_email,omitempty"`
}

type paymentResponseDTO struct {
	Success       bool   `json:"success"`
	Message       string `json:"message,omitempty"`
	TransactionID string `json:"transaction_id,omitempty"`
	Method        string `json:"method"`
}

type orderItemDTO struct {
	ListingID string   `json:"listing_id"`
	Title     string   `json:"title"`
	Quantity  int32    `json:"quantity"`
	UnitPrice moneyDTO `json:"unit_price"`
}

type orderDTO struct {
	ID        string                 `json:"id"`
	Status    string                 `json:"status"`
	Total     moneyDTO               `json:"total"`
	Address   domain.ShippingAddress `json:"address"`
	Items     []orderItemDTO         `json:"items"`
	CreatedAt string                 `json:"created_at"`
}

func toOrderDTO(o domain.Order) orderDTO {
	items := make([]orderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemDTO{
			ListingID: item.ListingID.String(),
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: toMoneyDTO(item.UnitPrice),
		})
	}

	return orderDTO{
		ID:        o.ID.String(),
		Status:    string(o.Status),
		Total:     toMoneyDTO(o.Total),
		Address:   o.Address,
		Items:     items,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

type errorResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// --- Handler ---

type CheckoutHandler struct {
	svc    CheckoutService
	logger *zap.Logger
}

func NewCheckoutHandler(svc CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{svc: svc, logger: logger}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service and repository errors onto HTTP statuses. Unmapped
// errors become an opaque 500, the detail stays in the log.
func (h *CheckoutHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var valErr *domain.ValidationError

	switch {
	case errors.As(err, &valErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:         "invalid shipping address",
			MissingFields: valErr.MissingFields,
		})
	case errors.Is(err, service.ErrNotAuthenticated):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "not authenticated"})
	case errors.Is(err, service.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "cart is empty"})
	case errors.Is(err, service.ErrOrderAlreadyPaid):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "order already paid"})
	case errors.Is(err, payment.ErrUnsupportedMethod):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported payment method"})
	case errors.Is(err, payment.ErrPaymentProcessing):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: "payment provider unavailable"})
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(userIDHeader))
}

// GetCart handles GET /cart.
func (h *CheckoutHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetCartSummary(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	items := make([]cartItemDTO, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, toCartItemDTO(item))
	}

	writeJSON(w, http.StatusOK, cartResponse{
		Items:       items,
		Subtotal:    toMoneyDTO(summary.Subtotal),
		Tax:         toMoneyDTO(summary.Tax),
		ShippingFee: toMoneyDTO(summary.ShippingFee),
		Total:       toMoneyDTO(summary.Total),
	})
}

// AddItem handles POST /cart/items.
func (h *CheckoutHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid listing_id"})
		return
	}

	price, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid unit_price"})
		return
	}

	// Listings are priced in INR. Accepting a second currency here would let
	// carts mix currencies, which the pricing layer refuses to total.
	unit := domain.INR
	if req.Currency != "" {
		unit, err = currency.ParseISO(req.Currency)
		if err != nil || unit != domain.INR {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported currency, prices are in INR"})
			return
		}
	}

	item := domain.CartItem{
		ListingID:   listingID,
		Title:       req.Title,
		UnitPrice:   domain.Money{Amount: price, Currency: unit},
		ImageURL:    req.ImageURL,
		Quantity:    req.Quantity,
		StockOnHand: req.StockOnHand,
	}

	if err := h.svc.AddCartItem(r.Context(), userID(r), item); err != nil {
		h.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateItem handles PATCH /cart/items/{listingID}.
func (h *CheckoutHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid listing_id"})
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	found, err := h.svc.UpdateCartQuantity(r.Context(), userID(r), listingID, req.Quantity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RemoveItem handles DELETE /cart/items/{listingID}.
func (h *CheckoutHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "listingID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid listing_id"})
		return
	}

	found, err := h.svc.RemoveCartItem(r.Context(), userID(r), listingID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !found {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PlaceOrder handles POST /checkout/orders. The order is priced from the
// user's current cart, not from the request body.
func (h *CheckoutHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	uid := userID(r)

	items, err := h.svc.GetCartItems(r.Context(), uid)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	orderID, err := h.svc.PlaceOrder(r.Context(), uid, service.PlaceOrderInput{
		IdempotencyKey: req.IdempotencyKey,
		Address:        req.Address,
		Items:          items,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{OrderID: orderID.String()})
}

// Pay handles POST /checkout/orders/{orderID}/payment. A declined payment is
// a 402 with success=false, the order stays open for another attempt.
func (h *CheckoutHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid order id"})
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	method, err := domain.ToPaymentMethod(req.Method)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported payment method"})
		return
	}

	resp, err := h.svc.Pay(r.Context(), userID(r), orderID, service.PayInput{
		Method:        method,
		Token:         req.Token,
		CustomerEmail: req.CustomerEmail,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	code := http.StatusOK
	if !resp.Success {
		code = http.StatusPaymentRequired
	}

	writeJSON(w, code, paymentResponseDTO{
		Success:       resp.Success,
		Message:       resp.Message,
		TransactionID: resp.TransactionID,
		Method:        string(resp.Method),
	})
}

// ListOrders handles GET /orders.
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), userID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dtos := make([]orderDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, toOrderDTO(o))
	}

	writeJSON(w, http.StatusOK, map[string][]orderDTO{"orders": dtos})
}
