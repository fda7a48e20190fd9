package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/v-23-69/coinkart/internal/api/handlers"
	"github.com/v-23-69/coinkart/internal/api/middleware"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP router for the checkout service.
func NewRouter(svc handlers.CheckoutService, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(logger))

	h := handlers.NewCheckoutHandler(svc, logger)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Post("/items", h.AddItem)
		r.Patch("/items/{listingID}", h.UpdateItem)
		r.Delete("/items/{listingID}", h.RemoveItem)
	})

	r.Route("/checkout", func(r chi.Router) {
		r.Post("/orders", h.PlaceOrder)
		r.Post("/orders/{orderID}/payment", h.Pay)
	})

	r.Get("/orders", h.ListOrders)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
