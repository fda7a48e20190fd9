package domain

import (
	"time"

	"github.com/google/uuid"
)

// CartItem carries a denormalized snapshot of the referenced listing,
// so totals reflect the price at the time the cart was loaded.
type CartItem struct {
	OwnerID     string
	ListingID   uuid.UUID
	Title       string
	UnitPrice   Money
	ImageURL    string
	Quantity    int32
	StockOnHand int32

	CreatedAt time.Time
}

type Cart struct {
	OwnerID string
	Items   []CartItem
}
