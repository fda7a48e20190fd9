package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a committed purchase intent, created before payment confirmation.
// Total, address and item snapshots are frozen at creation time and never
// recomputed, later listing edits do not alter past orders.
type Order struct {
	ID             uuid.UUID
	OwnerID        string
	IdempotencyKey string
	Total          Money
	Address        ShippingAddress
	Items          []OrderItem
	Status         PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderItem struct {
	ListingID uuid.UUID
	Title     string
	Quantity  int32
	UnitPrice Money
}

// NewOrderItems copies cart items into order line-item snapshots.
func NewOrderItems(items []CartItem) []OrderItem {
	result := make([]OrderItem, 0, len(items))
	for _, item := range items {
		result = append(result, OrderItem{
			ListingID: item.ListingID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return result
}
