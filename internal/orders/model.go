package orders

import "time"

// OrderStatus is the lifecycle state of a water order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAssigned  OrderStatus = "assigned"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Order is a customer's request for a water delivery.
type Order struct {
	ID           int64       `json:"id"`
	CustomerID   int64       `json:"customer_id"`
	Quantity     int         `json:"quantity"`
	OrderDate    time.Time   `json:"order_date"`
	DeliveryDate time.Time   `json:"delivery_date"`
	Status       OrderStatus `json:"status"`
	SupplierID   *int64      `json:"supplier_id,omitempty"`
	Address      string      `json:"address"`
	Notes        string      `json:"notes,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderWithDetails enriches an order with display names for listings.
type OrderWithDetails struct {
	Order
	CustomerName string  `json:"customer_name"`
	SupplierName *string `json:"supplier_name,omitempty"`
}
