package orders

import "time"

// CreateOrderRequest is the payload for placing an order.
type CreateOrderRequest struct {
	CustomerID   int64     `json:"customer_id"`
	Quantity     int       `json:"quantity" validate:"required,min=1"`
	DeliveryDate time.Time `json:"delivery_date" validate:"required"`
	Address      string    `json:"address" validate:"required"`
	Notes        string    `json:"notes"`
}

// AssignOrderRequest names the supplier taking the order.
type AssignOrderRequest struct {
	SupplierID int64 `json:"supplier_id" validate:"required"`
}

// ListOrdersRequest filters order listings.
type ListOrdersRequest struct {
	CustomerID *int64
	SupplierID *int64
	Status     *OrderStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
