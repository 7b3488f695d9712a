package deliveries

import "time"

// DeliveryStatus is the lifecycle state of a delivery run.
type DeliveryStatus string

const (
	StatusPending    DeliveryStatus = "pending"
	StatusInProgress DeliveryStatus = "in_progress"
	StatusCompleted  DeliveryStatus = "completed"
	StatusCancelled  DeliveryStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Delivery tracks the fulfilment of an assigned order.
type Delivery struct {
	ID           int64          `json:"id"`
	OrderID      int64          `json:"order_id"`
	SupplierID   int64          `json:"supplier_id"`
	DeliveryDate time.Time      `json:"delivery_date"`
	Status       DeliveryStatus `json:"status"`
	Notes        string         `json:"notes,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// DeliveryWithDetails enriches a delivery with order and customer context.
type DeliveryWithDetails struct {
	Delivery
	CustomerID   int64  `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	Address      string `json:"address"`
	Quantity     int    `json:"quantity"`
	SupplierName string `json:"supplier_name"`
}

// ListFilters narrows delivery listings.
type ListFilters struct {
	SupplierID *int64
	CustomerID *int64
	Status     *DeliveryStatus
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}
