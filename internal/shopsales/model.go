package shopsales

import "time"

// Sale is one over-the-counter shop transaction. The unit price is frozen at
// the moment of sale; later price changes never rewrite history.
type Sale struct {
	ID             int64     `json:"id"`
	ShopkeeperID   int64     `json:"shopkeeper_id"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TotalAmount    float64   `json:"total_amount"`
	CashReceived   float64   `json:"cash_received"`
	ChangeReturned float64   `json:"change_returned"`
	SaleDate       time.Time `json:"sale_date"`
	CreatedAt      time.Time `json:"created_at"`
}

// DailySummary aggregates one shopkeeper's day.
type DailySummary struct {
	Date                 time.Time `json:"date"`
	ShopkeeperID         int64     `json:"shopkeeper_id"`
	TotalSales           float64   `json:"total_sales"`
	TotalQuantity        int       `json:"total_quantity"`
	NumberOfTransactions int       `json:"number_of_transactions"`
	Sales                []Sale    `json:"sales"`
}

// RecordSaleRequest is the payload for registering a sale. The server looks up
// the unit price; clients never set it.
type RecordSaleRequest struct {
	Quantity     int     `json:"quantity" validate:"required,min=1"`
	CashReceived float64 `json:"cash_received" validate:"required,gte=0"`
}

// ListFilters narrows sale listings.
type ListFilters struct {
	ShopkeeperID *int64
	DateFrom     *time.Time
	DateTo       *time.Time
	Page         int
	PageSize     int
}
