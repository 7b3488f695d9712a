package finance

import "time"

// IncomingSource classifies money entering the business.
type IncomingSource string

const (
	SourceCustomerPayment IncomingSource = "customer_payment"
	SourceShopSale        IncomingSource = "shop_sale"
	SourceAdvance         IncomingSource = "advance"
	SourceOther           IncomingSource = "other"
)

// ValidSource reports whether s is a known incoming source.
func ValidSource(s IncomingSource) bool {
	switch s {
	case SourceCustomerPayment, SourceShopSale, SourceAdvance, SourceOther:
		return true
	}
	return false
}

// OutgoingCategory classifies money leaving the business.
type OutgoingCategory string

const (
	CategorySalary      OutgoingCategory = "salary"
	CategoryFuel        OutgoingCategory = "fuel"
	CategoryMaintenance OutgoingCategory = "maintenance"
	CategoryPurchase    OutgoingCategory = "purchase"
	CategoryRent        OutgoingCategory = "rent"
	CategoryUtility     OutgoingCategory = "utility"
	CategoryOtherOut    OutgoingCategory = "other"
)

// ValidCategory reports whether c is a known outgoing category.
func ValidCategory(c OutgoingCategory) bool {
	switch c {
	case CategorySalary, CategoryFuel, CategoryMaintenance, CategoryPurchase, CategoryRent, CategoryUtility, CategoryOtherOut:
		return true
	}
	return false
}

// PaymentMethod is how money changed hands.
type PaymentMethod string

const (
	MethodCash   PaymentMethod = "cash"
	MethodBank   PaymentMethod = "bank"
	MethodMobile PaymentMethod = "mobile"
)

// ValidMethod reports whether m is a known payment method.
func ValidMethod(m PaymentMethod) bool {
	switch m {
	case MethodCash, MethodBank, MethodMobile:
		return true
	}
	return false
}

// Incoming is an append-only credit entry. Corrections are reversing entries.
type Incoming struct {
	ID            int64          `json:"id"`
	Source        IncomingSource `json:"source"`
	Amount        float64        `json:"amount"`
	EntryDate     time.Time      `json:"entry_date"`
	PaymentMethod PaymentMethod  `json:"payment_method"`
	CounterpartID *int64         `json:"counterpart_id,omitempty"`
	Description   string         `json:"description,omitempty"`
	RecordedBy    int64          `json:"recorded_by"`
	CreatedAt     time.Time      `json:"created_at"`
}

// Outgoing is an append-only debit entry.
type Outgoing struct {
	ID            int64            `json:"id"`
	Category      OutgoingCategory `json:"category"`
	Amount        float64          `json:"amount"`
	EntryDate     time.Time        `json:"entry_date"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	CounterpartID *int64           `json:"counterpart_id,omitempty"`
	Description   string           `json:"description,omitempty"`
	RecordedBy    int64            `json:"recorded_by"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Report is a date-range summary of the ledger.
type Report struct {
	From           time.Time                    `json:"from"`
	To             time.Time                    `json:"to"`
	TotalIncoming  float64                      `json:"total_incoming"`
	TotalOutgoing  float64                      `json:"total_outgoing"`
	NetProfit      float64                      `json:"net_profit"`
	IncomingBySrc  map[IncomingSource]float64   `json:"incoming_by_source"`
	OutgoingByCat  map[OutgoingCategory]float64 `json:"outgoing_by_category"`
	AmountByMethod map[PaymentMethod]float64    `json:"incoming_by_method"`
}

// ListFilters narrows ledger listings.
type ListFilters struct {
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}
