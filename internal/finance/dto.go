package finance

import "time"

// RecordIncomingRequest is the payload for a credit entry.
type RecordIncomingRequest struct {
	Source        IncomingSource `json:"source" validate:"required"`
	Amount        float64        `json:"amount" validate:"required,gte=0"`
	EntryDate     time.Time      `json:"entry_date" validate:"required"`
	PaymentMethod PaymentMethod  `json:"payment_method" validate:"required"`
	CounterpartID *int64         `json:"counterpart_id"`
	Description   string         `json:"description"`
}

// RecordOutgoingRequest is the payload for a debit entry.
type RecordOutgoingRequest struct {
	Category      OutgoingCategory `json:"category" validate:"required"`
	Amount        float64          `json:"amount" validate:"required,gte=0"`
	EntryDate     time.Time        `json:"entry_date" validate:"required"`
	PaymentMethod PaymentMethod    `json:"payment_method" validate:"required"`
	CounterpartID *int64           `json:"counterpart_id"`
	Description   string           `json:"description"`
}
