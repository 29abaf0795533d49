package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the append-only record of a completed payment. At most one
// transaction ever exists per booking; it is inserted in the same atomic unit
// as the booking's paid transition.
type Transaction struct {
	ID          string          `json:"id"`
	BookingID   string          `json:"booking_id"`
	Amount      decimal.Decimal `json:"amount"`
	ExternalRef string          `json:"external_ref"`
	Created     time.Time       `json:"created"`
}
