package domain

import "time"

type PaymentState string

const (
	PaymentStatePending  PaymentState = "pending"
	PaymentStateVerified PaymentState = "verified"
	PaymentStateFailed   PaymentState = "failed"
)

// Payment is one ledger record per booking payment attempt, made through a
// mobile financial service. Verification flips the booking's payment mirror.
type Payment struct {
	ID             int64        `json:"id"`
	BookingID      int64        `json:"booking_id" gorm:"index"`
	CustomerID     int64        `json:"customer_id" gorm:"index"`
	Amount         float64      `json:"amount"`
	Provider       string       `json:"provider"`      // MFS name, e.g. "bkash"
	SenderNumber   string       `json:"sender_number"` // wallet the money came from
	TransactionRef string       `json:"transaction_ref" gorm:"uniqueIndex;size:64"`
	Status         PaymentState `json:"status" gorm:"size:10"`
	VerifiedAt     *time.Time   `json:"verified_at,omitempty"`
	VerifiedBy     *int64       `json:"verified_by,omitempty"`
	FailureReason  string       `json:"failure_reason,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}
