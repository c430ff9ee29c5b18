package domain

import "time"

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// Payment is one ledger entry for an enrollment attempt. The amount is a
// snapshot of the tour price at request time, in the smallest currency unit;
// later price changes never touch an in-flight payment. ExternalRef is the
// gateway's charge id and is the primary reconciliation key.
type Payment struct {
	ID           string        `gorm:"primaryKey" json:"id"`
	UserID       string        `gorm:"index" json:"user_id"`
	EnrollmentID string        `gorm:"index" json:"enrollment_id"`
	TourID       string        `gorm:"index" json:"tour_id"`
	Amount       int64         `json:"amount"`
	Currency     string        `json:"currency"`
	ExternalRef  string        `gorm:"index" json:"-"`
	Status       PaymentStatus `gorm:"index" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ReconcileOutcome reports what a gateway event did to the ledger. Applied
// is false when the event was a duplicate or arrived out of order and the
// records were already in (or past) the target state.
type ReconcileOutcome struct {
	Payment    *Payment
	Enrollment *Enrollment
	Applied    bool
}
