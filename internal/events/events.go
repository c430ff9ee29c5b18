package events

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	RKEnrollmentCreated = "enrollment.created"
	RKEnrollmentStarted = "enrollment.started"

	RKPaymentPaid   = "payment.paid"
	RKPaymentFailed = "payment.failed"
)

// Envelope is the versioned wrapper every event travels in.
type Envelope struct {
	Event      string          `json:"event"`
	Version    int             `json:"version"`
	OccurredAt string          `json:"occurred_at"` // RFC3339
	Data       json.RawMessage `json:"data"`
}

func Wrap(key string, payload any) (Envelope, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", key, err)
	}
	return Envelope{
		Event:      key,
		Version:    1,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Data:       b,
	}, nil
}

type EnrollmentCreated struct {
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	TourID       string `json:"tour_id"`
	TourName     string `json:"tour_name"`
}

type EnrollmentStarted struct {
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	TourName     string `json:"tour_name"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
}

type PaymentPaid struct {
	PaymentID    string `json:"payment_id"`
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type PaymentFailed struct {
	PaymentID    string `json:"payment_id"`
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	Reason       string `json:"reason,omitempty"`
}

func MustUnmarshal[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
