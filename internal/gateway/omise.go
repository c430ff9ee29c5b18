package gateway

import (
	"context"
	"fmt"
	"time"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
)

// ChargeInput carries everything the gateway needs for one charge. The three
// ids round-trip as charge metadata and come back on webhook events, giving
// the reconciler a fallback correlation key.
type ChargeInput struct {
	Amount    int64
	Currency  string
	ReturnURI string

	EnrollmentID string
	UserID       string
	TourID       string
}

// Charge is the provider-neutral result of charge creation. AuthorizeURI is
// the client handle the caller follows to complete payment.
type Charge struct {
	Ref          string
	Status       string
	AuthorizeURI string
}

type Omise struct {
	client *omise.Client
}

// NewOmise builds the gateway client. The timeout bounds every outbound call
// so enrollment creation fails fast instead of hanging on the provider.
func NewOmise(publicKey, secretKey string, timeout time.Duration) (*Omise, error) {
	c, err := omise.NewClient(publicKey, secretKey)
	if err != nil {
		return nil, err
	}
	c.Timeout = timeout
	return &Omise{client: c}, nil
}

func (o *Omise) CreateCharge(ctx context.Context, in ChargeInput) (*Charge, error) {
	ch := &omise.Charge{}
	req := &operations.CreateCharge{
		Amount:    in.Amount,
		Currency:  in.Currency,
		ReturnURI: in.ReturnURI,
		Metadata: map[string]any{
			"enrollment_id": in.EnrollmentID,
			"user_id":       in.UserID,
			"tour_id":       in.TourID,
		},
	}
	if err := o.client.Do(ch, req); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}
	return &Charge{
		Ref:          ch.ID,
		Status:       string(ch.Status),
		AuthorizeURI: ch.AuthorizeURI,
	}, nil
}
