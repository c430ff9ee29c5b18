package service

import (
	"context"
	"errors"
	"log"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/internal/events"
	"github.com/GradMERN/e-guide-Backend/internal/gateway"
)

// ReconcileSvc applies verified gateway webhook events to the payment ledger
// and entitlement store. It is the only component allowed to settle a
// payment or activate an enrollment; everything it does is idempotent, so
// duplicate and out-of-order deliveries are harmless.
type ReconcileSvc struct {
	store ReconcileStore
	pub   EventPublisher
}

func NewReconcileSvc(store ReconcileStore, pub EventPublisher) *ReconcileSvc {
	return &ReconcileSvc{store: store, pub: pub}
}

// HandleEvent applies one already-authenticated event. Unknown event keys
// and charges that match no ledger row are acknowledged without mutation;
// only storage failures propagate, so the gateway retries exactly those.
func (s *ReconcileSvc) HandleEvent(ctx context.Context, ev gateway.Event) error {
	switch ev.Key {
	case gateway.EventChargeComplete:
		ch, err := ev.Charge()
		if err != nil {
			log.Printf("[reconcile] bad charge payload on %s: %v", ev.ID, err)
			return nil
		}
		if ch.Status == gateway.ChargeSuccessful {
			return s.applyPaid(ctx, ch)
		}
		return s.applyFailed(ctx, ch)

	case gateway.EventChargeRefunded:
		ch, err := ev.Charge()
		if err != nil {
			log.Printf("[reconcile] bad charge payload on %s: %v", ev.ID, err)
			return nil
		}
		out, err := s.store.ApplyRefunded(ctx, ch.ID, ch.Metadata["enrollment_id"])
		if err != nil {
			return s.swallowUnknownRef(ev, err)
		}
		if out.Applied {
			log.Printf("[reconcile] payment %s refunded", out.Payment.ID)
		}
		return nil

	default:
		// Forward compatibility: ack anything we do not understand.
		log.Printf("[reconcile] skip event key=%s", ev.Key)
		return nil
	}
}

func (s *ReconcileSvc) applyPaid(ctx context.Context, ch gateway.ChargeData) error {
	out, err := s.store.ApplyPaid(ctx, ch.ID, ch.Metadata["enrollment_id"])
	if err != nil {
		return s.swallowUnknownRef(gateway.Event{Key: gateway.EventChargeComplete, ID: ch.ID}, err)
	}
	if !out.Applied {
		return nil // duplicate delivery
	}
	env, _ := events.Wrap(events.RKPaymentPaid, events.PaymentPaid{
		PaymentID:    out.Payment.ID,
		EnrollmentID: out.Payment.EnrollmentID,
		UserID:       out.Payment.UserID,
		Amount:       out.Payment.Amount,
		Currency:     out.Payment.Currency,
	})
	_ = s.pub.PublishJSON(ctx, events.RKPaymentPaid, env)
	return nil
}

func (s *ReconcileSvc) applyFailed(ctx context.Context, ch gateway.ChargeData) error {
	out, err := s.store.ApplyFailed(ctx, ch.ID, ch.Metadata["enrollment_id"])
	if err != nil {
		return s.swallowUnknownRef(gateway.Event{Key: gateway.EventChargeComplete, ID: ch.ID}, err)
	}
	if !out.Applied {
		return nil // stale failure for a settled payment, or a replay
	}
	env, _ := events.Wrap(events.RKPaymentFailed, events.PaymentFailed{
		PaymentID:    out.Payment.ID,
		EnrollmentID: out.Payment.EnrollmentID,
		UserID:       out.Payment.UserID,
		Reason:       ch.FailureCode,
	})
	_ = s.pub.PublishJSON(ctx, events.RKPaymentFailed, env)
	return nil
}

// swallowUnknownRef acks events whose charge matches nothing in the ledger
// (e.g. a charge created out-of-band against the same account); retrying
// them would never converge.
func (s *ReconcileSvc) swallowUnknownRef(ev gateway.Event, err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		log.Printf("[reconcile] no payment for event id=%s key=%s", ev.ID, ev.Key)
		return nil
	}
	return err
}
