package service

import (
	"context"
	"time"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/internal/gateway"
)

// Store interfaces the services depend on. The gorm repositories implement
// them; tests plug in in-memory fakes.

type EnrollmentStore interface {
	CreateAttempt(ctx context.Context, e *domain.Enrollment, p *domain.Payment) error
	ByID(ctx context.Context, id string) (*domain.Enrollment, error)
	ForUserTour(ctx context.Context, userID, tourID string) ([]domain.Enrollment, error)
	ForUser(ctx context.Context, userID string) ([]domain.Enrollment, error)
	Transition(ctx context.Context, id string, from, to domain.EnrollmentStatus, expiresAt *time.Time) (*domain.Enrollment, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *domain.Payment) error
	CurrentForEnrollment(ctx context.Context, enrollmentID string) (*domain.Payment, error)
	Reprovision(ctx context.Context, paymentID, externalRef string) error
	MarkFailed(ctx context.Context, paymentID string) error
}

// ReconcileStore is the single writer of paid/failed/refunded payment states
// and of pending→active enrollment activation. Each Apply* call is one
// atomic, idempotent read-modify-write keyed by the gateway's external ref
// (with the enrollment id as fallback).
type ReconcileStore interface {
	ApplyPaid(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error)
	ApplyFailed(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error)
	ApplyRefunded(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error)
}

type TourStore interface {
	TourByID(ctx context.Context, id string) (*domain.Tour, error)
	WaypointByID(ctx context.Context, id string) (*domain.Waypoint, error)
	WaypointsForTour(ctx context.Context, tourID string) ([]domain.Waypoint, error)
	CountWaypoints(ctx context.Context, tourID string) (int64, error)
	SetTourPublished(ctx context.Context, id string, published bool) error
	SetWaypointPublished(ctx context.Context, id string, published bool) error
	IncrementEnrollments(ctx context.Context, tourID string) error
}

// PaymentGateway creates charges with the external provider. nil means the
// platform runs in no-payment mode.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, in gateway.ChargeInput) (*gateway.Charge, error)
}

// EventPublisher fans out informational events. Failures are deliberately
// ignored by callers: notifications never roll back an enrollment.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}
