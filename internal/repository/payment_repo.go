package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
)

type PaymentRepo struct{ db *gorm.DB }

func NewPaymentRepo(db *gorm.DB) *PaymentRepo {
	return &PaymentRepo{db: db}
}

func (r *PaymentRepo) Create(ctx context.Context, p *domain.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// CurrentForEnrollment returns the newest payment for the attempt; an
// enrollment has at most one current payment, older rows belong to prior
// attempts.
func (r *PaymentRepo) CurrentForEnrollment(ctx context.Context, enrollmentID string) (*domain.Payment, error) {
	var p domain.Payment
	err := r.db.WithContext(ctx).
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *PaymentRepo) ForUser(ctx context.Context, userID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Reprovision points the payment at a fresh gateway charge and resets it to
// pending. Used when a new charge is created for a retried checkout. Only
// pending and failed rows qualify; a checkout retry that races a success
// webhook must not re-open a settled payment, so a miss on the guard is
// surfaced as ErrStatusChanged.
func (r *PaymentRepo) Reprovision(ctx context.Context, paymentID, externalRef string) error {
	res := r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status IN ?", paymentID,
			[]domain.PaymentStatus{domain.PaymentPending, domain.PaymentFailed}).
		Updates(map[string]any{"external_ref": externalRef, "status": domain.PaymentPending})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrStatusChanged
	}
	return nil
}

func (r *PaymentRepo) MarkFailed(ctx context.Context, paymentID string) error {
	return r.db.WithContext(ctx).Model(&domain.Payment{}).
		Where("id = ? AND status = ?", paymentID, domain.PaymentPending).
		Update("status", domain.PaymentFailed).Error
}

// lockByRef locates the payment for a gateway event inside the reconcile txn.
// The external ref is the primary key into the ledger; the round-tripped
// enrollment id metadata is the fallback when the ref does not match (e.g.
// the charge row was reprovisioned concurrently).
func lockByRef(tx *gorm.DB, externalRef, enrollmentID string) (*domain.Payment, error) {
	var p domain.Payment
	if externalRef != "" {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("external_ref = ?", externalRef).
			Take(&p).Error
		if err == nil {
			return &p, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	if enrollmentID == "" {
		return nil, domain.ErrNotFound
	}
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("enrollment_id = ?", enrollmentID).
		Order("created_at DESC").
		Take(&p).Error
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// ApplyPaid settles a payment and activates its enrollment in one txn.
// Replays and out-of-order deliveries fall through the status guards as
// no-ops, which is what makes duplicate webhook delivery safe.
func (r *PaymentRepo) ApplyPaid(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	out := &domain.ReconcileOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockByRef(tx, externalRef, enrollmentID)
		if err != nil {
			return err
		}
		out.Payment = p

		var e domain.Enrollment
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", p.EnrollmentID).Error; err != nil {
			return translate(err)
		}
		out.Enrollment = &e

		if p.Status == domain.PaymentPaid || p.Status == domain.PaymentRefunded {
			return nil // already settled
		}

		p.Status = domain.PaymentPaid
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		// Activation only ever lifts a pending attempt; a started enrollment
		// is never knocked back to active by a late event.
		if e.Status == domain.EnrollmentPending {
			e.Status = domain.EnrollmentActive
			if err := tx.Save(&e).Error; err != nil {
				return err
			}
		}
		out.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyFailed marks a pending payment failed. Paid is terminal against
// failure: a stale failure event for a settled payment is a no-op. The
// enrollment is left untouched so the attempt stays retryable.
func (r *PaymentRepo) ApplyFailed(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	out := &domain.ReconcileOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockByRef(tx, externalRef, enrollmentID)
		if err != nil {
			return err
		}
		out.Payment = p
		if p.Status != domain.PaymentPending {
			return nil
		}
		p.Status = domain.PaymentFailed
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyRefunded moves paid to refunded, the only legal exit from paid.
func (r *PaymentRepo) ApplyRefunded(ctx context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	out := &domain.ReconcileOutcome{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := lockByRef(tx, externalRef, enrollmentID)
		if err != nil {
			return err
		}
		out.Payment = p
		if p.Status != domain.PaymentPaid {
			return nil
		}
		p.Status = domain.PaymentRefunded
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out.Applied = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
