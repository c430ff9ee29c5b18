package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
)

type EnrollmentRepo struct{ db *gorm.DB }

func NewEnrollmentRepo(db *gorm.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db}
}

func (r *EnrollmentRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Enrollment{}, &domain.Payment{})
}

// CreateAttempt creates a fresh enrollment (and its pending payment, when one
// is supplied) in a txn that prevents two concurrent requests for the same
// (user, tour) from both succeeding. Candidate live rows are locked and
// re-checked; when both transactions find nothing to lock, the partial
// unique index on (user_id, tour_id) rejects the second insert. Either way
// the loser gets ErrLiveAttempt.
func (r *EnrollmentRepo) CreateAttempt(ctx context.Context, e *domain.Enrollment, p *domain.Payment) error {
	now := time.Now().UTC()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Enrollment
		err := tx.Model(&domain.Enrollment{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND tour_id = ?", e.UserID, e.TourID).
			Where("expires_at IS NULL OR expires_at > ?", now).
			Take(&existing).Error

		if err == nil {
			return domain.ErrLiveAttempt
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if err := tx.Create(e).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrLiveAttempt
			}
			return err
		}
		if p != nil {
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			p.EnrollmentID = e.ID
			return tx.Create(p).Error
		}
		return nil
	})
}

func (r *EnrollmentRepo) ByID(ctx context.Context, id string) (*domain.Enrollment, error) {
	var e domain.Enrollment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

// ForUserTour returns the full attempt history for the pair, newest first.
func (r *EnrollmentRepo) ForUserTour(ctx context.Context, userID, tourID string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tour_id = ?", userID, tourID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *EnrollmentRepo) ForUser(ctx context.Context, userID string) ([]domain.Enrollment, error) {
	var out []domain.Enrollment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// Transition moves an enrollment from one status to another under a row lock.
// expiresAt, when given, is stamped only if the row has none yet; an existing
// expiry is never moved. ErrStatusChanged means the row was no longer in the
// expected source status.
func (r *EnrollmentRepo) Transition(ctx context.Context, id string, from, to domain.EnrollmentStatus, expiresAt *time.Time) (*domain.Enrollment, error) {
	var e domain.Enrollment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&e, "id = ?", id).Error; err != nil {
			return translate(err)
		}
		if e.Status != from {
			return domain.ErrStatusChanged
		}
		e.Status = to
		if expiresAt != nil && e.ExpiresAt == nil {
			e.ExpiresAt = expiresAt
		}
		return tx.Save(&e).Error
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
