package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
)

type TourRepo struct{ db *gorm.DB }

func NewTourRepo(db *gorm.DB) *TourRepo {
	return &TourRepo{db: db}
}

func (r *TourRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Tour{}, &domain.Waypoint{})
}

func (r *TourRepo) TourByID(ctx context.Context, id string) (*domain.Tour, error) {
	var t domain.Tour
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

func (r *TourRepo) WaypointByID(ctx context.Context, id string) (*domain.Waypoint, error) {
	var w domain.Waypoint
	if err := r.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &w, nil
}

func (r *TourRepo) WaypointsForTour(ctx context.Context, tourID string) ([]domain.Waypoint, error) {
	var out []domain.Waypoint
	err := r.db.WithContext(ctx).
		Where("tour_id = ?", tourID).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

// CountWaypoints counts live rows. The publish gate must not trust a cached
// counter on the tour.
func (r *TourRepo) CountWaypoints(ctx context.Context, tourID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Waypoint{}).
		Where("tour_id = ?", tourID).
		Count(&n).Error
	return n, err
}

func (r *TourRepo) SetTourPublished(ctx context.Context, id string, published bool) error {
	return r.db.WithContext(ctx).Model(&domain.Tour{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

func (r *TourRepo) SetWaypointPublished(ctx context.Context, id string, published bool) error {
	return r.db.WithContext(ctx).Model(&domain.Waypoint{}).
		Where("id = ?", id).
		Update("is_published", published).Error
}

// IncrementEnrollments bumps the display counter. Never used for access
// decisions.
func (r *TourRepo) IncrementEnrollments(ctx context.Context, tourID string) error {
	return r.db.WithContext(ctx).Model(&domain.Tour{}).
		Where("id = ?", tourID).
		Update("enrollments_count", gorm.Expr("enrollments_count + 1")).Error
}
