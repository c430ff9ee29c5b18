package service

import (
	"context"
	"sort"
	"time"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/pkg/auth"
)

// Tier is the visibility level a caller gets on tour content.
type Tier int

const (
	// TierTitleOnly: published waypoints listed by title, nothing more.
	TierTitleOnly Tier = iota
	// TierPublishedFull: full detail, published waypoints only.
	TierPublishedFull
	// TierFull: everything, including unpublished waypoints.
	TierFull
)

func (t Tier) String() string {
	switch t {
	case TierFull:
		return "full"
	case TierPublishedFull:
		return "published_full"
	default:
		return "title_only"
	}
}

// Caller identifies the requester. A zero UserID means anonymous.
type Caller struct {
	UserID string
	Role   string
}

// AccessSvc decides what a caller may see of a tour. The decision is
// recomputed on every read because usability depends on wall-clock expiry.
type AccessSvc struct {
	enrollments EnrollmentStore
	now         func() time.Time
}

func NewAccessSvc(e EnrollmentStore) *AccessSvc {
	return &AccessSvc{enrollments: e, now: func() time.Time { return time.Now().UTC() }}
}

// ResolveVisibility applies the access ladder: admin, owning guide, usable
// enrollment, everyone else. First match wins.
func (s *AccessSvc) ResolveVisibility(ctx context.Context, caller Caller, tour *domain.Tour) (Tier, error) {
	if caller.Role == auth.RoleAdmin {
		return TierFull, nil
	}
	if caller.UserID != "" && caller.UserID == tour.GuideID {
		return TierFull, nil
	}
	if caller.UserID != "" {
		attempts, err := s.enrollments.ForUserTour(ctx, caller.UserID, tour.ID)
		if err != nil {
			return TierTitleOnly, err
		}
		now := s.now()
		if best := BestEnrollment(attempts, now); best != nil && best.Usable(now) {
			return TierPublishedFull, nil
		}
	}
	return TierTitleOnly, nil
}

// BestEnrollment picks the authoritative attempt out of a (user, tour)
// history: a live started/active one first, then any live one, then the most
// recently expired for read-only display. Never grants access by itself;
// the caller still checks Usable.
func BestEnrollment(list []domain.Enrollment, now time.Time) *domain.Enrollment {
	if len(list) == 0 {
		return nil
	}
	sorted := make([]*domain.Enrollment, len(list))
	for i := range list {
		sorted[i] = &list[i]
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return expiryOf(sorted[i]).After(expiryOf(sorted[j]))
	})

	for _, e := range sorted {
		if !e.Expired(now) && (e.Status == domain.EnrollmentStarted || e.Status == domain.EnrollmentActive) {
			return e
		}
	}
	for _, e := range sorted {
		if !e.Expired(now) {
			return e
		}
	}
	return sorted[0]
}

func expiryOf(e *domain.Enrollment) time.Time {
	if e.ExpiresAt == nil {
		return time.Time{}
	}
	return *e.ExpiresAt
}
