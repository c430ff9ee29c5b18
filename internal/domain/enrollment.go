package domain

import "time"

type EnrollmentStatus string

const (
	EnrollmentPending EnrollmentStatus = "pending"
	EnrollmentActive  EnrollmentStatus = "active"
	EnrollmentStarted EnrollmentStatus = "started"
)

// SessionWindow is how long a traveler can consume tour content after
// starting an enrollment. The countdown begins on the explicit start
// transition, not on payment confirmation.
const SessionWindow = 12 * time.Hour

// Enrollment is a single attempt by a user to gain access to a tour.
// A (user, tour) pair may accumulate several attempts over time; expired
// ones are kept as history and a fresh attempt is created instead of
// overwriting them.
// The partial unique index backs the one-live-attempt rule at the storage
// layer: two concurrent creations for the same pair cannot both commit while
// neither row has an expiry yet. Expired history rows fall outside it.
type Enrollment struct {
	ID        string           `gorm:"primaryKey" json:"id"`
	UserID    string           `gorm:"index:idx_enrollments_user_tour;uniqueIndex:uniq_enrollments_live,where:expires_at IS NULL" json:"user_id"`
	TourID    string           `gorm:"index:idx_enrollments_user_tour;uniqueIndex:uniq_enrollments_live,where:expires_at IS NULL" json:"tour_id"`
	Status    EnrollmentStatus `gorm:"index" json:"status"`
	ExpiresAt *time.Time       `json:"expires_at,omitempty"` // set once, never cleared
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (e *Enrollment) Expired(now time.Time) bool {
	return e.ExpiresAt != nil && !e.ExpiresAt.After(now)
}

// Usable reports whether the enrollment currently grants content access:
// it has been started and its session window has not run out.
func (e *Enrollment) Usable(now time.Time) bool {
	return e.Status == EnrollmentStarted && !e.Expired(now)
}

// Live reports whether this attempt still occupies the (user, tour) slot:
// a live attempt blocks creation of a fresh one.
func (e *Enrollment) Live(now time.Time) bool {
	return !e.Expired(now)
}
