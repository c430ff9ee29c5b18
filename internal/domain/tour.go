package domain

import "time"

type Tour struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price is in the smallest currency unit (e.g. piasters, cents).
	Price        int64  `json:"price"`
	Currency     string `json:"currency"`
	GuideID      string `gorm:"index" json:"guide_id"`
	MainImageURL string `json:"main_image_url"`
	IsPublished  bool   `gorm:"index" json:"is_published"`
	// EnrollmentsCount is a display metric only. Access decisions always go
	// through the enrollment records, never this counter.
	EnrollmentsCount int64     `json:"enrollments_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Waypoint is a single point-of-interest content unit of a tour,
// independently publishable.
type Waypoint struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	TourID      string    `gorm:"index" json:"tour_id"`
	Title       string    `json:"title"`
	Script      string    `json:"script,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	AudioURL    string    `json:"audio_url,omitempty"`
	Lng         float64   `json:"lng"`
	Lat         float64   `json:"lat"`
	HasLocation bool      `json:"has_location"`
	IsPublished bool      `gorm:"index" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ValidCoordinates(lng, lat float64) bool {
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

// HasContent reports whether the waypoint carries anything worth publishing:
// narration text, an image, audio, or a valid location.
func (w *Waypoint) HasContent() bool {
	if w.Script != "" || w.ImageURL != "" || w.AudioURL != "" {
		return true
	}
	return w.HasLocation && ValidCoordinates(w.Lng, w.Lat)
}
