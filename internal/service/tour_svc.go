package service

import (
	"context"
	"errors"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/pkg/auth"
)

// TourSvc owns the publication gates and the access-filtered content view.
type TourSvc struct {
	tours  TourStore
	access *AccessSvc
}

func NewTourSvc(t TourStore, access *AccessSvc) *TourSvc {
	return &TourSvc{tours: t, access: access}
}

func (s *TourSvc) tourOwned(ctx context.Context, caller Caller, tourID string) (*domain.Tour, error) {
	tour, err := s.tours.TourByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "tour not found")
		}
		return nil, err
	}
	if caller.Role != auth.RoleAdmin && caller.UserID != tour.GuideID {
		return nil, domain.E(domain.CodeForbidden, "not your tour")
	}
	return tour, nil
}

// PublishTour requires a main image and at least one waypoint. The count is
// taken fresh from the waypoint table, never from a cached counter.
func (s *TourSvc) PublishTour(ctx context.Context, caller Caller, tourID string) error {
	tour, err := s.tourOwned(ctx, caller, tourID)
	if err != nil {
		return err
	}
	if tour.MainImageURL == "" {
		return domain.E(domain.CodeInvalidState, "tour has no main image")
	}
	n, err := s.tours.CountWaypoints(ctx, tour.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.E(domain.CodeInvalidState, "tour has no waypoints")
	}
	return s.tours.SetTourPublished(ctx, tour.ID, true)
}

// UnpublishTour is always permitted for the owner.
func (s *TourSvc) UnpublishTour(ctx context.Context, caller Caller, tourID string) error {
	tour, err := s.tourOwned(ctx, caller, tourID)
	if err != nil {
		return err
	}
	return s.tours.SetTourPublished(ctx, tour.ID, false)
}

// PublishWaypoint rejects empty waypoints: there must be narration, an
// image, audio, or a valid location.
func (s *TourSvc) PublishWaypoint(ctx context.Context, caller Caller, waypointID string) error {
	wp, err := s.tours.WaypointByID(ctx, waypointID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "waypoint not found")
		}
		return err
	}
	if _, err := s.tourOwned(ctx, caller, wp.TourID); err != nil {
		return err
	}
	if !wp.HasContent() {
		return domain.E(domain.CodeInvalidState, "waypoint has no content to publish")
	}
	return s.tours.SetWaypointPublished(ctx, wp.ID, true)
}

func (s *TourSvc) UnpublishWaypoint(ctx context.Context, caller Caller, waypointID string) error {
	wp, err := s.tours.WaypointByID(ctx, waypointID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.E(domain.CodeNotFound, "waypoint not found")
		}
		return err
	}
	if _, err := s.tourOwned(ctx, caller, wp.TourID); err != nil {
		return err
	}
	return s.tours.SetWaypointPublished(ctx, wp.ID, false)
}

// WaypointView is a waypoint shaped for one visibility tier. Title-only
// callers get nothing but id and title.
type WaypointView struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Script      string  `json:"script,omitempty"`
	ImageURL    string  `json:"image_url,omitempty"`
	AudioURL    string  `json:"audio_url,omitempty"`
	Lng         float64 `json:"lng,omitempty"`
	Lat         float64 `json:"lat,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"` // only exposed to full tier
}

type TourContent struct {
	Tour      *domain.Tour   `json:"tour"`
	Tier      string         `json:"tier"`
	Waypoints []WaypointView `json:"waypoints"`
}

// Content resolves the caller's tier and filters the waypoint list through
// it. Unpublished waypoints are invisible (not even listed) below full tier;
// an unpublished tour is hidden entirely below full tier.
func (s *TourSvc) Content(ctx context.Context, caller Caller, tourID string) (*TourContent, error) {
	tour, err := s.tours.TourByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "tour not found")
		}
		return nil, err
	}

	tier, err := s.access.ResolveVisibility(ctx, caller, tour)
	if err != nil {
		return nil, err
	}
	if !tour.IsPublished && tier != TierFull {
		return nil, domain.E(domain.CodeNotFound, "tour not found")
	}

	wps, err := s.tours.WaypointsForTour(ctx, tour.ID)
	if err != nil {
		return nil, err
	}

	out := &TourContent{Tour: tour, Tier: tier.String()}
	for i := range wps {
		wp := &wps[i]
		switch tier {
		case TierFull:
			v := fullView(wp)
			published := wp.IsPublished
			v.IsPublished = &published
			out.Waypoints = append(out.Waypoints, v)
		case TierPublishedFull:
			if wp.IsPublished {
				out.Waypoints = append(out.Waypoints, fullView(wp))
			}
		default:
			if wp.IsPublished {
				out.Waypoints = append(out.Waypoints, WaypointView{ID: wp.ID, Title: wp.Title})
			}
		}
	}
	return out, nil
}

func fullView(wp *domain.Waypoint) WaypointView {
	return WaypointView{
		ID:       wp.ID,
		Title:    wp.Title,
		Script:   wp.Script,
		ImageURL: wp.ImageURL,
		AudioURL: wp.AudioURL,
		Lng:      wp.Lng,
		Lat:      wp.Lat,
	}
}
