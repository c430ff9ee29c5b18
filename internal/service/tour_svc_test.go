package service

import (
	"context"
	"testing"
	"time"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/pkg/auth"
)

func newTestTourSvc(store *memStore, tours *memTours) *TourSvc {
	return NewTourSvc(tours, NewAccessSvc(store))
}

func TestPublishTourGates(t *testing.T) {
	guide := Caller{UserID: "guide_1", Role: auth.RoleGuide}

	t.Run("needs main image", func(t *testing.T) {
		tours := newMemTours()
		tour := seedTour(tours, "tour_1", false)
		tour.MainImageURL = ""
		tours.waypoints = append(tours.waypoints, domain.Waypoint{ID: "wp_1", TourID: "tour_1", Title: "Gate"})

		svc := newTestTourSvc(newMemStore(), tours)
		if err := svc.PublishTour(context.Background(), guide, "tour_1"); domain.CodeOf(err) != domain.CodeInvalidState {
			t.Fatalf("err = %v, want invalid_state", err)
		}
	})

	t.Run("needs a waypoint", func(t *testing.T) {
		tours := newMemTours()
		seedTour(tours, "tour_1", false)

		svc := newTestTourSvc(newMemStore(), tours)
		if err := svc.PublishTour(context.Background(), guide, "tour_1"); domain.CodeOf(err) != domain.CodeInvalidState {
			t.Fatalf("err = %v, want invalid_state", err)
		}
	})

	t.Run("owner publishes", func(t *testing.T) {
		tours := newMemTours()
		seedTour(tours, "tour_1", false)
		tours.waypoints = append(tours.waypoints, domain.Waypoint{ID: "wp_1", TourID: "tour_1", Title: "Gate"})

		svc := newTestTourSvc(newMemStore(), tours)
		if err := svc.PublishTour(context.Background(), guide, "tour_1"); err != nil {
			t.Fatalf("PublishTour: %v", err)
		}
		if !tours.tours["tour_1"].IsPublished {
			t.Fatalf("tour not published")
		}
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		tours := newMemTours()
		seedTour(tours, "tour_1", false)
		tours.waypoints = append(tours.waypoints, domain.Waypoint{ID: "wp_1", TourID: "tour_1", Title: "Gate"})

		svc := newTestTourSvc(newMemStore(), tours)
		other := Caller{UserID: "guide_2", Role: auth.RoleGuide}
		if err := svc.PublishTour(context.Background(), other, "tour_1"); domain.CodeOf(err) != domain.CodeForbidden {
			t.Fatalf("err = %v, want forbidden", err)
		}
	})
}

func TestPublishWaypointRequiresContent(t *testing.T) {
	guide := Caller{UserID: "guide_1", Role: auth.RoleGuide}

	tours := newMemTours()
	seedTour(tours, "tour_1", true)
	tours.waypoints = append(tours.waypoints,
		domain.Waypoint{ID: "wp_empty", TourID: "tour_1", Title: "Untitled"},
		domain.Waypoint{ID: "wp_script", TourID: "tour_1", Title: "Gate", Script: "Built in 1087."},
		domain.Waypoint{ID: "wp_loc", TourID: "tour_1", Title: "Spot", HasLocation: true, Lng: 31.26, Lat: 30.05},
		domain.Waypoint{ID: "wp_badloc", TourID: "tour_1", Title: "Nowhere", HasLocation: true, Lng: 400, Lat: 95},
	)
	svc := newTestTourSvc(newMemStore(), tours)

	if err := svc.PublishWaypoint(context.Background(), guide, "wp_empty"); domain.CodeOf(err) != domain.CodeInvalidState {
		t.Fatalf("empty: err = %v, want invalid_state", err)
	}
	if err := svc.PublishWaypoint(context.Background(), guide, "wp_badloc"); domain.CodeOf(err) != domain.CodeInvalidState {
		t.Fatalf("bad location: err = %v, want invalid_state", err)
	}
	if err := svc.PublishWaypoint(context.Background(), guide, "wp_script"); err != nil {
		t.Fatalf("script: %v", err)
	}
	if err := svc.PublishWaypoint(context.Background(), guide, "wp_loc"); err != nil {
		t.Fatalf("location: %v", err)
	}
}

func TestContentTiers(t *testing.T) {
	store := newMemStore()
	tours := newMemTours()
	seedTour(tours, "tour_1", true)
	tours.waypoints = append(tours.waypoints,
		domain.Waypoint{ID: "wp_pub", TourID: "tour_1", Title: "Gate", Script: "Built in 1087.", IsPublished: true},
		domain.Waypoint{ID: "wp_draft", TourID: "tour_1", Title: "Draft", Script: "WIP"},
	)
	svc := newTestTourSvc(store, tours)

	live := time.Now().UTC().Add(time.Hour)
	store.enrollments["e"] = &domain.Enrollment{
		ID: "e", UserID: "traveler", TourID: "tour_1", Status: domain.EnrollmentStarted, ExpiresAt: &live,
	}

	t.Run("anonymous gets titles only", func(t *testing.T) {
		out, err := svc.Content(context.Background(), Caller{}, "tour_1")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if out.Tier != "title_only" {
			t.Fatalf("tier = %s", out.Tier)
		}
		if len(out.Waypoints) != 1 {
			t.Fatalf("waypoints = %d, want 1 (published only)", len(out.Waypoints))
		}
		wp := out.Waypoints[0]
		if wp.ID != "wp_pub" || wp.Script != "" {
			t.Fatalf("leaked detail: %+v", wp)
		}
	})

	t.Run("enrolled traveler gets published detail", func(t *testing.T) {
		out, err := svc.Content(context.Background(), Caller{UserID: "traveler", Role: auth.RoleUser}, "tour_1")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if out.Tier != "published_full" {
			t.Fatalf("tier = %s", out.Tier)
		}
		if len(out.Waypoints) != 1 || out.Waypoints[0].Script == "" {
			t.Fatalf("expected full detail of published waypoints: %+v", out.Waypoints)
		}
	})

	t.Run("owner sees drafts", func(t *testing.T) {
		out, err := svc.Content(context.Background(), Caller{UserID: "guide_1", Role: auth.RoleGuide}, "tour_1")
		if err != nil {
			t.Fatalf("Content: %v", err)
		}
		if out.Tier != "full" {
			t.Fatalf("tier = %s", out.Tier)
		}
		if len(out.Waypoints) != 2 {
			t.Fatalf("waypoints = %d, want 2", len(out.Waypoints))
		}
		for _, wp := range out.Waypoints {
			if wp.IsPublished == nil {
				t.Fatalf("publish state missing on %s", wp.ID)
			}
		}
	})
}

func TestContentHidesUnpublishedTour(t *testing.T) {
	store := newMemStore()
	tours := newMemTours()
	seedTour(tours, "tour_1", false)
	svc := newTestTourSvc(store, tours)

	// Travelers and strangers see an unpublished tour as nonexistent.
	if _, err := svc.Content(context.Background(), Caller{UserID: "u", Role: auth.RoleUser}, "tour_1"); domain.CodeOf(err) != domain.CodeNotFound {
		t.Fatalf("err = %v, want not_found", err)
	}

	// The owner still sees it.
	out, err := svc.Content(context.Background(), Caller{UserID: "guide_1", Role: auth.RoleGuide}, "tour_1")
	if err != nil {
		t.Fatalf("owner: %v", err)
	}
	if out.Tier != "full" {
		t.Fatalf("tier = %s", out.Tier)
	}
}
