package domain

import (
	"testing"
	"time"
)

func TestEnrollmentWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	live := now.Add(time.Minute)
	past := now.Add(-time.Minute)

	e := Enrollment{Status: EnrollmentStarted, ExpiresAt: &live}
	if !e.Usable(now) || !e.Live(now) {
		t.Fatal("started enrollment inside its window should be usable")
	}

	e.ExpiresAt = &past
	if e.Usable(now) || e.Live(now) {
		t.Fatal("expired enrollment should be dead")
	}

	// Exactly at the boundary the window is closed.
	e.ExpiresAt = &now
	if e.Usable(now) {
		t.Fatal("boundary instant should not be usable")
	}

	// No expiry means live but not usable until started.
	e = Enrollment{Status: EnrollmentActive}
	if e.Usable(now) {
		t.Fatal("active-but-not-started should not grant access")
	}
	if !e.Live(now) {
		t.Fatal("attempt without expiry should still block a fresh one")
	}
}

func TestValidCoordinates(t *testing.T) {
	cases := []struct {
		lng, lat float64
		ok       bool
	}{
		{31.2357, 30.0444, true},
		{-180, -90, true},
		{180, 90, true},
		{180.1, 0, false},
		{0, 90.1, false},
		{-200, 50, false},
	}
	for _, c := range cases {
		if got := ValidCoordinates(c.lng, c.lat); got != c.ok {
			t.Errorf("ValidCoordinates(%v, %v) = %v, want %v", c.lng, c.lat, got, c.ok)
		}
	}
}

func TestWaypointHasContent(t *testing.T) {
	if (&Waypoint{Title: "Empty"}).HasContent() {
		t.Fatal("bare waypoint should have no content")
	}
	if !(&Waypoint{Script: "Built in 1087."}).HasContent() {
		t.Fatal("script counts as content")
	}
	if !(&Waypoint{AudioURL: "https://cdn.example/a.mp3"}).HasContent() {
		t.Fatal("audio counts as content")
	}
	if !(&Waypoint{HasLocation: true, Lng: 31.2, Lat: 30.0}).HasContent() {
		t.Fatal("valid location counts as content")
	}
	if (&Waypoint{HasLocation: true, Lng: 400, Lat: 95}).HasContent() {
		t.Fatal("invalid coordinates are not content")
	}
}
