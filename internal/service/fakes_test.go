package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/internal/gateway"
)

// memStore is an in-memory stand-in for the gorm repositories, mirroring
// their guard semantics (live-attempt check, status-guarded transitions,
// idempotent reconcile applies).
type memStore struct {
	mu          sync.Mutex
	enrollments map[string]*domain.Enrollment
	payments    map[string]*domain.Payment
	seq         int
	now         func() time.Time
}

func newMemStore() *memStore {
	return &memStore{
		enrollments: map[string]*domain.Enrollment{},
		payments:    map[string]*domain.Payment{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s_%d", prefix, m.seq)
}

func (m *memStore) CreateAttempt(_ context.Context, e *domain.Enrollment, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for _, ex := range m.enrollments {
		if ex.UserID == e.UserID && ex.TourID == e.TourID && ex.Live(now) {
			return domain.ErrLiveAttempt
		}
	}
	e.ID = m.nextID("enr")
	e.CreatedAt = now
	// Store copies: returned records must not alias store state, exactly as
	// rows read back through gorm would not.
	ecp := *e
	m.enrollments[e.ID] = &ecp
	if p != nil {
		p.ID = m.nextID("pay")
		p.EnrollmentID = e.ID
		p.CreatedAt = now
		pcp := *p
		m.payments[p.ID] = &pcp
	}
	return nil
}

func (m *memStore) ByID(_ context.Context, id string) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) ForUserTour(_ context.Context, userID, tourID string) ([]domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID && e.TourID == tourID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memStore) ForUser(_ context.Context, userID string) ([]domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Enrollment
	for _, e := range m.enrollments {
		if e.UserID == userID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (m *memStore) Transition(_ context.Context, id string, from, to domain.EnrollmentStatus, expiresAt *time.Time) (*domain.Enrollment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.enrollments[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.Status != from {
		return nil, domain.ErrStatusChanged
	}
	e.Status = to
	if expiresAt != nil && e.ExpiresAt == nil {
		e.ExpiresAt = expiresAt
	}
	cp := *e
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, p *domain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("pay")
	p.CreatedAt = m.now()
	pcp := *p
	m.payments[p.ID] = &pcp
	return nil
}

func (m *memStore) CurrentForEnrollment(_ context.Context, enrollmentID string) (*domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var newest *domain.Payment
	for _, p := range m.payments {
		if p.EnrollmentID != enrollmentID {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	if newest == nil {
		return nil, domain.ErrNotFound
	}
	cp := *newest
	return &cp, nil
}

func (m *memStore) Reprovision(_ context.Context, paymentID, externalRef string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status != domain.PaymentPending && p.Status != domain.PaymentFailed {
		return domain.ErrStatusChanged
	}
	p.ExternalRef = externalRef
	p.Status = domain.PaymentPending
	return nil
}

func (m *memStore) MarkFailed(_ context.Context, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[paymentID]
	if !ok {
		return domain.ErrNotFound
	}
	if p.Status == domain.PaymentPending {
		p.Status = domain.PaymentFailed
	}
	return nil
}

func (m *memStore) lockByRef(externalRef, enrollmentID string) *domain.Payment {
	for _, p := range m.payments {
		if externalRef != "" && p.ExternalRef == externalRef {
			return p
		}
	}
	var newest *domain.Payment
	for _, p := range m.payments {
		if p.EnrollmentID != enrollmentID || enrollmentID == "" {
			continue
		}
		if newest == nil || p.CreatedAt.After(newest.CreatedAt) {
			newest = p
		}
	}
	return newest
}

func (m *memStore) ApplyPaid(_ context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.lockByRef(externalRef, enrollmentID)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := &domain.ReconcileOutcome{Payment: p, Enrollment: m.enrollments[p.EnrollmentID]}
	if p.Status == domain.PaymentPaid || p.Status == domain.PaymentRefunded {
		return out, nil
	}
	p.Status = domain.PaymentPaid
	if e := m.enrollments[p.EnrollmentID]; e != nil && e.Status == domain.EnrollmentPending {
		e.Status = domain.EnrollmentActive
	}
	out.Applied = true
	return out, nil
}

func (m *memStore) ApplyFailed(_ context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.lockByRef(externalRef, enrollmentID)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := &domain.ReconcileOutcome{Payment: p, Enrollment: m.enrollments[p.EnrollmentID]}
	if p.Status != domain.PaymentPending {
		return out, nil
	}
	p.Status = domain.PaymentFailed
	out.Applied = true
	return out, nil
}

func (m *memStore) ApplyRefunded(_ context.Context, externalRef, enrollmentID string) (*domain.ReconcileOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.lockByRef(externalRef, enrollmentID)
	if p == nil {
		return nil, domain.ErrNotFound
	}
	out := &domain.ReconcileOutcome{Payment: p, Enrollment: m.enrollments[p.EnrollmentID]}
	if p.Status != domain.PaymentPaid {
		return out, nil
	}
	p.Status = domain.PaymentRefunded
	out.Applied = true
	return out, nil
}

type memTours struct {
	mu         sync.Mutex
	tours      map[string]*domain.Tour
	waypoints  []domain.Waypoint
	increments int
}

func newMemTours() *memTours {
	return &memTours{tours: map[string]*domain.Tour{}}
}

func (m *memTours) TourByID(_ context.Context, id string) (*domain.Tour, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tours[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTours) WaypointByID(_ context.Context, id string) (*domain.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.waypoints {
		if m.waypoints[i].ID == id {
			cp := m.waypoints[i]
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memTours) WaypointsForTour(_ context.Context, tourID string) ([]domain.Waypoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Waypoint
	for _, w := range m.waypoints {
		if w.TourID == tourID {
			out = append(out, w)
		}
	}
	return out, nil
}

func (m *memTours) CountWaypoints(_ context.Context, tourID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, w := range m.waypoints {
		if w.TourID == tourID {
			n++
		}
	}
	return n, nil
}

func (m *memTours) SetTourPublished(_ context.Context, id string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tours[id]
	if !ok {
		return domain.ErrNotFound
	}
	t.IsPublished = published
	return nil
}

func (m *memTours) SetWaypointPublished(_ context.Context, id string, published bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.waypoints {
		if m.waypoints[i].ID == id {
			m.waypoints[i].IsPublished = published
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memTours) IncrementEnrollments(_ context.Context, tourID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tours[tourID]; ok {
		t.EnrollmentsCount++
		m.increments++
	}
	return nil
}

type fakeGateway struct {
	mu    sync.Mutex
	fail  bool
	calls int
	last  gateway.ChargeInput
}

func (g *fakeGateway) CreateCharge(_ context.Context, in gateway.ChargeInput) (*gateway.Charge, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.last = in
	if g.fail {
		return nil, fmt.Errorf("gateway unreachable")
	}
	ref := fmt.Sprintf("chrg_%d", g.calls)
	return &gateway.Charge{Ref: ref, Status: "pending", AuthorizeURI: "https://pay.example/" + ref}, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *fakePublisher) published(key string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, k := range p.keys {
		if k == key {
			n++
		}
	}
	return n
}
