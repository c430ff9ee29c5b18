package service

import (
	"context"
	"errors"
	"time"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/internal/events"
	"github.com/GradMERN/e-guide-Backend/internal/gateway"
)

// EnrollmentSvc orchestrates enrollment attempts: creation with a payment
// leg, idempotent retry of abandoned checkouts, and the explicit start
// transition that opens the session window.
type EnrollmentSvc struct {
	enrollments EnrollmentStore
	payments    PaymentStore
	tours       TourStore
	gw          PaymentGateway // nil in no-payment mode
	pub         EventPublisher
	returnURI   string
	now         func() time.Time
}

func NewEnrollmentSvc(e EnrollmentStore, p PaymentStore, t TourStore, gw PaymentGateway, pub EventPublisher, returnURI string) *EnrollmentSvc {
	return &EnrollmentSvc{
		enrollments: e,
		payments:    p,
		tours:       t,
		gw:          gw,
		pub:         pub,
		returnURI:   returnURI,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnrollResult is what the caller needs to finish checkout: the attempt, its
// payment (nil in no-payment mode) and the gateway handle to complete
// payment with.
type EnrollResult struct {
	Enrollment *domain.Enrollment `json:"enrollment"`
	Payment    *domain.Payment    `json:"payment,omitempty"`
	PayHandle  string             `json:"pay_handle,omitempty"`
}

// Request creates or resumes an enrollment attempt for (user, tour).
//
// Live attempts decide the outcome: an already-paid live attempt is a
// conflict, a pending live attempt is resumed with a fresh charge, and
// expired history is ignored. Without a gateway configured the attempt is
// granted directly as active.
func (s *EnrollmentSvc) Request(ctx context.Context, userID, tourID string) (*EnrollResult, error) {
	tour, err := s.tours.TourByID(ctx, tourID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "tour not found")
		}
		return nil, err
	}
	if !tour.IsPublished {
		return nil, domain.E(domain.CodeTourNotPublished, "tour is not published")
	}

	attempts, err := s.enrollments.ForUserTour(ctx, userID, tourID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range attempts {
		e := &attempts[i]
		if !e.Live(now) {
			continue
		}
		switch e.Status {
		case domain.EnrollmentActive, domain.EnrollmentStarted:
			// Only reconciliation (or no-payment mode) produces these, so a
			// live one means the user already holds a paid entitlement.
			return nil, domain.E(domain.CodeAlreadyEnrolled, "already enrolled in this tour")
		case domain.EnrollmentPending:
			return s.resume(ctx, tour, e)
		}
	}

	return s.fresh(ctx, tour, userID)
}

func (s *EnrollmentSvc) fresh(ctx context.Context, tour *domain.Tour, userID string) (*EnrollResult, error) {
	e := &domain.Enrollment{
		UserID: userID,
		TourID: tour.ID,
		Status: domain.EnrollmentPending,
	}

	if s.gw == nil {
		// No-payment deployment: grant directly, no ledger entry. The user
		// still starts explicitly to open the session window.
		e.Status = domain.EnrollmentActive
		if err := s.enrollments.CreateAttempt(ctx, e, nil); err != nil {
			return nil, s.onCreateRace(ctx, tour, userID, err)
		}
		s.notifyCreated(ctx, e, tour)
		return &EnrollResult{Enrollment: e}, nil
	}

	p := &domain.Payment{
		UserID:   userID,
		TourID:   tour.ID,
		Amount:   tour.Price, // snapshot; later price edits never reach this row
		Currency: tour.Currency,
		Status:   domain.PaymentPending,
	}
	if err := s.enrollments.CreateAttempt(ctx, e, p); err != nil {
		return nil, s.onCreateRace(ctx, tour, userID, err)
	}

	ch, err := s.gw.CreateCharge(ctx, gateway.ChargeInput{
		Amount:       p.Amount,
		Currency:     p.Currency,
		ReturnURI:    s.returnURI,
		EnrollmentID: e.ID,
		UserID:       userID,
		TourID:       tour.ID,
	})
	if err != nil {
		// Fail visibly instead of leaving an unpayable pending attempt. The
		// attempt itself stays live and a retry provisions a new charge.
		_ = s.payments.MarkFailed(ctx, p.ID)
		return nil, domain.E(domain.CodePaymentGateway, "payment session could not be created")
	}
	if err := s.payments.Reprovision(ctx, p.ID, ch.Ref); err != nil {
		return nil, s.onSettledRace(err)
	}
	p.ExternalRef = ch.Ref

	s.notifyCreated(ctx, e, tour)
	return &EnrollResult{Enrollment: e, Payment: p, PayHandle: ch.AuthorizeURI}, nil
}

// resume returns the existing pending attempt with a fresh gateway charge so
// an abandoned or failed checkout can be completed.
func (s *EnrollmentSvc) resume(ctx context.Context, tour *domain.Tour, e *domain.Enrollment) (*EnrollResult, error) {
	if s.gw == nil {
		return &EnrollResult{Enrollment: e}, nil
	}

	p, err := s.payments.CurrentForEnrollment(ctx, e.ID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		p = &domain.Payment{
			UserID:       e.UserID,
			EnrollmentID: e.ID,
			TourID:       tour.ID,
			Amount:       tour.Price,
			Currency:     tour.Currency,
			Status:       domain.PaymentPending,
		}
		if err := s.payments.Create(ctx, p); err != nil {
			return nil, err
		}
	}

	ch, err := s.gw.CreateCharge(ctx, gateway.ChargeInput{
		Amount:       p.Amount, // keep the original snapshot
		Currency:     p.Currency,
		ReturnURI:    s.returnURI,
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		TourID:       tour.ID,
	})
	if err != nil {
		_ = s.payments.MarkFailed(ctx, p.ID)
		return nil, domain.E(domain.CodePaymentGateway, "payment session could not be created")
	}
	if err := s.payments.Reprovision(ctx, p.ID, ch.Ref); err != nil {
		return nil, s.onSettledRace(err)
	}
	p.ExternalRef = ch.Ref
	p.Status = domain.PaymentPending

	return &EnrollResult{Enrollment: e, Payment: p, PayHandle: ch.AuthorizeURI}, nil
}

// onSettledRace interprets a reprovision guard miss: the payment settled
// between the read and the update, meaning a success webhook won the race.
// The caller already holds the entitlement, so report the conflict.
func (s *EnrollmentSvc) onSettledRace(err error) error {
	if errors.Is(err, domain.ErrStatusChanged) {
		return domain.E(domain.CodeAlreadyEnrolled, "payment already settled for this attempt")
	}
	return err
}

// onCreateRace resolves a lost check-then-create race: the winner's live
// attempt decides, exactly as if the loser had requested a moment later.
func (s *EnrollmentSvc) onCreateRace(ctx context.Context, tour *domain.Tour, userID string, err error) error {
	if !errors.Is(err, domain.ErrLiveAttempt) {
		return err
	}
	attempts, lerr := s.enrollments.ForUserTour(ctx, userID, tour.ID)
	if lerr == nil {
		now := s.now()
		for i := range attempts {
			if attempts[i].Live(now) && attempts[i].Status != domain.EnrollmentPending {
				return domain.E(domain.CodeAlreadyEnrolled, "already enrolled in this tour")
			}
		}
	}
	return domain.E(domain.CodeAlreadyEnrolled, "enrollment already in progress")
}

// Start transitions an active enrollment to started and opens the 12 hour
// session window. One-time: a second start is an invalid state, and the
// window is never moved once set.
func (s *EnrollmentSvc) Start(ctx context.Context, userID, enrollmentID string) (*domain.Enrollment, error) {
	e, err := s.enrollments.ByID(ctx, enrollmentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.E(domain.CodeNotFound, "enrollment not found")
		}
		return nil, err
	}
	if e.UserID != userID {
		// Hide other users' enrollments entirely.
		return nil, domain.E(domain.CodeNotFound, "enrollment not found")
	}
	if e.Status != domain.EnrollmentActive {
		return nil, domain.E(domain.CodeInvalidState, "enrollment is not active")
	}

	var expPtr *time.Time
	if e.ExpiresAt == nil {
		exp := s.now().Add(domain.SessionWindow)
		expPtr = &exp
	}
	started, err := s.enrollments.Transition(ctx, e.ID, domain.EnrollmentActive, domain.EnrollmentStarted, expPtr)
	if err != nil {
		if errors.Is(err, domain.ErrStatusChanged) {
			return nil, domain.E(domain.CodeInvalidState, "enrollment is not active")
		}
		return nil, err
	}

	if tour, terr := s.tours.TourByID(ctx, started.TourID); terr == nil {
		var expUnix int64
		if started.ExpiresAt != nil {
			expUnix = started.ExpiresAt.Unix()
		}
		env, _ := events.Wrap(events.RKEnrollmentStarted, events.EnrollmentStarted{
			EnrollmentID: started.ID,
			UserID:       started.UserID,
			TourName:     tour.Name,
			ExpiresAt:    expUnix,
		})
		_ = s.pub.PublishJSON(ctx, events.RKEnrollmentStarted, env)
	}
	return started, nil
}

// Overview partitions a user's attempts by current state, computed per call
// rather than read from stored flags.
type Overview struct {
	InProgress []domain.Enrollment `json:"in_progress"`
	Available  []domain.Enrollment `json:"available"`
	All        []domain.Enrollment `json:"all"`
}

func (s *EnrollmentSvc) Overview(ctx context.Context, userID string) (*Overview, error) {
	list, err := s.enrollments.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	ov := &Overview{All: list}
	for _, e := range list {
		switch {
		case e.Usable(now):
			ov.InProgress = append(ov.InProgress, e)
		case e.Status == domain.EnrollmentActive && !e.Expired(now):
			ov.Available = append(ov.Available, e)
		}
	}
	return ov, nil
}

func (s *EnrollmentSvc) notifyCreated(ctx context.Context, e *domain.Enrollment, tour *domain.Tour) {
	env, _ := events.Wrap(events.RKEnrollmentCreated, events.EnrollmentCreated{
		EnrollmentID: e.ID,
		UserID:       e.UserID,
		TourID:       tour.ID,
		TourName:     tour.Name,
	})
	_ = s.pub.PublishJSON(ctx, events.RKEnrollmentCreated, env)
	_ = s.tours.IncrementEnrollments(ctx, tour.ID)
}
