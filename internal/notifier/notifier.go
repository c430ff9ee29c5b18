package notifier

import (
	"context"
	"log"

	"github.com/GradMERN/e-guide-Backend/internal/domain"
	"github.com/GradMERN/e-guide-Backend/internal/repository"
)

// Notifier records an informational message for a user. Implementations are
// swappable (console for dev, DB-backed records for the API to serve).
type Notifier interface {
	Notify(ctx context.Context, userID, kind, message string) error
}

type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier { return &ConsoleNotifier{} }

func (c *ConsoleNotifier) Notify(_ context.Context, userID, kind, message string) error {
	log.Printf("[notify] user=%s %s :: %s", userID, kind, message)
	return nil
}

// Recorder persists notifications so clients can list them later.
type Recorder struct {
	repo *repository.NotificationRepo
}

func NewRecorder(repo *repository.NotificationRepo) *Recorder {
	return &Recorder{repo: repo}
}

func (r *Recorder) Notify(ctx context.Context, userID, kind, message string) error {
	return r.repo.Create(ctx, &domain.Notification{
		UserID:  userID,
		Message: message,
		Type:    kind,
	})
}

// Fanout delivers to every notifier, returning the first failure after
// trying all of them.
type Fanout []Notifier

func (f Fanout) Notify(ctx context.Context, userID, kind, message string) error {
	var first error
	for _, n := range f {
		if err := n.Notify(ctx, userID, kind, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
