package testutil

import (
	"context"
	"sync"

	"library-api/internal/domains/book"
)

// NotificationRecorder captures book notifications in tests
type NotificationRecorder struct {
	mu sync.Mutex

	Notifications []book.Notification
	next          book.Notifier
}

var _ book.Notifier = (*NotificationRecorder)(nil)

// NewNotificationRecorder records and then forwards to next (may be nil)
func NewNotificationRecorder(next book.Notifier) *NotificationRecorder {
	return &NotificationRecorder{next: next}
}

func (r *NotificationRecorder) Notify(ctx context.Context, n book.Notification) {
	r.mu.Lock()
	r.Notifications = append(r.Notifications, n)
	r.mu.Unlock()

	if r.next != nil {
		r.next.Notify(ctx, n)
	}
}

func (r *NotificationRecorder) All() []book.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]book.Notification(nil), r.Notifications...)
}

func (r *NotificationRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Notifications = nil
}
