package book

import (
	"context"

	"github.com/google/uuid"
)

// Notification is a book lifecycle event emitted by the repository after a
// mutation commits. The set of variants is closed: Created, AuthorChanged, Deleted.
type Notification interface {
	// Kind returns a stable name used in logs
	Kind() string
	notification()
}

// Created is emitted after a book row is inserted
type Created struct {
	Book Book
}

// AuthorChanged is emitted after an update that moved the book to another author.
// Book holds the post-update state.
type AuthorChanged struct {
	Book        Book
	OldAuthorID uuid.UUID
}

// Deleted carries the book as it was before deletion
type Deleted struct {
	Book Book
}

func (Created) Kind() string       { return "book.created" }
func (AuthorChanged) Kind() string { return "book.author_changed" }
func (Deleted) Kind() string       { return "book.deleted" }

func (Created) notification()       {}
func (AuthorChanged) notification() {}
func (Deleted) notification()       {}

// Notifier receives book notifications synchronously.
// Implementations must not fail the mutation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// NopNotifier drops every notification
var NopNotifier Notifier = NotifierFunc(func(context.Context, Notification) {})

// UpdateNotification decides what an update emits. Only an actual author change
// produces a notification.
func UpdateNotification(before, after Book) (Notification, bool) {
	if before.AuthorID == after.AuthorID {
		return nil, false
	}
	return AuthorChanged{Book: after, OldAuthorID: before.AuthorID}, true
}
