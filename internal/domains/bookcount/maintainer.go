// Package bookcount keeps authors.books_count in step with the books table.
//
// Book notifications are applied as cheap +1/-1 updates, and every update is
// immediately followed by a verification against COUNT(*) that overwrites the
// counter on drift. VerifyAll runs the same check over every author and is
// what the scheduled reconciliation job calls.
package bookcount

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"library-api/internal/domains/author"
	"library-api/internal/domains/book"
)

// Action is one primitive adjustment of an author's counter
type Action string

const (
	ActionIncrement   Action = "increment"
	ActionDecrement   Action = "decrement"
	ActionRecalculate Action = "recalculate"
)

// Maintainer applies counter adjustments and verifications.
// It implements book.Notifier.
type Maintainer struct {
	store  Store
	logger zerolog.Logger
}

var _ book.Notifier = (*Maintainer)(nil)

func NewMaintainer(store Store) *Maintainer {
	return &Maintainer{
		store:  store,
		logger: log.With().Str("component", "bookcount").Logger(),
	}
}

// ========================================
// PRIMITIVES
// ========================================

// Apply runs a single action on the author's counter.
// Decrement is not clamped at zero; the verify that follows every decrement
// restores the true value.
func (m *Maintainer) Apply(ctx context.Context, authorID uuid.UUID, action Action) error {
	var err error
	switch action {
	case ActionIncrement:
		err = m.store.IncrementBooksCount(ctx, authorID)
	case ActionDecrement:
		err = m.store.DecrementBooksCount(ctx, authorID)
	case ActionRecalculate:
		_, err = m.Recalculate(ctx, authorID)
	default:
		return fmt.Errorf("unknown books_count action %q", action)
	}
	if err != nil {
		return fmt.Errorf("%s books_count for author %s: %w", action, authorID, err)
	}
	return nil
}

func (m *Maintainer) Increment(ctx context.Context, authorID uuid.UUID) error {
	return m.Apply(ctx, authorID, ActionIncrement)
}

func (m *Maintainer) Decrement(ctx context.Context, authorID uuid.UUID) error {
	return m.Apply(ctx, authorID, ActionDecrement)
}

// Recalculate overwrites the counter with COUNT(*) and returns the new value.
// Idempotent.
func (m *Maintainer) Recalculate(ctx context.Context, authorID uuid.UUID) (int, error) {
	actual, err := m.store.CountBooks(ctx, authorID)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	if err := m.store.SetBooksCount(ctx, authorID, actual); err != nil {
		return 0, fmt.Errorf("set books_count: %w", err)
	}
	return actual, nil
}

// ========================================
// VERIFICATION
// ========================================

// Verify compares the stored counter with the true count and recalculates on
// mismatch. Returns the correction made, or nil when the counter was already
// right or the author no longer exists.
func (m *Maintainer) Verify(ctx context.Context, authorID uuid.UUID) (*Correction, error) {
	stored, err := m.store.GetBooksCount(ctx, authorID)
	if errors.Is(err, author.ErrAuthorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify author %s: read stored count: %w", authorID, err)
	}

	actual, err := m.store.CountBooks(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("verify author %s: count books: %w", authorID, err)
	}
	if stored == actual {
		return nil, nil
	}

	actual, err = m.Recalculate(ctx, authorID)
	if errors.Is(err, author.ErrAuthorNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verify author %s: %w", authorID, err)
	}

	m.logger.Warn().
		Str("author_id", authorID.String()).
		Int("stored", stored).
		Int("actual", actual).
		Msg("Fixed drifted books_count")

	return &Correction{AuthorID: authorID, Stored: stored, Actual: actual}, nil
}

// VerifyAll verifies every author. A failure on one author is recorded in the
// report and the pass continues. The returned error is non-nil only when the
// author list cannot be read or ctx is done.
func (m *Maintainer) VerifyAll(ctx context.Context) (*Report, error) {
	ids, err := m.store.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}

	report := newReport()
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		report.Checked++
		correction, err := m.Verify(ctx, id)
		if err != nil {
			m.logger.Error().Err(err).Str("author_id", id.String()).Msg("books_count verification failed")
			report.Failures = append(report.Failures, Failure{AuthorID: id, Error: err.Error()})
			continue
		}
		if correction != nil {
			report.Corrections = append(report.Corrections, *correction)
		}
	}

	m.logger.Info().
		Int("checked", report.Checked).
		Int("corrected", len(report.Corrections)).
		Int("failed", len(report.Failures)).
		Msg("books_count reconciliation finished")

	return report, nil
}

// Reconcile verifies one author, or every author when authorID is nil.
// Used by the maintenance endpoint and the reconcile job.
func (m *Maintainer) Reconcile(ctx context.Context, authorID *uuid.UUID) (*Report, error) {
	if authorID == nil {
		return m.VerifyAll(ctx)
	}

	report := newReport()
	report.Checked = 1
	correction, err := m.Verify(ctx, *authorID)
	if err != nil {
		return nil, err
	}
	if correction != nil {
		report.Corrections = append(report.Corrections, *correction)
	}
	return report, nil
}

// ========================================
// NOTIFICATIONS
// ========================================

// Handle applies the reaction for one book notification:
//
//	Created        increment(new) -> verify(new)
//	AuthorChanged  decrement(old) -> verify(old), increment(new) -> verify(new)
//	Deleted        decrement(old) -> verify(old)
//
// Every step runs even if an earlier one failed; errors are joined.
func (m *Maintainer) Handle(ctx context.Context, n book.Notification) error {
	switch n := n.(type) {
	case book.Created:
		return m.adjustAndVerify(ctx, n.Book.AuthorID, ActionIncrement)
	case book.AuthorChanged:
		errs := []error{m.adjustAndVerify(ctx, n.OldAuthorID, ActionDecrement)}
		if n.Book.AuthorID != uuid.Nil {
			errs = append(errs, m.adjustAndVerify(ctx, n.Book.AuthorID, ActionIncrement))
		}
		return errors.Join(errs...)
	case book.Deleted:
		return m.adjustAndVerify(ctx, n.Book.AuthorID, ActionDecrement)
	default:
		return fmt.Errorf("unsupported book notification %T", n)
	}
}

// Notify implements book.Notifier. Failures are logged and swallowed so the
// committed book mutation still succeeds.
func (m *Maintainer) Notify(ctx context.Context, n book.Notification) {
	// the book row is already committed; a client disconnect must not skip maintenance
	ctx = context.WithoutCancel(ctx)

	if err := m.Handle(ctx, n); err != nil {
		m.logger.Error().
			Err(err).
			Str("notification", n.Kind()).
			Msg("books_count maintenance failed")
	}
}

func (m *Maintainer) adjustAndVerify(ctx context.Context, authorID uuid.UUID, action Action) error {
	adjustErr := m.Apply(ctx, authorID, action)
	_, verifyErr := m.Verify(ctx, authorID)
	return errors.Join(adjustErr, verifyErr)
}
