// Package ledger enforces the rules that keep customers, vehicles, orders,
// appointments, parts and invoices consistent with each other. Every write
// runs in a single database transaction and re-validates its invariants
// there; events are published only after commit.
package ledger

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/repository"
)

var errNoFields = apperrors.BadRequest("no fields to update")

// Ledger is the single entry point for cross-entity writes.
type Ledger struct {
	store     repository.Store
	publisher events.Publisher
	now       func() time.Time
}

// New creates a ledger over the given store. A nil publisher disables events.
func New(store repository.Store, publisher events.Publisher) *Ledger {
	return &Ledger{
		store:     store,
		publisher: publisher,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type outbox []func(ctx context.Context)

func (o *outbox) add(routingKey string, payload interface{}, p events.Publisher) {
	*o = append(*o, func(ctx context.Context) {
		if p == nil {
			return
		}
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			log.Printf("ledger: publish %s: %v", routingKey, err)
		}
	})
}

// write runs fn in a transaction and flushes the collected events after a
// successful commit.
func (l *Ledger) write(ctx context.Context, fn func(ctx context.Context, tx repository.Store, out *outbox) error) error {
	var out outbox
	if err := l.store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		return fn(ctx, tx, &out)
	}); err != nil {
		return err
	}
	for _, send := range out {
		send(ctx)
	}
	return nil
}

// unique fails with Conflict when find returns a row other than self.
func unique(err error, foundID, self uint, conflict string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	case err != nil:
		return apperrors.Internal("check uniqueness", err)
	case foundID != self:
		return apperrors.Conflict("%s", conflict)
	}
	return nil
}

// lookupErr turns a repository read failure into a typed error.
func lookupErr(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(entity)
	}
	return apperrors.Internal("load "+entity, err)
}

// writeErr turns a repository write failure into a typed error. The
// constraint errors only surface here when a concurrent writer slipped in
// between the in-transaction check and the statement.
func writeErr(err error, op, conflict string) error {
	switch {
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.Conflict("%s", conflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return apperrors.Conflict("a referenced record no longer exists")
	default:
		return apperrors.Internal(op, err)
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// missing builds the BadRequest for absent required fields.
func missing(fields ...string) error {
	return apperrors.BadRequest("missing required fields: %s", strings.Join(fields, ", "))
}

func checkWindow(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return apperrors.BadRequest("end_at must not be before start_at")
	}
	return nil
}
