package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

func TestCreateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v1 := f.vehicle(t, c1.ID, "KR1234A")
	o1 := f.order(t, f.user, c1.ID, v1.ID)

	amount := mustDecimal(t, "250.00")
	zero := mustDecimal(t, "0")
	negative := mustDecimal(t, "-5")

	_, err := f.ledger.CreateInvoice(ctx, InvoiceInput{Number: "FV/1", CustomerID: c1.ID, OrderID: &o1.ID, IssueDate: ptrTime(day(1)), Amount: &amount})
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    InvoiceInput
		wantKind apperrors.Kind
	}{
		{name: "missing number", input: InvoiceInput{CustomerID: c1.ID, IssueDate: ptrTime(day(1)), Amount: &amount}, wantKind: apperrors.KindBadRequest},
		{name: "missing amount", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, IssueDate: ptrTime(day(1))}, wantKind: apperrors.KindBadRequest},
		{name: "missing issue date", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, Amount: &amount}, wantKind: apperrors.KindBadRequest},
		{name: "zero amount", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, IssueDate: ptrTime(day(1)), Amount: &zero}, wantKind: apperrors.KindBadRequest},
		{name: "negative amount", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, IssueDate: ptrTime(day(1)), Amount: &negative}, wantKind: apperrors.KindBadRequest},
		{name: "bad status", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, IssueDate: ptrTime(day(1)), Amount: &amount, Status: "oczekuje"}, wantKind: apperrors.KindBadRequest},
		{name: "due before issue", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, IssueDate: ptrTime(day(5)), DueDate: ptrTime(day(4)), Amount: &amount}, wantKind: apperrors.KindBadRequest},
		{name: "unknown customer", input: InvoiceInput{Number: "FV/2", CustomerID: 999, IssueDate: ptrTime(day(1)), Amount: &amount}, wantKind: apperrors.KindNotFound},
		{name: "unknown order", input: InvoiceInput{Number: "FV/2", CustomerID: c1.ID, OrderID: uintPtr(999), IssueDate: ptrTime(day(1)), Amount: &amount}, wantKind: apperrors.KindNotFound},
		{name: "order of other customer", input: InvoiceInput{Number: "FV/2", CustomerID: c2.ID, OrderID: &o1.ID, IssueDate: ptrTime(day(1)), Amount: &amount}, wantKind: apperrors.KindBadRequest},
		{name: "duplicate number", input: InvoiceInput{Number: "FV/1", CustomerID: c2.ID, IssueDate: ptrTime(day(1)), Amount: &amount}, wantKind: apperrors.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateInvoice(ctx, tt.input)
			assertKind(t, tt.wantKind, err)
		})
	}

	var typed *apperrors.Error
	_, err = f.ledger.CreateInvoice(ctx, InvoiceInput{Number: "FV/3", CustomerID: c1.ID, IssueDate: ptrTime(day(1)), Amount: &amount, Status: "open"})
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, []string{"pending", "paid", "cancelled", "overdue"}, typed.Allowed)

	assert.Len(t, f.recorder.OfType(events.InvoiceCreated), 1)
}

func TestUpdateInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v1 := f.vehicle(t, c1.ID, "KR1234A")
	o1 := f.order(t, f.user, c1.ID, v1.ID)
	amount := mustDecimal(t, "99.99")

	inv, err := f.ledger.CreateInvoice(ctx, InvoiceInput{Number: "FV/1", CustomerID: c1.ID, OrderID: &o1.ID, IssueDate: ptrTime(day(1)), Amount: &amount})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusPending, inv.Status)
	_, err = f.ledger.CreateInvoice(ctx, InvoiceInput{Number: "FV/2", CustomerID: c2.ID, IssueDate: ptrTime(day(1)), Amount: &amount})
	require.NoError(t, err)

	_, err = f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{CustomerID: &c2.ID})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{Number: strPtr("FV/2")})
	assertKind(t, apperrors.KindConflict, err)

	zero := mustDecimal(t, "0")
	_, err = f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{Amount: &zero})
	assertKind(t, apperrors.KindBadRequest, err)

	overdue := model.InvoiceStatusOverdue
	updated, err := f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{Status: &overdue})
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceStatusOverdue, updated.Status)

	paid := model.InvoiceStatusPaid
	_, err = f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{Status: &paid})
	require.NoError(t, err)

	pending := model.InvoiceStatusPending
	_, err = f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{Status: &pending})
	assertKind(t, apperrors.KindInvalidTransition, err)

	found, err := f.ledger.ListInvoices(ctx, repository.InvoiceFilter{Query: "nowak"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, inv.ID, found[0].ID)

	require.NoError(t, f.ledger.DeleteInvoice(ctx, inv.ID))
	_, err = f.ledger.GetInvoice(ctx, inv.ID)
	assertKind(t, apperrors.KindNotFound, err)
}
