package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// InvoiceInput holds the fields of a new invoice. Status defaults to pending.
type InvoiceInput struct {
	Number     string
	CustomerID uint
	OrderID    *uint
	IssueDate  *time.Time
	DueDate    *time.Time
	Amount     *decimal.Decimal
	Status     model.InvoiceStatus
	PDFPath    string
}

// InvoicePatch holds the fields to change; nil means unchanged.
type InvoicePatch struct {
	Number     *string
	CustomerID *uint
	OrderID    *uint
	IssueDate  *time.Time
	DueDate    *time.Time
	Amount     *decimal.Decimal
	Status     *model.InvoiceStatus
	PDFPath    *string
}

func (p InvoicePatch) empty() bool {
	return p.Number == nil && p.CustomerID == nil && p.OrderID == nil && p.IssueDate == nil &&
		p.DueDate == nil && p.Amount == nil && p.Status == nil && p.PDFPath == nil
}

func checkAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return apperrors.BadRequest("amount must be greater than zero")
	}
	return nil
}

func checkDueDate(issue time.Time, due *time.Time) error {
	if due != nil && due.Before(issue) {
		return apperrors.BadRequest("due_date must not be before issue_date")
	}
	return nil
}

// invoiceOrder checks that an invoice's order exists and belongs to its customer.
func invoiceOrder(ctx context.Context, tx repository.Store, customerID uint, orderID *uint) error {
	if orderID == nil {
		return nil
	}
	order, err := tx.Orders().FindByIDForUpdate(ctx, *orderID)
	if err != nil {
		return lookupErr(err, "order")
	}
	if order.CustomerID != customerID {
		return apperrors.BadRequest("order does not belong to customer")
	}
	return nil
}

// CreateInvoice issues an invoice. Numbers are unique and amounts positive.
func (l *Ledger) CreateInvoice(ctx context.Context, in InvoiceInput) (*model.Invoice, error) {
	var absent []string
	if blank(in.Number) {
		absent = append(absent, "number")
	}
	if in.CustomerID == 0 {
		absent = append(absent, "customer_id")
	}
	if in.IssueDate == nil || in.IssueDate.IsZero() {
		absent = append(absent, "issue_date")
	}
	if in.Amount == nil {
		absent = append(absent, "amount")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	status := in.Status
	if status == "" {
		status = model.InvoiceStatusPending
	}
	if err := validStatus(status, model.InvoiceStatuses); err != nil {
		return nil, err
	}
	if err := checkAmount(*in.Amount); err != nil {
		return nil, err
	}
	if err := checkDueDate(*in.IssueDate, in.DueDate); err != nil {
		return nil, err
	}

	invoice := &model.Invoice{
		Number:     strings.TrimSpace(in.Number),
		CustomerID: in.CustomerID,
		OrderID:    in.OrderID,
		IssueDate:  *in.IssueDate,
		DueDate:    in.DueDate,
		Amount:     *in.Amount,
		Status:     status,
		PDFPath:    strings.TrimSpace(in.PDFPath),
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, out *outbox) error {
		if _, err := tx.Customers().FindByID(ctx, in.CustomerID); err != nil {
			return lookupErr(err, "customer")
		}
		if err := invoiceOrder(ctx, tx, in.CustomerID, in.OrderID); err != nil {
			return err
		}
		if err := numberFree(ctx, tx, invoice.Number, 0); err != nil {
			return err
		}
		if err := tx.Invoices().Create(ctx, invoice); err != nil {
			return writeErr(err, "create invoice", "invoice number already exists")
		}
		out.add(events.InvoiceCreated, events.InvoiceCreatedEvent{
			InvoiceID:  invoice.ID,
			Number:     invoice.Number,
			CustomerID: invoice.CustomerID,
			Amount:     invoice.Amount,
		}, l.publisher)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetInvoice(ctx, invoice.ID)
}

// UpdateInvoice changes the supplied fields. Status changes follow the
// invoice lifecycle and the order link is re-checked against the customer.
func (l *Ledger) UpdateInvoice(ctx context.Context, id uint, patch InvoicePatch) (*model.Invoice, error) {
	if patch.Status != nil {
		if err := validStatus(*patch.Status, model.InvoiceStatuses); err != nil {
			return nil, err
		}
	}
	if patch.empty() {
		return nil, errNoFields
	}
	if patch.Number != nil && blank(*patch.Number) {
		return nil, missing("number")
	}
	if patch.Amount != nil {
		if err := checkAmount(*patch.Amount); err != nil {
			return nil, err
		}
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		current, err := tx.Invoices().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, "invoice")
		}

		fields := repository.Fields{}
		if patch.Number != nil {
			number := strings.TrimSpace(*patch.Number)
			if number != current.Number {
				if err := numberFree(ctx, tx, number, id); err != nil {
					return err
				}
			}
			fields["number"] = number
		}
		if patch.Amount != nil {
			fields["amount"] = *patch.Amount
		}
		if patch.PDFPath != nil {
			fields["pdf_path"] = strings.TrimSpace(*patch.PDFPath)
		}
		if patch.Status != nil {
			if err := invoiceTransitions.check("invoice", current.Status, *patch.Status); err != nil {
				return err
			}
			fields["status"] = *patch.Status
		}

		issue, due := current.IssueDate, current.DueDate
		if patch.IssueDate != nil {
			issue = *patch.IssueDate
			fields["issue_date"] = issue
		}
		if patch.DueDate != nil {
			due = patch.DueDate
			fields["due_date"] = *patch.DueDate
		}
		if err := checkDueDate(issue, due); err != nil {
			return err
		}

		customerID, orderID := current.CustomerID, current.OrderID
		if patch.CustomerID != nil {
			if _, err := tx.Customers().FindByID(ctx, *patch.CustomerID); err != nil {
				return lookupErr(err, "customer")
			}
			customerID = *patch.CustomerID
			fields["customer_id"] = customerID
		}
		if patch.OrderID != nil {
			orderID = patch.OrderID
			fields["order_id"] = *patch.OrderID
		}
		if patch.CustomerID != nil || patch.OrderID != nil {
			if err := invoiceOrder(ctx, tx, customerID, orderID); err != nil {
				return err
			}
		}

		if err := tx.Invoices().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update invoice", "invoice number already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetInvoice(ctx, id)
}

// DeleteInvoice removes an invoice.
func (l *Ledger) DeleteInvoice(ctx context.Context, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Invoices().FindByIDForUpdate(ctx, id); err != nil {
			return lookupErr(err, "invoice")
		}
		if err := tx.Invoices().Delete(ctx, id); err != nil {
			return writeErr(err, "delete invoice", "invoice is still referenced")
		}
		return nil
	})
}

// GetInvoice returns one invoice.
func (l *Ledger) GetInvoice(ctx context.Context, id uint) (*model.Invoice, error) {
	invoice, err := l.store.Invoices().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "invoice")
	}
	return invoice, nil
}

// ListInvoices returns invoices matching the filter, newest first.
func (l *Ledger) ListInvoices(ctx context.Context, filter repository.InvoiceFilter) ([]model.Invoice, error) {
	if filter.Status != "" {
		if err := validStatus(filter.Status, model.InvoiceStatuses); err != nil {
			return nil, err
		}
	}
	invoices, err := l.store.Invoices().List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("list invoices", err)
	}
	return invoices, nil
}

func numberFree(ctx context.Context, tx repository.Store, number string, self uint) error {
	existing, err := tx.Invoices().FindByNumber(ctx, number)
	var found uint
	if existing != nil {
		found = existing.ID
	}
	return unique(err, found, self, "invoice number already exists")
}
