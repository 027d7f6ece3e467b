package ledger

import (
	"context"
	"strings"

	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// CustomerInput holds the fields of a new customer.
type CustomerInput struct {
	Name  string
	Email string
	Phone string
	Notes string
}

// CustomerPatch holds the fields to change; nil means unchanged.
type CustomerPatch struct {
	Name  *string
	Email *string
	Phone *string
	Notes *string
}

func (p CustomerPatch) empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil && p.Notes == nil
}

// CreateCustomer inserts a customer.
func (l *Ledger) CreateCustomer(ctx context.Context, in CustomerInput) (*model.Customer, error) {
	if blank(in.Name) {
		return nil, missing("name")
	}
	customer := &model.Customer{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.ToLower(strings.TrimSpace(in.Email)),
		Phone: strings.TrimSpace(in.Phone),
		Notes: in.Notes,
	}
	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if err := tx.Customers().Create(ctx, customer); err != nil {
			return writeErr(err, "create customer", "customer already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return customer, nil
}

// UpdateCustomer changes the supplied fields of a customer.
func (l *Ledger) UpdateCustomer(ctx context.Context, id uint, patch CustomerPatch) (*model.Customer, error) {
	if patch.empty() {
		return nil, errNoFields
	}
	fields := repository.Fields{}
	if patch.Name != nil {
		if blank(*patch.Name) {
			return nil, missing("name")
		}
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		fields["email"] = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Phone != nil {
		fields["phone"] = strings.TrimSpace(*patch.Phone)
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Customers().FindByID(ctx, id); err != nil {
			return lookupErr(err, "customer")
		}
		if err := tx.Customers().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update customer", "customer already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetCustomer(ctx, id)
}

// DeleteCustomer removes a customer together with its vehicles, orders and invoices.
func (l *Ledger) DeleteCustomer(ctx context.Context, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Customers().FindByID(ctx, id); err != nil {
			return lookupErr(err, "customer")
		}
		if err := tx.Customers().Delete(ctx, id); err != nil {
			return writeErr(err, "delete customer", "customer is still referenced")
		}
		return nil
	})
}

// GetCustomer returns one customer.
func (l *Ledger) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	customer, err := l.store.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "customer")
	}
	return customer, nil
}

// ListCustomers returns customers matching q, newest first.
func (l *Ledger) ListCustomers(ctx context.Context, q string) ([]model.Customer, error) {
	customers, err := l.store.Customers().List(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("list customers", err)
	}
	return customers, nil
}
