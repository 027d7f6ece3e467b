package ledger

import (
	"context"
	"strings"
	"time"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// OrderInput holds the fields of a new repair order.
type OrderInput struct {
	Service        string
	CustomerID     uint
	VehicleID      uint
	MechanicUserID *uint
	Description    string
	StartAt        *time.Time
	EndAt          *time.Time
}

// OrderPatch holds the fields to change; nil means unchanged.
// ClearMechanic unassigns the mechanic and cannot be combined with
// MechanicUserID.
type OrderPatch struct {
	Status         *model.OrderStatus
	Description    *string
	MechanicUserID *uint
	ClearMechanic  bool
	StartAt        *time.Time
	EndAt          *time.Time
}

func (p OrderPatch) empty() bool {
	return p.Status == nil && p.Description == nil && p.MechanicUserID == nil && !p.ClearMechanic &&
		p.StartAt == nil && p.EndAt == nil
}

// CreateOrder opens a repair order in status new on behalf of the caller.
// The vehicle must belong to the order's customer.
func (l *Ledger) CreateOrder(ctx context.Context, caller auth.Identity, in OrderInput) (*model.Order, error) {
	var absent []string
	if blank(in.Service) {
		absent = append(absent, "service")
	}
	if in.CustomerID == 0 {
		absent = append(absent, "customer_id")
	}
	if in.VehicleID == 0 {
		absent = append(absent, "vehicle_id")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	if err := checkWindow(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	order := &model.Order{
		Service:         strings.TrimSpace(in.Service),
		Status:          model.OrderStatusNew,
		Description:     in.Description,
		CustomerID:      in.CustomerID,
		VehicleID:       in.VehicleID,
		MechanicUserID:  in.MechanicUserID,
		CreatedByUserID: caller.UserID,
		StartAt:         in.StartAt,
		EndAt:           in.EndAt,
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, out *outbox) error {
		if _, err := tx.Customers().FindByID(ctx, in.CustomerID); err != nil {
			return lookupErr(err, "customer")
		}
		// Lock the vehicle so its owner cannot change before the insert.
		vehicle, err := tx.Vehicles().FindByIDForUpdate(ctx, in.VehicleID)
		if err != nil {
			return lookupErr(err, "vehicle")
		}
		if in.MechanicUserID != nil {
			if _, err := tx.Users().FindByID(ctx, *in.MechanicUserID); err != nil {
				return lookupErr(err, "mechanic")
			}
		}
		if vehicle.CustomerID != in.CustomerID {
			return apperrors.BadRequest("vehicle does not belong to customer")
		}
		if err := tx.Orders().Create(ctx, order); err != nil {
			return writeErr(err, "create order", "order already exists")
		}
		out.add(events.OrderCreated, events.OrderCreatedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			VehicleID:  order.VehicleID,
			Service:    order.Service,
			CreatedBy:  order.CreatedByUserID,
		}, l.publisher)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.loadOrder(ctx, order.ID)
}

// UpdateOrder changes the supplied fields of an order. Only admins and the
// order's creator may do so, and status changes follow the order lifecycle.
func (l *Ledger) UpdateOrder(ctx context.Context, caller auth.Identity, id uint, patch OrderPatch) (*model.Order, error) {
	var from, to model.OrderStatus

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, out *outbox) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if !caller.Owns(order.CreatedByUserID) {
			return apperrors.Forbidden("you can only modify your own orders")
		}
		if patch.Status != nil {
			if err := validStatus(*patch.Status, model.OrderStatuses); err != nil {
				return err
			}
		}
		if patch.empty() {
			return errNoFields
		}
		if patch.ClearMechanic && patch.MechanicUserID != nil {
			return apperrors.BadRequest("cannot both set and clear the mechanic")
		}

		fields := repository.Fields{}
		if patch.Status != nil {
			if err := orderTransitions.check("order", order.Status, *patch.Status); err != nil {
				return err
			}
			fields["status"] = *patch.Status
			from, to = order.Status, *patch.Status
		}
		if patch.Description != nil {
			fields["description"] = *patch.Description
		}
		if patch.MechanicUserID != nil {
			if _, err := tx.Users().FindByID(ctx, *patch.MechanicUserID); err != nil {
				return lookupErr(err, "mechanic")
			}
			fields["mechanic_user_id"] = *patch.MechanicUserID
		}
		if patch.ClearMechanic {
			fields["mechanic_user_id"] = nil
		}
		start, end := order.StartAt, order.EndAt
		if patch.StartAt != nil {
			start = patch.StartAt
			fields["start_at"] = *patch.StartAt
		}
		if patch.EndAt != nil {
			end = patch.EndAt
			fields["end_at"] = *patch.EndAt
		}
		if err := checkWindow(start, end); err != nil {
			return err
		}

		if err := tx.Orders().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update order", "order conflicts with existing data")
		}
		if from != to {
			out.add(events.OrderStatusChanged, events.OrderStatusChangedEvent{
				OrderID:   id,
				From:      string(from),
				To:        string(to),
				ChangedBy: caller.UserID,
			}, l.publisher)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.loadOrder(ctx, id)
}

// DeleteOrder removes an order. Only admins and the order's creator may do so.
func (l *Ledger) DeleteOrder(ctx context.Context, caller auth.Identity, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, "order")
		}
		if !caller.Owns(order.CreatedByUserID) {
			return apperrors.Forbidden("you can only delete your own orders")
		}
		if err := tx.Orders().Delete(ctx, id); err != nil {
			return writeErr(err, "delete order", "order is still referenced")
		}
		return nil
	})
}

// GetOrder returns one order visible to the caller.
func (l *Ledger) GetOrder(ctx context.Context, caller auth.Identity, id uint) (*model.Order, error) {
	order, err := l.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(order.CreatedByUserID) {
		return nil, apperrors.Forbidden("you can only view your own orders")
	}
	return order, nil
}

// ListOrders returns the orders visible to the caller, newest first.
// Non-admins only see orders they created.
func (l *Ledger) ListOrders(ctx context.Context, caller auth.Identity, filter repository.OrderFilter) ([]model.Order, error) {
	if !caller.IsAdmin() {
		uid := caller.UserID
		filter.CreatedBy = &uid
	}
	if filter.Status != "" {
		if err := validStatus(filter.Status, model.OrderStatuses); err != nil {
			return nil, err
		}
	}
	orders, err := l.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("list orders", err)
	}
	return orders, nil
}

func (l *Ledger) loadOrder(ctx context.Context, id uint) (*model.Order, error) {
	order, err := l.store.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "order")
	}
	return order, nil
}
