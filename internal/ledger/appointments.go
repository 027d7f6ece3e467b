package ledger

import (
	"context"
	"strings"
	"time"

	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// AppointmentInput holds the fields of a new appointment. Status defaults to
// scheduled.
type AppointmentInput struct {
	Title      string
	StartAt    *time.Time
	EndAt      *time.Time
	Status     model.AppointmentStatus
	CustomerID *uint
	VehicleID  *uint
	OrderID    *uint
	Notes      string
}

// AppointmentPatch holds the fields to change; nil means unchanged.
type AppointmentPatch struct {
	Title      *string
	StartAt    *time.Time
	EndAt      *time.Time
	Status     *model.AppointmentStatus
	CustomerID *uint
	VehicleID  *uint
	OrderID    *uint
	Notes      *string
}

func (p AppointmentPatch) empty() bool {
	return p.Title == nil && p.StartAt == nil && p.EndAt == nil && p.Status == nil &&
		p.CustomerID == nil && p.VehicleID == nil && p.OrderID == nil && p.Notes == nil
}

// links are the optional references of an appointment.
type links struct {
	customerID *uint
	vehicleID  *uint
	orderID    *uint
}

// resolve checks that every referenced row exists, fills in the customer and
// vehicle implied by an order or vehicle, and rejects combinations that
// disagree with each other.
func (k links) resolve(ctx context.Context, tx repository.Store) (links, error) {
	var (
		order   *model.Order
		vehicle *model.Vehicle
		err     error
	)
	if k.orderID != nil {
		if order, err = tx.Orders().FindByIDForUpdate(ctx, *k.orderID); err != nil {
			return k, lookupErr(err, "order")
		}
	}
	if k.vehicleID != nil {
		if vehicle, err = tx.Vehicles().FindByIDForUpdate(ctx, *k.vehicleID); err != nil {
			return k, lookupErr(err, "vehicle")
		}
	}
	if k.customerID != nil {
		if _, err = tx.Customers().FindByID(ctx, *k.customerID); err != nil {
			return k, lookupErr(err, "customer")
		}
	}

	if order != nil {
		if k.customerID == nil {
			k.customerID = &order.CustomerID
		} else if *k.customerID != order.CustomerID {
			return k, apperrors.BadRequest("order does not belong to customer")
		}
		if k.vehicleID == nil {
			k.vehicleID = &order.VehicleID
		} else if *k.vehicleID != order.VehicleID {
			return k, apperrors.BadRequest("order is for a different vehicle")
		}
	}
	if vehicle != nil {
		if k.customerID == nil {
			k.customerID = &vehicle.CustomerID
		} else if *k.customerID != vehicle.CustomerID {
			return k, apperrors.BadRequest("vehicle does not belong to customer")
		}
	}
	return k, nil
}

// CreateAppointment books an appointment. There is no overlap rule: the
// shop may run several bays at once.
func (l *Ledger) CreateAppointment(ctx context.Context, in AppointmentInput) (*model.Appointment, error) {
	var absent []string
	if blank(in.Title) {
		absent = append(absent, "title")
	}
	if in.StartAt == nil || in.StartAt.IsZero() {
		absent = append(absent, "start_at")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	status := in.Status
	if status == "" {
		status = model.AppointmentStatusScheduled
	}
	if err := validStatus(status, model.AppointmentStatuses); err != nil {
		return nil, err
	}
	if err := checkWindow(in.StartAt, in.EndAt); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		Title:   strings.TrimSpace(in.Title),
		StartAt: *in.StartAt,
		EndAt:   in.EndAt,
		Status:  status,
		Notes:   in.Notes,
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		resolved, err := links{in.CustomerID, in.VehicleID, in.OrderID}.resolve(ctx, tx)
		if err != nil {
			return err
		}
		appointment.CustomerID = resolved.customerID
		appointment.VehicleID = resolved.vehicleID
		appointment.OrderID = resolved.orderID
		if err := tx.Appointments().Create(ctx, appointment); err != nil {
			return writeErr(err, "create appointment", "appointment already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetAppointment(ctx, appointment.ID)
}

// UpdateAppointment changes the supplied fields. Status changes follow the
// appointment lifecycle.
func (l *Ledger) UpdateAppointment(ctx context.Context, id uint, patch AppointmentPatch) (*model.Appointment, error) {
	if patch.Status != nil {
		if err := validStatus(*patch.Status, model.AppointmentStatuses); err != nil {
			return nil, err
		}
	}
	if patch.empty() {
		return nil, errNoFields
	}
	if patch.Title != nil && blank(*patch.Title) {
		return nil, missing("title")
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		current, err := tx.Appointments().FindByID(ctx, id)
		if err != nil {
			return lookupErr(err, "appointment")
		}

		fields := repository.Fields{}
		if patch.Title != nil {
			fields["title"] = strings.TrimSpace(*patch.Title)
		}
		if patch.Notes != nil {
			fields["notes"] = *patch.Notes
		}
		if patch.Status != nil {
			if err := appointmentTransitions.check("appointment", current.Status, *patch.Status); err != nil {
				return err
			}
			fields["status"] = *patch.Status
		}

		start, end := &current.StartAt, current.EndAt
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

		if patch.CustomerID != nil || patch.VehicleID != nil || patch.OrderID != nil {
			merged := links{current.CustomerID, current.VehicleID, current.OrderID}
			if patch.CustomerID != nil {
				merged.customerID = patch.CustomerID
			}
			if patch.VehicleID != nil {
				merged.vehicleID = patch.VehicleID
			}
			if patch.OrderID != nil {
				merged.orderID = patch.OrderID
			}
			resolved, err := merged.resolve(ctx, tx)
			if err != nil {
				return err
			}
			fields["customer_id"] = resolved.customerID
			fields["vehicle_id"] = resolved.vehicleID
			fields["order_id"] = resolved.orderID
		}

		if err := tx.Appointments().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update appointment", "appointment conflicts with existing data")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetAppointment(ctx, id)
}

// DeleteAppointment removes an appointment.
func (l *Ledger) DeleteAppointment(ctx context.Context, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Appointments().FindByID(ctx, id); err != nil {
			return lookupErr(err, "appointment")
		}
		if err := tx.Appointments().Delete(ctx, id); err != nil {
			return writeErr(err, "delete appointment", "appointment is still referenced")
		}
		return nil
	})
}

// GetAppointment returns one appointment.
func (l *Ledger) GetAppointment(ctx context.Context, id uint) (*model.Appointment, error) {
	appointment, err := l.store.Appointments().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "appointment")
	}
	return appointment, nil
}

// ListAppointments returns appointments in start order.
func (l *Ledger) ListAppointments(ctx context.Context, filter repository.AppointmentFilter) ([]model.Appointment, error) {
	if filter.Status != "" {
		if err := validStatus(filter.Status, model.AppointmentStatuses); err != nil {
			return nil, err
		}
	}
	appointments, err := l.store.Appointments().List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("list appointments", err)
	}
	return appointments, nil
}
