package ledger

import (
	apperrors "workshop/internal/errors"
	"workshop/internal/model"
)

// transitions maps a status to the statuses it may move to. A status with no
// entry is terminal. Staying in the same status is always allowed.
type transitions[S ~string] map[S][]S

var orderTransitions = transitions[model.OrderStatus]{
	model.OrderStatusNew:        {model.OrderStatusInProgress, model.OrderStatusCancelled},
	model.OrderStatusInProgress: {model.OrderStatusDone, model.OrderStatusCancelled},
}

var appointmentTransitions = transitions[model.AppointmentStatus]{
	model.AppointmentStatusScheduled:  {model.AppointmentStatusInProgress, model.AppointmentStatusCancelled},
	model.AppointmentStatusInProgress: {model.AppointmentStatusDone, model.AppointmentStatusCancelled},
}

var invoiceTransitions = transitions[model.InvoiceStatus]{
	model.InvoiceStatusPending: {model.InvoiceStatusPaid, model.InvoiceStatusCancelled, model.InvoiceStatusOverdue},
	model.InvoiceStatusOverdue: {model.InvoiceStatusPaid, model.InvoiceStatusCancelled},
}

// check returns an InvalidTransition error listing the legal next states
// when from cannot move to to.
func (t transitions[S]) check(entity string, from, to S) error {
	if from == to {
		return nil
	}
	for _, next := range t[from] {
		if next == to {
			return nil
		}
	}
	return apperrors.InvalidTransition(entity, string(from), string(to), names(t[from]))
}

// Next returns the statuses reachable from s in one step.
func (t transitions[S]) Next(s S) []S {
	return t[s]
}

// validStatus returns a BadRequest carrying the full status set when s is
// not one of all.
func validStatus[S ~string](s S, all []S) error {
	for _, v := range all {
		if v == s {
			return nil
		}
	}
	return apperrors.BadRequestAllowed("invalid status", names(all))
}

func names[S ~string](in []S) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, string(s))
	}
	return out
}

// NextOrderStatuses returns where an order in status s may go next.
func NextOrderStatuses(s model.OrderStatus) []string {
	return names(orderTransitions.Next(s))
}
