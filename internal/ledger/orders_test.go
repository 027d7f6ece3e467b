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

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")

	tests := []struct {
		name     string
		input    OrderInput
		wantKind apperrors.Kind
	}{
		{name: "missing service", input: OrderInput{CustomerID: c.ID, VehicleID: v.ID}, wantKind: apperrors.KindBadRequest},
		{name: "missing customer", input: OrderInput{Service: "X", VehicleID: v.ID}, wantKind: apperrors.KindBadRequest},
		{name: "missing vehicle", input: OrderInput{Service: "X", CustomerID: c.ID}, wantKind: apperrors.KindBadRequest},
		{name: "unknown customer", input: OrderInput{Service: "X", CustomerID: 999, VehicleID: v.ID}, wantKind: apperrors.KindNotFound},
		{name: "unknown vehicle", input: OrderInput{Service: "X", CustomerID: c.ID, VehicleID: 999}, wantKind: apperrors.KindNotFound},
		{name: "unknown mechanic", input: OrderInput{Service: "X", CustomerID: c.ID, VehicleID: v.ID, MechanicUserID: uintPtr(999)}, wantKind: apperrors.KindNotFound},
		{name: "end before start", input: OrderInput{Service: "X", CustomerID: c.ID, VehicleID: v.ID, StartAt: ptrTime(day(5)), EndAt: ptrTime(day(4))}, wantKind: apperrors.KindBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateOrder(context.Background(), f.user, tt.input)
			assertKind(t, tt.wantKind, err)
		})
	}

	mechanic := f.addUser(t, "mech@example.com", model.RoleMechanic, model.UserStatusActive)
	o, err := f.ledger.CreateOrder(context.Background(), f.user, OrderInput{
		Service: "Brakes", CustomerID: c.ID, VehicleID: v.ID, MechanicUserID: &mechanic.UserID,
	})
	require.NoError(t, err)
	require.NotNil(t, o.Mechanic)
	assert.Equal(t, mechanic.UserID, o.Mechanic.ID)
	require.NotNil(t, o.Vehicle)
	assert.Equal(t, "KR1234A", o.Vehicle.Plate)
}

func TestUpdateOrder_Access(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	o := f.order(t, f.user, c.ID, v.ID)

	_, err := f.ledger.UpdateOrder(ctx, f.user, 999, OrderPatch{Description: strPtr("x")})
	assertKind(t, apperrors.KindNotFound, err)

	_, err = f.ledger.UpdateOrder(ctx, f.other, o.ID, OrderPatch{Description: strPtr("x")})
	assertKind(t, apperrors.KindForbidden, err)

	bogus := model.OrderStatus("finished")
	_, err = f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{Status: &bogus})
	assertKind(t, apperrors.KindBadRequest, err)
	var typed *apperrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, []string{"new", "in_progress", "done", "cancelled"}, typed.Allowed)

	updated, err := f.ledger.UpdateOrder(ctx, f.admin, o.ID, OrderPatch{Description: strPtr("checked by admin")})
	require.NoError(t, err)
	assert.Equal(t, "checked by admin", updated.Description)

	_, err = f.ledger.GetOrder(ctx, f.other, o.ID)
	assertKind(t, apperrors.KindForbidden, err)
	assertKind(t, apperrors.KindForbidden, f.ledger.DeleteOrder(ctx, f.other, o.ID))
	require.NoError(t, f.ledger.DeleteOrder(ctx, f.user, o.ID))
}

func TestUpdateOrder_Mechanic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	mechanic := f.addUser(t, "mech@example.com", model.RoleMechanic, model.UserStatusActive)
	o := f.order(t, f.user, c.ID, v.ID)

	tests := []struct {
		name     string
		patch    OrderPatch
		wantKind *apperrors.Kind
		wantID   *uint
	}{
		{name: "assign", patch: OrderPatch{MechanicUserID: &mechanic.UserID}, wantID: &mechanic.UserID},
		{name: "unknown mechanic", patch: OrderPatch{MechanicUserID: uintPtr(999)}, wantKind: kindPtr(apperrors.KindNotFound)},
		{name: "set and clear together", patch: OrderPatch{MechanicUserID: &mechanic.UserID, ClearMechanic: true}, wantKind: kindPtr(apperrors.KindBadRequest)},
		{name: "clear", patch: OrderPatch{ClearMechanic: true}},
		{name: "clear again is harmless", patch: OrderPatch{ClearMechanic: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.ledger.UpdateOrder(ctx, f.user, o.ID, tt.patch)
			if tt.wantKind != nil {
				assertKind(t, *tt.wantKind, err)
				return
			}
			require.NoError(t, err)
			if tt.wantID == nil {
				assert.Nil(t, got.MechanicUserID)
				assert.Nil(t, got.Mechanic)
				return
			}
			require.NotNil(t, got.MechanicUserID)
			assert.Equal(t, *tt.wantID, *got.MechanicUserID)
		})
	}
}

func TestUpdateOrder_Transitions(t *testing.T) {
	tests := []struct {
		name        string
		path        []model.OrderStatus
		to          model.OrderStatus
		wantKind    *apperrors.Kind
		wantAllowed []string
	}{
		{name: "new to in_progress", to: model.OrderStatusInProgress},
		{name: "new to cancelled", to: model.OrderStatusCancelled},
		{name: "new to new is a no-op", to: model.OrderStatusNew},
		{name: "new to done skips work", to: model.OrderStatusDone, wantKind: kindPtr(apperrors.KindInvalidTransition), wantAllowed: []string{"in_progress", "cancelled"}},
		{name: "in_progress to done", path: []model.OrderStatus{model.OrderStatusInProgress}, to: model.OrderStatusDone},
		{name: "in_progress back to new", path: []model.OrderStatus{model.OrderStatusInProgress}, to: model.OrderStatusNew, wantKind: kindPtr(apperrors.KindInvalidTransition), wantAllowed: []string{"done", "cancelled"}},
		{name: "done is terminal", path: []model.OrderStatus{model.OrderStatusInProgress, model.OrderStatusDone}, to: model.OrderStatusCancelled, wantKind: kindPtr(apperrors.KindInvalidTransition), wantAllowed: []string{}},
		{name: "cancelled is terminal", path: []model.OrderStatus{model.OrderStatusCancelled}, to: model.OrderStatusInProgress, wantKind: kindPtr(apperrors.KindInvalidTransition), wantAllowed: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			c := f.customer(t, "Adam Nowak")
			v := f.vehicle(t, c.ID, "KR1234A")
			o := f.order(t, f.user, c.ID, v.ID)

			for _, step := range tt.path {
				s := step
				_, err := f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{Status: &s})
				require.NoError(t, err)
			}

			to := tt.to
			got, err := f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{Status: &to})
			if tt.wantKind != nil {
				assertKind(t, *tt.wantKind, err)
				var typed *apperrors.Error
				require.ErrorAs(t, err, &typed)
				assert.Equal(t, tt.wantAllowed, typed.Allowed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestUpdateOrder_PublishesStatusChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	o := f.order(t, f.user, c.ID, v.ID)

	status := model.OrderStatusInProgress
	_, err := f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{Status: &status})
	require.NoError(t, err)
	_, err = f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{Status: &status})
	require.NoError(t, err)

	changes := f.recorder.OfType(events.OrderStatusChanged)
	require.Len(t, changes, 1)
	ev := changes[0].(events.OrderStatusChangedEvent)
	assert.Equal(t, "new", ev.From)
	assert.Equal(t, "in_progress", ev.To)
	assert.Equal(t, f.user.UserID, ev.ChangedBy)
}

func TestListOrders_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	mine := f.order(t, f.user, c.ID, v.ID)
	theirs := f.order(t, f.other, c.ID, v.ID)

	own, err := f.ledger.ListOrders(ctx, f.user, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	all, err := f.ledger.ListOrders(ctx, f.admin, repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, theirs.ID, all[0].ID, "newest first")

	// A non-admin cannot widen the filter to someone else's orders.
	own, err = f.ledger.ListOrders(ctx, f.user, repository.OrderFilter{CreatedBy: &f.other.UserID})
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)

	searched, err := f.ledger.ListOrders(ctx, f.admin, repository.OrderFilter{Query: "kr1234"})
	require.NoError(t, err)
	assert.Len(t, searched, 2)

	_, err = f.ledger.ListOrders(ctx, f.admin, repository.OrderFilter{Status: "weird"})
	assertKind(t, apperrors.KindBadRequest, err)
}

func kindPtr(k apperrors.Kind) *apperrors.Kind { return &k }
