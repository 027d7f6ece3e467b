package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

func TestCreateAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v1 := f.vehicle(t, c1.ID, "KR1234A")
	v2 := f.vehicle(t, c2.ID, "WA5555X")
	o1 := f.order(t, f.user, c1.ID, v1.ID)

	tests := []struct {
		name     string
		input    AppointmentInput
		wantKind apperrors.Kind
	}{
		{name: "missing title", input: AppointmentInput{StartAt: ptrTime(day(2))}, wantKind: apperrors.KindBadRequest},
		{name: "missing start", input: AppointmentInput{Title: "Inspection"}, wantKind: apperrors.KindBadRequest},
		{name: "bad status", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), Status: "zaplanowana"}, wantKind: apperrors.KindBadRequest},
		{name: "end before start", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(3)), EndAt: ptrTime(day(2))}, wantKind: apperrors.KindBadRequest},
		{name: "unknown vehicle", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), VehicleID: uintPtr(999)}, wantKind: apperrors.KindNotFound},
		{name: "unknown order", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), OrderID: uintPtr(999)}, wantKind: apperrors.KindNotFound},
		{name: "vehicle of other customer", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), CustomerID: &c1.ID, VehicleID: &v2.ID}, wantKind: apperrors.KindBadRequest},
		{name: "order of other customer", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), CustomerID: &c2.ID, OrderID: &o1.ID}, wantKind: apperrors.KindBadRequest},
		{name: "order for other vehicle", input: AppointmentInput{Title: "T", StartAt: ptrTime(day(2)), VehicleID: &v2.ID, OrderID: &o1.ID}, wantKind: apperrors.KindBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateAppointment(ctx, tt.input)
			assertKind(t, tt.wantKind, err)
		})
	}

	a, err := f.ledger.CreateAppointment(ctx, AppointmentInput{Title: "Oil change", StartAt: ptrTime(day(4)), OrderID: &o1.ID})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, a.Status)
	require.NotNil(t, a.CustomerID)
	require.NotNil(t, a.VehicleID)
	assert.Equal(t, c1.ID, *a.CustomerID, "customer comes from the order")
	assert.Equal(t, v1.ID, *a.VehicleID, "vehicle comes from the order")
}

func TestUpdateAppointment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v2 := f.vehicle(t, c2.ID, "WA5555X")

	a, err := f.ledger.CreateAppointment(ctx, AppointmentInput{Title: "Check", StartAt: ptrTime(day(4)), CustomerID: &c1.ID})
	require.NoError(t, err)

	_, err = f.ledger.UpdateAppointment(ctx, a.ID, AppointmentPatch{VehicleID: &v2.ID})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.ledger.UpdateAppointment(ctx, a.ID, AppointmentPatch{EndAt: ptrTime(day(3))})
	assertKind(t, apperrors.KindBadRequest, err)

	done := model.AppointmentStatusDone
	_, err = f.ledger.UpdateAppointment(ctx, a.ID, AppointmentPatch{Status: &done})
	assertKind(t, apperrors.KindInvalidTransition, err)

	inProgress := model.AppointmentStatusInProgress
	moved, err := f.ledger.UpdateAppointment(ctx, a.ID, AppointmentPatch{Status: &inProgress, CustomerID: &c2.ID, VehicleID: &v2.ID})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusInProgress, moved.Status)
	assert.Equal(t, v2.ID, *moved.VehicleID)

	_, err = f.ledger.UpdateAppointment(ctx, a.ID, AppointmentPatch{Status: &done})
	require.NoError(t, err)

	_, err = f.ledger.UpdateAppointment(ctx, 999, AppointmentPatch{Title: strPtr("x")})
	assertKind(t, apperrors.KindNotFound, err)
}

func TestListAppointments_StartOrderAndWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late, err := f.ledger.CreateAppointment(ctx, AppointmentInput{Title: "Late", StartAt: ptrTime(day(20))})
	require.NoError(t, err)
	early, err := f.ledger.CreateAppointment(ctx, AppointmentInput{Title: "Early", StartAt: ptrTime(day(2))})
	require.NoError(t, err)
	mid, err := f.ledger.CreateAppointment(ctx, AppointmentInput{Title: "Mid", StartAt: ptrTime(day(10))})
	require.NoError(t, err)

	all, err := f.ledger.ListAppointments(ctx, repository.AppointmentFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{early.ID, mid.ID, late.ID}, []uint{all[0].ID, all[1].ID, all[2].ID})

	window, err := f.ledger.ListAppointments(ctx, repository.AppointmentFilter{From: ptrTime(day(5)), To: ptrTime(day(15))})
	require.NoError(t, err)
	require.Len(t, window, 1)
	assert.Equal(t, mid.ID, window[0].ID)

	require.NoError(t, f.ledger.DeleteAppointment(ctx, mid.ID))
	assertKind(t, apperrors.KindNotFound, f.ledger.DeleteAppointment(ctx, mid.ID))
}
