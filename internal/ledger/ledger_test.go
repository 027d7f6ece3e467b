package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/internal/auth"
	"workshop/internal/db"
	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

type fixture struct {
	ledger   *Ledger
	store    repository.Store
	recorder *events.Recorder
	admin    auth.Identity
	user     auth.Identity
	other    auth.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB, err := db.Open(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, model.AutoMigrate(gormDB))
	t.Cleanup(func() { _ = db.Close(gormDB) })

	store := repository.NewStore(gormDB)
	rec := &events.Recorder{}
	f := &fixture{ledger: New(store, rec), store: store, recorder: rec}
	f.admin = f.addUser(t, "admin@example.com", model.RoleAdmin, model.UserStatusActive)
	f.user = f.addUser(t, "user@example.com", model.RoleUser, model.UserStatusActive)
	f.other = f.addUser(t, "other@example.com", model.RoleUser, model.UserStatusActive)
	return f
}

func (f *fixture) addUser(t *testing.T, email string, role model.Role, status model.UserStatus) auth.Identity {
	t.Helper()
	u := &model.User{FirstName: "Test", LastName: "User", Email: email, Role: role, Status: status, PasswordHash: "x"}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: u.Role}
}

func (f *fixture) customer(t *testing.T, name string) *model.Customer {
	t.Helper()
	c, err := f.ledger.CreateCustomer(context.Background(), CustomerInput{Name: name})
	require.NoError(t, err)
	return c
}

func (f *fixture) vehicle(t *testing.T, customerID uint, plate string) *model.Vehicle {
	t.Helper()
	v, err := f.ledger.CreateVehicle(context.Background(), VehicleInput{
		CustomerID: customerID, Make: "Toyota", Model: "Corolla", Plate: plate,
	})
	require.NoError(t, err)
	return v
}

func (f *fixture) order(t *testing.T, caller auth.Identity, customerID, vehicleID uint) *model.Order {
	t.Helper()
	o, err := f.ledger.CreateOrder(context.Background(), caller, OrderInput{
		Service: "Oil change", CustomerID: customerID, VehicleID: vehicleID,
	})
	require.NoError(t, err)
	return o
}

func assertKind(t *testing.T, want apperrors.Kind, err error) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want.String(), apperrors.KindOf(err).String(), "error: %v", err)
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// day returns midnight UTC of the n-th day of March 2026.
func day(n int) time.Time {
	return time.Date(2026, time.March, n, 0, 0, 0, 0, time.UTC)
}

func ptrTime(t time.Time) *time.Time { return &t }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func uintPtr(u uint) *uint    { return &u }

func TestScenario_CustomerVehicleOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.customer(t, "Adam Nowak")
	v1 := f.vehicle(t, c1.ID, "KR1234A")
	assert.Equal(t, c1.ID, v1.CustomerID)

	order, err := f.ledger.CreateOrder(ctx, f.user, OrderInput{Service: "Oil change", CustomerID: c1.ID, VehicleID: v1.ID})
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, order.Status)
	assert.Equal(t, f.user.UserID, order.CreatedByUserID)
	assert.Len(t, f.recorder.OfType(events.OrderCreated), 1)

	_, err = f.ledger.CreateVehicle(ctx, VehicleInput{CustomerID: c1.ID, Make: "Fiat", Model: "Panda", Plate: "KR1234A"})
	assertKind(t, apperrors.KindConflict, err)

	// Same plate written differently still collides.
	_, err = f.ledger.CreateVehicle(ctx, VehicleInput{CustomerID: c1.ID, Make: "Fiat", Model: "Panda", Plate: "kr 1234a"})
	assertKind(t, apperrors.KindConflict, err)

	vehicles, err := f.ledger.ListVehicles(ctx, repository.VehicleFilter{})
	require.NoError(t, err)
	assert.Len(t, vehicles, 1)
}

func TestScenario_VehicleOfAnotherCustomer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v2 := f.vehicle(t, c2.ID, "WA5555X")

	_, err := f.ledger.CreateOrder(ctx, f.user, OrderInput{Service: "X", CustomerID: c1.ID, VehicleID: v2.ID})
	assertKind(t, apperrors.KindBadRequest, err)
	assert.Contains(t, err.Error(), "vehicle does not belong to customer")

	orders, err := f.ledger.ListOrders(ctx, f.admin, repository.OrderFilter{})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.Empty(t, f.recorder.OfType(events.OrderCreated))
}

func TestCreateVehicle_Validation(t *testing.T) {
	f := newFixture(t)
	c := f.customer(t, "Adam Nowak")

	tests := []struct {
		name     string
		input    VehicleInput
		wantKind apperrors.Kind
	}{
		{name: "missing customer", input: VehicleInput{Make: "A", Model: "B", Plate: "P1"}, wantKind: apperrors.KindBadRequest},
		{name: "missing make", input: VehicleInput{CustomerID: c.ID, Model: "B", Plate: "P1"}, wantKind: apperrors.KindBadRequest},
		{name: "missing plate", input: VehicleInput{CustomerID: c.ID, Make: "A", Model: "B", Plate: "  "}, wantKind: apperrors.KindBadRequest},
		{name: "bad vin", input: VehicleInput{CustomerID: c.ID, Make: "A", Model: "B", Plate: "P1", VIN: "IOQ"}, wantKind: apperrors.KindBadRequest},
		{name: "year out of range", input: VehicleInput{CustomerID: c.ID, Make: "A", Model: "B", Plate: "P1", Year: intPtr(1700)}, wantKind: apperrors.KindBadRequest},
		{name: "unknown customer", input: VehicleInput{CustomerID: 999, Make: "A", Model: "B", Plate: "P1"}, wantKind: apperrors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreateVehicle(context.Background(), tt.input)
			assertKind(t, tt.wantKind, err)
		})
	}

	v, err := f.ledger.CreateVehicle(context.Background(), VehicleInput{
		CustomerID: c.ID, Make: "VW", Model: "Golf", Plate: "po-777", VIN: "wvwzzz1jzxw000001", Year: intPtr(2019),
	})
	require.NoError(t, err)
	assert.Equal(t, "PO777", v.Plate)
	assert.Equal(t, "WVWZZZ1JZXW000001", v.VIN)
	require.NotNil(t, v.Customer)
	assert.Equal(t, "Adam Nowak", v.Customer.Name)
}

func TestUpdateVehicle_OwnerChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	free := f.vehicle(t, c1.ID, "FREE1")
	busy := f.vehicle(t, c1.ID, "BUSY1")
	f.order(t, f.user, c1.ID, busy.ID)

	moved, err := f.ledger.UpdateVehicle(ctx, free.ID, VehiclePatch{CustomerID: &c2.ID})
	require.NoError(t, err)
	assert.Equal(t, c2.ID, moved.CustomerID)

	_, err = f.ledger.UpdateVehicle(ctx, busy.ID, VehiclePatch{CustomerID: &c2.ID})
	assertKind(t, apperrors.KindConflict, err)

	_, err = f.ledger.UpdateVehicle(ctx, busy.ID, VehiclePatch{CustomerID: uintPtr(999)})
	assertKind(t, apperrors.KindNotFound, err)

	_, err = f.ledger.UpdateVehicle(ctx, free.ID, VehiclePatch{Plate: strPtr("busy 1")})
	assertKind(t, apperrors.KindConflict, err)

	// Every order still points at a vehicle its customer owns.
	orders, err := f.ledger.ListOrders(ctx, f.admin, repository.OrderFilter{})
	require.NoError(t, err)
	for _, o := range orders {
		v, err := f.ledger.GetVehicle(ctx, o.VehicleID)
		require.NoError(t, err)
		assert.Equal(t, o.CustomerID, v.CustomerID)
	}
}

func TestUpdateVehicle_OwnerChangeWithAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c1 := f.customer(t, "Adam Nowak")
	c2 := f.customer(t, "Ewa Kowalska")
	v := f.vehicle(t, c1.ID, "KR1234A")

	appt, err := f.ledger.CreateAppointment(ctx, AppointmentInput{
		Title:     "Inspection",
		StartAt:   ptrTime(day(1)),
		VehicleID: &v.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, appt.CustomerID)
	assert.Equal(t, c1.ID, *appt.CustomerID)

	_, err = f.ledger.UpdateVehicle(ctx, v.ID, VehiclePatch{CustomerID: &c2.ID})
	assertKind(t, apperrors.KindConflict, err)

	got, err := f.ledger.GetVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, got.CustomerID)

	// The appointment's links still resolve.
	_, err = f.ledger.UpdateAppointment(ctx, appt.ID, AppointmentPatch{VehicleID: &v.ID})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteAppointment(ctx, appt.ID))
	moved, err := f.ledger.UpdateVehicle(ctx, v.ID, VehiclePatch{CustomerID: &c2.ID})
	require.NoError(t, err)
	assert.Equal(t, c2.ID, moved.CustomerID)
}

func TestPartialUpdate_NoFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	o := f.order(t, f.user, c.ID, v.ID)
	p, err := f.ledger.CreatePart(ctx, PartInput{Name: "Filter", SKU: "F-1", Stock: 3, MinStock: 1})
	require.NoError(t, err)
	amount := mustDecimal(t, "100.00")
	inv, err := f.ledger.CreateInvoice(ctx, InvoiceInput{Number: "FV/1", CustomerID: c.ID, IssueDate: ptrTime(day(1)), Amount: &amount})
	require.NoError(t, err)

	tests := []struct {
		name string
		call func() error
	}{
		{"customer", func() error { _, err := f.ledger.UpdateCustomer(ctx, c.ID, CustomerPatch{}); return err }},
		{"vehicle", func() error { _, err := f.ledger.UpdateVehicle(ctx, v.ID, VehiclePatch{}); return err }},
		{"order", func() error { _, err := f.ledger.UpdateOrder(ctx, f.user, o.ID, OrderPatch{}); return err }},
		{"part", func() error { _, err := f.ledger.UpdatePart(ctx, p.ID, PartPatch{}); return err }},
		{"invoice", func() error { _, err := f.ledger.UpdateInvoice(ctx, inv.ID, InvoicePatch{}); return err }},
		{"appointment", func() error { _, err := f.ledger.UpdateAppointment(ctx, 1, AppointmentPatch{}); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertKind(t, apperrors.KindBadRequest, tt.call())
		})
	}

	gotC, err := f.ledger.GetCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.UpdatedAt.UnixNano(), gotC.UpdatedAt.UnixNano())
	gotO, err := f.ledger.GetOrder(ctx, f.user, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusNew, gotO.Status)
}

func TestDeleteCustomer_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c := f.customer(t, "Adam Nowak")
	v := f.vehicle(t, c.ID, "KR1234A")
	o := f.order(t, f.user, c.ID, v.ID)

	require.NoError(t, f.ledger.DeleteCustomer(ctx, c.ID))

	_, err := f.ledger.GetVehicle(ctx, v.ID)
	assertKind(t, apperrors.KindNotFound, err)
	_, err = f.ledger.GetOrder(ctx, f.admin, o.ID)
	assertKind(t, apperrors.KindNotFound, err)

	assertKind(t, apperrors.KindNotFound, f.ledger.DeleteCustomer(ctx, c.ID))
}

func TestCustomers_SearchAndUpdate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.customer(t, "Adam Nowak")
	second := f.customer(t, "Ewa Kowalska")

	found, err := f.ledger.ListCustomers(ctx, "kowal")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)

	all, err := f.ledger.ListCustomers(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID, "newest first")

	updated, err := f.ledger.UpdateCustomer(ctx, second.ID, CustomerPatch{Phone: strPtr(" 600 100 200 ")})
	require.NoError(t, err)
	assert.Equal(t, "600 100 200", updated.Phone)
	assert.Equal(t, "Ewa Kowalska", updated.Name)

	_, err = f.ledger.UpdateCustomer(ctx, second.ID, CustomerPatch{Name: strPtr("")})
	assertKind(t, apperrors.KindBadRequest, err)
	_, err = f.ledger.UpdateCustomer(ctx, 999, CustomerPatch{Name: strPtr("X")})
	assertKind(t, apperrors.KindNotFound, err)
}
