package ledger

import (
	"context"
	"strings"
	"time"

	apperrors "workshop/internal/errors"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// VehicleInput holds the fields of a new vehicle.
type VehicleInput struct {
	CustomerID    uint
	Make          string
	Model         string
	Year          *int
	Plate         string
	VIN           string
	LastServiceAt *time.Time
}

// VehiclePatch holds the fields to change; nil means unchanged.
type VehiclePatch struct {
	CustomerID    *uint
	Make          *string
	Model         *string
	Year          *int
	Plate         *string
	VIN           *string
	LastServiceAt *time.Time
}

func (p VehiclePatch) empty() bool {
	return p.CustomerID == nil && p.Make == nil && p.Model == nil && p.Year == nil &&
		p.Plate == nil && p.VIN == nil && p.LastServiceAt == nil
}

// CreateVehicle registers a vehicle to an existing customer. Plates are
// unique across all customers.
func (l *Ledger) CreateVehicle(ctx context.Context, in VehicleInput) (*model.Vehicle, error) {
	var absent []string
	if in.CustomerID == 0 {
		absent = append(absent, "customer_id")
	}
	if blank(in.Make) {
		absent = append(absent, "make")
	}
	if blank(in.Model) {
		absent = append(absent, "model")
	}
	if blank(in.Plate) {
		absent = append(absent, "plate")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	vin, err := normalizeVIN(in.VIN)
	if err != nil {
		return nil, err
	}
	if err := checkYear(in.Year, l.now()); err != nil {
		return nil, err
	}

	vehicle := &model.Vehicle{
		CustomerID:    in.CustomerID,
		Make:          strings.TrimSpace(in.Make),
		Model:         strings.TrimSpace(in.Model),
		Year:          in.Year,
		Plate:         NormalizePlate(in.Plate),
		VIN:           vin,
		LastServiceAt: in.LastServiceAt,
	}

	err = l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Customers().FindByID(ctx, in.CustomerID); err != nil {
			return lookupErr(err, "customer")
		}
		if err := plateFree(ctx, tx, vehicle.Plate, 0); err != nil {
			return err
		}
		if err := tx.Vehicles().Create(ctx, vehicle); err != nil {
			return writeErr(err, "create vehicle", "plate already registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetVehicle(ctx, vehicle.ID)
}

// UpdateVehicle changes the supplied fields of a vehicle. A vehicle that
// already has orders or appointments cannot move to another customer, since
// those rows must keep pointing at a vehicle their customer owns.
func (l *Ledger) UpdateVehicle(ctx context.Context, id uint, patch VehiclePatch) (*model.Vehicle, error) {
	if patch.empty() {
		return nil, errNoFields
	}

	fields := repository.Fields{}
	if patch.Make != nil {
		if blank(*patch.Make) {
			return nil, missing("make")
		}
		fields["make"] = strings.TrimSpace(*patch.Make)
	}
	if patch.Model != nil {
		if blank(*patch.Model) {
			return nil, missing("model")
		}
		fields["model"] = strings.TrimSpace(*patch.Model)
	}
	if patch.Year != nil {
		if err := checkYear(patch.Year, l.now()); err != nil {
			return nil, err
		}
		fields["year"] = *patch.Year
	}
	var plate string
	if patch.Plate != nil {
		if blank(*patch.Plate) {
			return nil, missing("plate")
		}
		plate = NormalizePlate(*patch.Plate)
		fields["plate"] = plate
	}
	if patch.VIN != nil {
		vin, err := normalizeVIN(*patch.VIN)
		if err != nil {
			return nil, err
		}
		fields["vin"] = vin
	}
	if patch.LastServiceAt != nil {
		fields["last_service_at"] = *patch.LastServiceAt
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		vehicle, err := tx.Vehicles().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, "vehicle")
		}
		if patch.CustomerID != nil && *patch.CustomerID != vehicle.CustomerID {
			if _, err := tx.Customers().FindByID(ctx, *patch.CustomerID); err != nil {
				return lookupErr(err, "customer")
			}
			n, err := tx.Orders().CountByVehicle(ctx, id)
			if err != nil {
				return apperrors.Internal("count vehicle orders", err)
			}
			if n > 0 {
				return apperrors.Conflict("vehicle has orders and cannot change owner")
			}
			n, err = tx.Appointments().CountByVehicle(ctx, id)
			if err != nil {
				return apperrors.Internal("count vehicle appointments", err)
			}
			if n > 0 {
				return apperrors.Conflict("vehicle has appointments and cannot change owner")
			}
			fields["customer_id"] = *patch.CustomerID
		}
		if plate != "" && plate != vehicle.Plate {
			if err := plateFree(ctx, tx, plate, id); err != nil {
				return err
			}
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Vehicles().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update vehicle", "plate already registered")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return l.GetVehicle(ctx, id)
}

// DeleteVehicle removes a vehicle and its orders.
func (l *Ledger) DeleteVehicle(ctx context.Context, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Vehicles().FindByIDForUpdate(ctx, id); err != nil {
			return lookupErr(err, "vehicle")
		}
		if err := tx.Vehicles().Delete(ctx, id); err != nil {
			return writeErr(err, "delete vehicle", "vehicle is still referenced")
		}
		return nil
	})
}

// GetVehicle returns one vehicle with its owner.
func (l *Ledger) GetVehicle(ctx context.Context, id uint) (*model.Vehicle, error) {
	vehicle, err := l.store.Vehicles().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "vehicle")
	}
	return vehicle, nil
}

// ListVehicles returns vehicles matching the filter, newest first.
func (l *Ledger) ListVehicles(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	vehicles, err := l.store.Vehicles().List(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("list vehicles", err)
	}
	return vehicles, nil
}

// plateFree fails with Conflict when another vehicle already uses plate.
func plateFree(ctx context.Context, tx repository.Store, plate string, self uint) error {
	existing, err := tx.Vehicles().FindByPlate(ctx, plate)
	var found uint
	if existing != nil {
		found = existing.ID
	}
	return unique(err, found, self, "plate already registered")
}
