package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
	"workshop/internal/repository"
)

// PartInput holds the fields of a new inventory part.
type PartInput struct {
	Name     string
	SKU      string
	Brand    string
	Stock    int
	MinStock int
	Price    decimal.Decimal
	Location string
}

// PartPatch holds the fields to change; nil means unchanged.
type PartPatch struct {
	Name     *string
	SKU      *string
	Brand    *string
	Stock    *int
	MinStock *int
	Price    *decimal.Decimal
	Location *string
}

func (p PartPatch) empty() bool {
	return p.Name == nil && p.SKU == nil && p.Brand == nil && p.Stock == nil &&
		p.MinStock == nil && p.Price == nil && p.Location == nil
}

// LowStockPart is a part at or below its threshold with its shortfall.
type LowStockPart struct {
	model.Part
	Deficit int `json:"deficit"`
}

func checkQuantities(stock, minStock *int, price *decimal.Decimal) error {
	if stock != nil && *stock < 0 {
		return apperrors.BadRequest("stock must not be negative")
	}
	if minStock != nil && *minStock < 0 {
		return apperrors.BadRequest("min_stock must not be negative")
	}
	if price != nil && price.IsNegative() {
		return apperrors.BadRequest("price must not be negative")
	}
	return nil
}

// CreatePart adds a part to the inventory. SKUs are unique. A part created
// below its threshold shows up in the low-stock report but raises no alert;
// alerts fire only when stock crosses the threshold.
func (l *Ledger) CreatePart(ctx context.Context, in PartInput) (*model.Part, error) {
	var absent []string
	if blank(in.Name) {
		absent = append(absent, "name")
	}
	if blank(in.SKU) {
		absent = append(absent, "sku")
	}
	if len(absent) > 0 {
		return nil, missing(absent...)
	}
	if err := checkQuantities(&in.Stock, &in.MinStock, &in.Price); err != nil {
		return nil, err
	}

	part := &model.Part{
		Name:     strings.TrimSpace(in.Name),
		SKU:      strings.TrimSpace(in.SKU),
		Brand:    strings.TrimSpace(in.Brand),
		Stock:    in.Stock,
		MinStock: in.MinStock,
		Price:    in.Price,
		Location: strings.TrimSpace(in.Location),
	}

	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if err := skuFree(ctx, tx, part.SKU, 0); err != nil {
			return err
		}
		if err := tx.Parts().Create(ctx, part); err != nil {
			return writeErr(err, "create part", "sku already exists")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// UpdatePart changes the supplied fields of a part. Setting stock or
// min_stock so that the part becomes low alerts the admins.
func (l *Ledger) UpdatePart(ctx context.Context, id uint, patch PartPatch) (*model.Part, error) {
	if patch.empty() {
		return nil, errNoFields
	}
	if err := checkQuantities(patch.Stock, patch.MinStock, patch.Price); err != nil {
		return nil, err
	}

	fields := repository.Fields{}
	if patch.Name != nil {
		if blank(*patch.Name) {
			return nil, missing("name")
		}
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.SKU != nil {
		if blank(*patch.SKU) {
			return nil, missing("sku")
		}
		fields["sku"] = strings.TrimSpace(*patch.SKU)
	}
	if patch.Brand != nil {
		fields["brand"] = strings.TrimSpace(*patch.Brand)
	}
	if patch.Stock != nil {
		fields["stock"] = *patch.Stock
	}
	if patch.MinStock != nil {
		fields["min_stock"] = *patch.MinStock
	}
	if patch.Price != nil {
		fields["price"] = *patch.Price
	}
	if patch.Location != nil {
		fields["location"] = strings.TrimSpace(*patch.Location)
	}

	var updated *model.Part
	err := l.write(ctx, func(ctx context.Context, tx repository.Store, out *outbox) error {
		before, err := tx.Parts().FindByIDForUpdate(ctx, id)
		if err != nil {
			return lookupErr(err, "part")
		}
		if sku, ok := fields["sku"].(string); ok && sku != before.SKU {
			if err := skuFree(ctx, tx, sku, id); err != nil {
				return err
			}
		}
		if err := tx.Parts().Update(ctx, id, fields); err != nil {
			return writeErr(err, "update part", "sku already exists")
		}
		if updated, err = tx.Parts().FindByID(ctx, id); err != nil {
			return lookupErr(err, "part")
		}
		if !before.IsLow() && updated.IsLow() {
			return l.lowStock(ctx, tx, out, updated)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ReserveStock takes qty units out of stock. The decrement only happens if
// enough units are available at the moment of the update, so concurrent
// reservations can never drive stock below zero.
func (l *Ledger) ReserveStock(ctx context.Context, id uint, qty int) (*model.Part, error) {
	if qty <= 0 {
		return nil, apperrors.BadRequest("quantity must be positive")
	}

	var part *model.Part
	err := l.write(ctx, func(ctx context.Context, tx repository.Store, out *outbox) error {
		ok, err := tx.Parts().DecrementStock(ctx, id, qty)
		if err != nil {
			return apperrors.Internal("reserve stock", err)
		}
		if part, err = tx.Parts().FindByID(ctx, id); err != nil {
			return lookupErr(err, "part")
		}
		if !ok {
			return apperrors.Conflict("insufficient stock: requested %d, available %d", qty, part.Stock)
		}
		if part.IsLow() && part.Stock+qty > part.MinStock {
			return l.lowStock(ctx, tx, out, part)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// RestockPart puts qty units back into stock.
func (l *Ledger) RestockPart(ctx context.Context, id uint, qty int) (*model.Part, error) {
	if qty <= 0 {
		return nil, apperrors.BadRequest("quantity must be positive")
	}

	var part *model.Part
	err := l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		ok, err := tx.Parts().IncrementStock(ctx, id, qty)
		if err != nil {
			return apperrors.Internal("restock part", err)
		}
		if !ok {
			return apperrors.NotFound("part")
		}
		if part, err = tx.Parts().FindByID(ctx, id); err != nil {
			return lookupErr(err, "part")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return part, nil
}

// DeletePart removes a part from the inventory.
func (l *Ledger) DeletePart(ctx context.Context, id uint) error {
	return l.write(ctx, func(ctx context.Context, tx repository.Store, _ *outbox) error {
		if _, err := tx.Parts().FindByIDForUpdate(ctx, id); err != nil {
			return lookupErr(err, "part")
		}
		if err := tx.Parts().Delete(ctx, id); err != nil {
			return writeErr(err, "delete part", "part is still referenced")
		}
		return nil
	})
}

// GetPart returns one part.
func (l *Ledger) GetPart(ctx context.Context, id uint) (*model.Part, error) {
	part, err := l.store.Parts().FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "part")
	}
	return part, nil
}

// ListParts returns parts matching q, newest first.
func (l *Ledger) ListParts(ctx context.Context, q string) ([]model.Part, error) {
	parts, err := l.store.Parts().List(ctx, q)
	if err != nil {
		return nil, apperrors.Internal("list parts", err)
	}
	return parts, nil
}

// ListLowStock returns every part with stock <= min_stock, largest deficit
// first and newest first among equal deficits. It is recomputed on every call.
func (l *Ledger) ListLowStock(ctx context.Context) ([]LowStockPart, error) {
	parts, err := l.store.Parts().ListLowStock(ctx)
	if err != nil {
		return nil, apperrors.Internal("list low stock", err)
	}
	out := make([]LowStockPart, len(parts))
	for i, p := range parts {
		out[i] = LowStockPart{Part: p, Deficit: p.Deficit()}
	}
	return out, nil
}

// lowStock notifies every active admin inside the transaction and queues a
// broker event for after the commit.
func (l *Ledger) lowStock(ctx context.Context, tx repository.Store, out *outbox, part *model.Part) error {
	admins, err := tx.Users().ListActiveAdmins(ctx)
	if err != nil {
		return apperrors.Internal("list admins", err)
	}
	notifications := make([]model.Notification, 0, len(admins))
	for _, admin := range admins {
		notifications = append(notifications, model.Notification{
			UserID: admin.ID,
			Title:  "Low stock: " + part.Name,
			Body:   fmt.Sprintf("SKU %s has %d left (minimum %d).", part.SKU, part.Stock, part.MinStock),
		})
	}
	if err := tx.Notifications().CreateBatch(ctx, notifications); err != nil {
		return apperrors.Internal("create low stock notifications", err)
	}
	out.add(events.PartLowStock, events.PartLowStockEvent{
		PartID:   part.ID,
		SKU:      part.SKU,
		Name:     part.Name,
		Stock:    part.Stock,
		MinStock: part.MinStock,
		Deficit:  part.Deficit(),
	}, l.publisher)
	return nil
}

func skuFree(ctx context.Context, tx repository.Store, sku string, self uint) error {
	existing, err := tx.Parts().FindBySKU(ctx, sku)
	var found uint
	if existing != nil {
		found = existing.ID
	}
	return unique(err, found, self, "sku already exists")
}
