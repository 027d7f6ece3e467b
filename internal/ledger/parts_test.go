package ledger

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "workshop/internal/errors"
	"workshop/internal/events"
	"workshop/internal/model"
)

func TestListLowStock_Ordering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := func(sku string, stock, min int) *model.Part {
		p, err := f.ledger.CreatePart(ctx, PartInput{Name: "Part " + sku, SKU: sku, Stock: stock, MinStock: min})
		require.NoError(t, err)
		return p
	}
	one := create("FO-2", 4, 5)      // deficit 1
	three := create("FO-1", 2, 5)    // deficit 3
	create("OK-1", 10, 5)            // not low
	zeroA := create("EQ-1", 5, 5)    // deficit 0
	zeroB := create("EQ-2", 0, 0)    // deficit 0, newer
	oneNewer := create("FO-3", 0, 1) // deficit 1, newer than FO-2

	first, err := f.ledger.ListLowStock(ctx)
	require.NoError(t, err)

	var ids []uint
	for _, p := range first {
		assert.True(t, p.Stock <= p.MinStock)
		assert.Equal(t, p.MinStock-p.Stock, p.Deficit)
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []uint{three.ID, oneNewer.ID, one.ID, zeroB.ID, zeroA.ID}, ids)
	assert.Equal(t, 3, first[0].Deficit)
	assert.Equal(t, "FO-1", first[0].SKU)

	second, err := f.ledger.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Deficit, second[i].Deficit)
	}
}

func TestCreatePart_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.ledger.CreatePart(ctx, PartInput{Name: "Filter", SKU: "F-1"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    PartInput
		wantKind apperrors.Kind
	}{
		{name: "missing sku", input: PartInput{Name: "Filter"}, wantKind: apperrors.KindBadRequest},
		{name: "missing name", input: PartInput{SKU: "F-2"}, wantKind: apperrors.KindBadRequest},
		{name: "negative stock", input: PartInput{Name: "Filter", SKU: "F-2", Stock: -1}, wantKind: apperrors.KindBadRequest},
		{name: "negative min stock", input: PartInput{Name: "Filter", SKU: "F-2", MinStock: -1}, wantKind: apperrors.KindBadRequest},
		{name: "negative price", input: PartInput{Name: "Filter", SKU: "F-2", Price: mustDecimal(t, "-0.01")}, wantKind: apperrors.KindBadRequest},
		{name: "duplicate sku", input: PartInput{Name: "Other", SKU: "F-1"}, wantKind: apperrors.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.CreatePart(ctx, tt.input)
			assertKind(t, tt.wantKind, err)
		})
	}
}

func TestReserveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.ledger.CreatePart(ctx, PartInput{Name: "Brake pad", SKU: "BP-1", Stock: 5, MinStock: 2})
	require.NoError(t, err)

	_, err = f.ledger.ReserveStock(ctx, p.ID, 0)
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.ledger.ReserveStock(ctx, p.ID, 6)
	assertKind(t, apperrors.KindConflict, err)
	unchanged, err := f.ledger.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, unchanged.Stock)

	_, err = f.ledger.ReserveStock(ctx, 999, 1)
	assertKind(t, apperrors.KindNotFound, err)

	got, err := f.ledger.ReserveStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Stock)

	restocked, err := f.ledger.RestockPart(ctx, p.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, restocked.Stock)

	_, err = f.ledger.RestockPart(ctx, 999, 1)
	assertKind(t, apperrors.KindNotFound, err)
}

func TestReserveStock_ConcurrentNeverNegative(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.ledger.CreatePart(ctx, PartInput{Name: "Spark plug", SKU: "SP-1", Stock: 5, MinStock: 0})
	require.NoError(t, err)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.ReserveStock(ctx, p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case apperrors.Is(err, apperrors.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 7, conflicts)
	final, err := f.ledger.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, final.Stock)
}

func TestReserveStock_LowStockAlertsAdmins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	second := f.addUser(t, "admin2@example.com", model.RoleAdmin, model.UserStatusActive)
	f.addUser(t, "blocked-admin@example.com", model.RoleAdmin, model.UserStatusBlocked)

	p, err := f.ledger.CreatePart(ctx, PartInput{Name: "Oil filter", SKU: "OF-1", Stock: 6, MinStock: 3})
	require.NoError(t, err)

	// Still above the threshold.
	_, err = f.ledger.ReserveStock(ctx, p.ID, 2)
	require.NoError(t, err)
	assert.Empty(t, f.recorder.OfType(events.PartLowStock))

	// Crosses the threshold: 4 -> 2 with min 3.
	_, err = f.ledger.ReserveStock(ctx, p.ID, 2)
	require.NoError(t, err)

	// Already low: no second alert.
	_, err = f.ledger.ReserveStock(ctx, p.ID, 1)
	require.NoError(t, err)

	alerts := f.recorder.OfType(events.PartLowStock)
	require.Len(t, alerts, 1)
	ev := alerts[0].(events.PartLowStockEvent)
	assert.Equal(t, "OF-1", ev.SKU)
	assert.Equal(t, 2, ev.Stock)
	assert.Equal(t, 1, ev.Deficit)

	for _, admin := range []uint{f.admin.UserID, second.UserID} {
		list, err := f.store.Notifications().ListForUser(ctx, admin, false, 100)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Low stock: Oil filter", list[0].Title)
	}
	for _, nonAdmin := range []uint{f.user.UserID, f.other.UserID} {
		list, err := f.store.Notifications().ListForUser(ctx, nonAdmin, false, 100)
		require.NoError(t, err)
		assert.Empty(t, list)
	}
}

func TestUpdatePart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a, err := f.ledger.CreatePart(ctx, PartInput{Name: "A", SKU: "A-1", Stock: 10, MinStock: 2})
	require.NoError(t, err)
	_, err = f.ledger.CreatePart(ctx, PartInput{Name: "B", SKU: "B-1", Stock: 10, MinStock: 2})
	require.NoError(t, err)

	_, err = f.ledger.UpdatePart(ctx, a.ID, PartPatch{SKU: strPtr("B-1")})
	assertKind(t, apperrors.KindConflict, err)

	_, err = f.ledger.UpdatePart(ctx, a.ID, PartPatch{Stock: intPtr(-3)})
	assertKind(t, apperrors.KindBadRequest, err)

	_, err = f.ledger.UpdatePart(ctx, 999, PartPatch{Stock: intPtr(1)})
	assertKind(t, apperrors.KindNotFound, err)

	price := mustDecimal(t, "49.90")
	updated, err := f.ledger.UpdatePart(ctx, a.ID, PartPatch{MinStock: intPtr(12), Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 12, updated.MinStock)
	assert.True(t, price.Equal(updated.Price))
	assert.Len(t, f.recorder.OfType(events.PartLowStock), 1, "raising the threshold above stock is a crossing")
}
