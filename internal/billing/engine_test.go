package billing

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/apperr"
	"billgen/internal/auth"
	"billgen/internal/events"
	"billgen/internal/models"
	"billgen/internal/store"
	"billgen/internal/store/memory"
)

var october = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	engine *Engine
	events *events.Recorder
	now    time.Time
	alice  *auth.Identity
	bob    *auth.Identity
	admin  *auth.Identity
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.New(),
		events: &events.Recorder{},
		now:    october,
		alice:  &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleUser},
		bob:    &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleUser},
		admin:  &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleAdmin},
	}
	base := []Option{
		WithPublisher(f.events),
		WithClock(func() time.Time { return f.now }),
		WithLocation(time.UTC),
	}
	f.engine = NewEngine(f.store, f.store, append(base, opts...)...)
	return f
}

func itemInput(customer string) BillInput {
	return BillInput{
		Customer: models.Customer{Name: customer},
		Items:    []models.BillItem{{Description: "A", Quantity: 2, Rate: 50, Amount: 100}},
		TaxRate:  ptr(10.0),
		Discount: ptr(5.0),
	}
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreateComputesTotalsAndDefaults(t *testing.T) {
	f := newFixture(t)

	bill, err := f.engine.Create(context.Background(), f.alice, itemInput("Acme"))
	require.NoError(t, err)

	assert.Equal(t, "INV-2026-10-001", bill.BillNumber)
	assert.Equal(t, 100.0, bill.Subtotal)
	assert.Equal(t, 10.0, bill.TaxAmount)
	assert.Equal(t, 105.0, bill.GrandTotal)
	assert.Equal(t, models.BillStatusDraft, bill.Status)
	assert.Equal(t, october, bill.BillDate)
	assert.True(t, bill.OwnedBy(f.alice.ID))

	stored, err := f.store.FindBillByID(context.Background(), bill.ID)
	require.NoError(t, err)
	assert.Equal(t, stored.Subtotal+stored.TaxAmount-stored.Discount, stored.GrandTotal)

	recorded := f.events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, events.BillCreated, recorded[0].Type)
	assert.Equal(t, "INV-2026-10-001", recorded[0].BillNumber)
}

func TestCreateDefaultsItemQuantity(t *testing.T) {
	f := newFixture(t)
	in := BillInput{
		Customer: models.Customer{Name: "Acme"},
		Items:    []models.BillItem{{Description: "Consulting", Rate: 40, Amount: 40}},
	}

	bill, err := f.engine.Create(context.Background(), f.alice, in)
	require.NoError(t, err)
	assert.Equal(t, 1.0, bill.Items[0].Quantity)
}

func TestCreateWithoutItemsUsesSuppliedTotals(t *testing.T) {
	f := newFixture(t)
	in := BillInput{
		Customer:   models.Customer{Name: "Acme"},
		Subtotal:   ptr(80.0),
		GrandTotal: ptr(80.0),
		Status:     models.BillStatusUnpaid,
	}

	bill, err := f.engine.Create(context.Background(), f.alice, in)
	require.NoError(t, err)
	assert.Equal(t, 80.0, bill.GrandTotal)
	assert.Empty(t, bill.Items)

	in.GrandTotal = nil
	_, err = f.engine.Create(context.Background(), f.alice, in)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, nil, itemInput("Acme"))
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	in := itemInput("  ")
	in.Items = append(in.Items, models.BillItem{Amount: 1})
	in.Status = "void"
	_, err = f.engine.Create(ctx, f.alice, in)
	require.ErrorIs(t, err, apperr.ErrValidation)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Len(t, appErr.Details, 3)
	assert.Contains(t, appErr.Details, "customer.name is required")
	assert.Contains(t, appErr.Details, "items[1].description is required")
}

func TestNextBillNumberIsIdempotentThenAdvances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.engine.NextBillNumber(ctx, october)
	require.NoError(t, err)
	second, err := f.engine.NextBillNumber(ctx, october)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-001", first)
	assert.Equal(t, first, second)

	created, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)
	assert.Equal(t, first, created.BillNumber)

	next, err := f.engine.NextBillNumber(ctx, october)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-002", next)
}

func TestNumberingContinuesAfterExistingBills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.InsertBill(ctx, &models.Bill{BillNumber: "INV-2026-10-007"}))

	next, err := f.engine.NextBillNumber(ctx, october)
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-008", next)

	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-008", bill.BillNumber)
}

func TestNumberingRestartsEachMonth(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
		require.NoError(t, err)
	}

	f.now = time.Date(2026, time.November, 1, 0, 0, 0, 0, time.UTC)
	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-11-001", bill.BillNumber)
}

func TestConcurrentCreatesGetDistinctNumbers(t *testing.T) {
	f := newFixture(t)
	const n = 25

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := f.engine.Create(context.Background(), f.alice, itemInput("Acme"))
			if assert.NoError(t, err) {
				numbers <- bill.BillNumber
			}
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		assert.False(t, seen[number], "duplicate %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, n)
}

type duplicatingStore struct {
	*memory.Store
	failures int
}

func (s *duplicatingStore) InsertBill(ctx context.Context, bill *models.Bill) error {
	if s.failures > 0 {
		s.failures--
		return store.ErrDuplicate
	}
	return s.Store.InsertBill(ctx, bill)
}

func TestCreateRetriesDuplicateNumbers(t *testing.T) {
	mem := memory.New()
	bills := &duplicatingStore{Store: mem, failures: 2}
	engine := NewEngine(bills, mem, WithClock(func() time.Time { return october }), WithLocation(time.UTC))
	identity := &auth.Identity{ID: primitive.NewObjectID(), Role: models.RoleUser}

	bill, err := engine.Create(context.Background(), identity, itemInput("Acme"))
	require.NoError(t, err)
	assert.Equal(t, "INV-2026-10-003", bill.BillNumber)

	bills.failures = 3
	_, err = engine.Create(context.Background(), identity, itemInput("Acme"))
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestListScopesNonAdminsToOwnBills(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)
	_, err = f.engine.Create(ctx, f.bob, itemInput("Globex"))
	require.NoError(t, err)

	_, err = f.engine.List(ctx, nil, ListFilter{})
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	own, err := f.engine.List(ctx, f.alice, ListFilter{Status: "all"})
	require.NoError(t, err)
	require.Len(t, own.Bills, 1)
	assert.Equal(t, "Acme", own.Bills[0].Customer.Name)

	all, err := f.engine.List(ctx, f.admin, ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all.Bills, 2)
	assert.Equal(t, "Globex", all.Bills[0].Customer.Name)
}

func TestListSearchStatusAndPagination(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, name := range []string{"Acme Corp", "Globex", "acme labs"} {
		_, err := f.engine.Create(ctx, f.alice, itemInput(name))
		require.NoError(t, err)
	}
	paid := models.BillStatusPaid
	first, err := f.engine.List(ctx, f.alice, ListFilter{Search: "globex"})
	require.NoError(t, err)
	require.Len(t, first.Bills, 1)
	_, err = f.engine.Update(ctx, f.alice, first.Bills[0].ID.Hex(), BillUpdate{Status: &paid})
	require.NoError(t, err)

	found, err := f.engine.List(ctx, f.alice, ListFilter{Search: "ACME"})
	require.NoError(t, err)
	assert.Len(t, found.Bills, 2)

	byNumber, err := f.engine.List(ctx, f.alice, ListFilter{Search: "10-002"})
	require.NoError(t, err)
	require.Len(t, byNumber.Bills, 1)
	assert.Equal(t, "Globex", byNumber.Bills[0].Customer.Name)

	paidOnly, err := f.engine.List(ctx, f.alice, ListFilter{Status: paid})
	require.NoError(t, err)
	assert.Len(t, paidOnly.Bills, 1)

	page, err := f.engine.List(ctx, f.alice, ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.True(t, page.Paginated)
	assert.Equal(t, int64(3), page.Total)
	require.Len(t, page.Bills, 1)
	assert.Equal(t, "Acme Corp", page.Bills[0].Customer.Name)

	unpaged, err := f.engine.List(ctx, f.alice, ListFilter{Page: 2})
	require.NoError(t, err)
	assert.False(t, unpaged.Paginated)
	assert.Len(t, unpaged.Bills, 3)

	_, err = f.engine.List(ctx, f.alice, ListFilter{Page: math.MaxInt64, Limit: 100})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateRecomputesTotals(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)

	updated, err := f.engine.Update(ctx, nil, bill.ID.Hex(), BillUpdate{TaxRate: ptr(20.0)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Subtotal)
	assert.Equal(t, 20.0, updated.TaxAmount)
	assert.Equal(t, 115.0, updated.GrandTotal)
	assert.Equal(t, 5.0, updated.Discount)

	items := []models.BillItem{{Description: "B", Amount: 40}, {Description: "C", Amount: 60}}
	updated, err = f.engine.Update(ctx, nil, bill.ID.Hex(), BillUpdate{Items: &items, GrandTotal: ptr(1.0)})
	require.NoError(t, err)
	assert.Equal(t, 100.0, updated.Subtotal)
	assert.Equal(t, 115.0, updated.GrandTotal)
	assert.Equal(t, bill.BillNumber, updated.BillNumber)

	notes := "paid by wire"
	updated, err = f.engine.Update(ctx, nil, bill.ID.Hex(), BillUpdate{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, 115.0, updated.GrandTotal)

	assert.Len(t, f.events.Events(), 4)
}

func TestUpdateRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)

	void := "void"
	_, err = f.engine.Update(ctx, f.alice, bill.ID.Hex(), BillUpdate{Status: &void})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.engine.Update(ctx, f.alice, primitive.NewObjectID().Hex(), BillUpdate{Notes: ptr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.engine.Update(ctx, f.alice, "not-an-id", BillUpdate{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetAndRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)

	got, err := f.engine.Get(ctx, nil, bill.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, got.BillNumber)

	require.NoError(t, f.engine.Remove(ctx, nil, bill.ID.Hex()))
	assert.ErrorIs(t, f.engine.Remove(ctx, nil, bill.ID.Hex()), apperr.ErrNotFound)
	assert.ErrorIs(t, f.engine.Remove(ctx, nil, "zzz"), apperr.ErrNotFound)

	_, err = f.engine.Get(ctx, nil, bill.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	recorded := f.events.Events()
	assert.Equal(t, events.BillDeleted, recorded[len(recorded)-1].Type)
}

func TestOwnershipEnforcement(t *testing.T) {
	f := newFixture(t, WithOwnershipEnforcement(true))
	ctx := context.Background()
	bill, err := f.engine.Create(ctx, f.alice, itemInput("Acme"))
	require.NoError(t, err)
	id := bill.ID.Hex()

	_, err = f.engine.Get(ctx, nil, id)
	assert.ErrorIs(t, err, apperr.ErrAuthentication)

	_, err = f.engine.Get(ctx, f.bob, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = f.engine.Update(ctx, f.bob, id, BillUpdate{Notes: ptr("mine now")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.ErrorIs(t, f.engine.Remove(ctx, f.bob, id), apperr.ErrNotFound)

	_, err = f.engine.Get(ctx, f.admin, id)
	assert.NoError(t, err)
	_, err = f.engine.Get(ctx, f.alice, id)
	assert.NoError(t, err)
}
