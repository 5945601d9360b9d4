// Package billing owns bill numbering, total computation and the bill
// lifecycle.
package billing

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/apperr"
	"billgen/internal/auth"
	"billgen/internal/events"
	"billgen/internal/logger"
	"billgen/internal/metrics"
	"billgen/internal/models"
	"billgen/internal/store"
)

const maxAllocationAttempts = 3

var errBillNotFound = apperr.NotFound("Bill not found")

type Engine struct {
	bills            store.BillStore
	sequences        store.SequenceStore
	publisher        events.Publisher
	enforceOwnership bool
	now              func() time.Time
	loc              *time.Location
	log              zerolog.Logger
}

type Option func(*Engine)

func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithOwnershipEnforcement makes single-bill reads and writes require an
// identity and hides other users' bills from non-admins.
func WithOwnershipEnforcement(enabled bool) Option {
	return func(e *Engine) { e.enforceOwnership = enabled }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLocation sets the zone used to pick the numbering month.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func NewEngine(bills store.BillStore, sequences store.SequenceStore, opts ...Option) *Engine {
	e := &Engine{
		bills:     bills,
		sequences: sequences,
		publisher: events.Noop{},
		now:       time.Now,
		loc:       time.Local,
		log:       logger.WithComponent("billing"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NextBillNumber previews the number the next bill created at now would get.
// It does not reserve anything.
func (e *Engine) NextBillNumber(ctx context.Context, now time.Time) (string, error) {
	prefix := Prefix(now.In(e.loc))

	seq, err := e.sequences.CurrentSequence(ctx, prefix)
	if err != nil {
		return "", apperr.Internal("sequence lookup failed", err)
	}
	floor, err := e.highestExisting(ctx, prefix)
	if err != nil {
		return "", err
	}
	return FormatBillNumber(prefix, max(seq, floor)+1), nil
}

// PreviewBillNumber is NextBillNumber at the engine's clock.
func (e *Engine) PreviewBillNumber(ctx context.Context) (string, error) {
	return e.NextBillNumber(ctx, e.now())
}

func (e *Engine) highestExisting(ctx context.Context, prefix string) (int, error) {
	latest, err := e.bills.LatestBillNumber(ctx, prefix+"-")
	if err != nil {
		return 0, apperr.Internal("bill number lookup failed", err)
	}
	seq, _ := ParseSequence(latest, prefix)
	return seq, nil
}

// allocate reserves the next number for the month of now. The counter is
// first lifted past any bills written before counters existed.
func (e *Engine) allocate(ctx context.Context, now time.Time) (string, error) {
	prefix := Prefix(now.In(e.loc))

	floor, err := e.highestExisting(ctx, prefix)
	if err != nil {
		return "", err
	}
	if floor > 0 {
		if err := e.sequences.RaiseSequence(ctx, prefix, floor); err != nil {
			return "", apperr.Internal("sequence raise failed", err)
		}
	}
	seq, err := e.sequences.IncrementSequence(ctx, prefix)
	if err != nil {
		return "", apperr.Internal("sequence increment failed", err)
	}
	return FormatBillNumber(prefix, seq), nil
}

func (e *Engine) Create(ctx context.Context, identity *auth.Identity, in BillInput) (*models.Bill, error) {
	if identity == nil {
		return nil, apperr.Authentication("Not authorized")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := e.now()
	owner := identity.ID
	bill := &models.Bill{
		Customer:       in.Customer,
		BillDate:       now,
		DueDate:        in.DueDate.ptr(),
		Items:          normalizeItems(in.Items),
		TaxRate:        valueOr(in.TaxRate, 0),
		Discount:       valueOr(in.Discount, 0),
		Status:         in.Status,
		Notes:          in.Notes,
		PaymentDetails: in.PaymentDetails,
		UserID:         &owner,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if billDate := in.BillDate.ptr(); billDate != nil {
		bill.BillDate = *billDate
	}
	if bill.Status == "" {
		bill.Status = models.BillStatusDraft
	}

	if bill.Items != nil {
		totals := ComputeTotals(bill.Items, bill.TaxRate, bill.Discount)
		bill.Subtotal = totals.Subtotal
		bill.TaxAmount = totals.TaxAmount
		bill.GrandTotal = totals.GrandTotal
	} else {
		bill.Items = []models.BillItem{}
		bill.Subtotal = *in.Subtotal
		bill.TaxAmount = valueOr(in.TaxAmount, 0)
		bill.GrandTotal = *in.GrandTotal
	}

	for attempt := 1; ; attempt++ {
		number, err := e.allocate(ctx, now)
		if err != nil {
			return nil, err
		}
		bill.ID = primitive.NilObjectID
		bill.BillNumber = number

		err = e.bills.InsertBill(ctx, bill)
		if err == nil {
			break
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return nil, apperr.Internal("bill insert failed", err)
		}
		metrics.BillNumberRetry()
		e.log.Warn().Str("bill_number", number).Int("attempt", attempt).Msg("bill number taken, retrying")
		if attempt >= maxAllocationAttempts {
			return nil, apperr.Conflict("Could not allocate a unique bill number")
		}
	}

	e.log.Info().
		Str("bill_number", bill.BillNumber).
		Str("user_id", owner.Hex()).
		Float64("grand_total", bill.GrandTotal).
		Msg("bill created")
	e.publish(ctx, events.BillCreated, bill)
	return bill, nil
}

func (e *Engine) Get(ctx context.Context, identity *auth.Identity, id string) (*models.Bill, error) {
	return e.load(ctx, identity, id)
}

func (e *Engine) Update(ctx context.Context, identity *auth.Identity, id string, in BillUpdate) (*models.Bill, error) {
	oid, err := e.resolveID(identity, id)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	patch := store.BillPatch{
		Customer:       in.Customer,
		BillDate:       in.BillDate.ptr(),
		DueDate:        in.DueDate.ptr(),
		Subtotal:       in.Subtotal,
		TaxRate:        in.TaxRate,
		TaxAmount:      in.TaxAmount,
		Discount:       in.Discount,
		GrandTotal:     in.GrandTotal,
		Status:         in.Status,
		Notes:          in.Notes,
		PaymentDetails: in.PaymentDetails,
		UpdatedAt:      e.now(),
	}
	if in.Items != nil {
		items := normalizeItems(*in.Items)
		if items == nil {
			items = []models.BillItem{}
		}
		patch.Items = &items
	}

	if e.enforceOwnership || in.recomputesTotals() {
		existing, err := e.find(ctx, identity, oid)
		if err != nil {
			return nil, err
		}
		if in.recomputesTotals() {
			items := existing.Items
			if patch.Items != nil {
				items = *patch.Items
			}
			totals := ComputeTotals(items, valueOr(in.TaxRate, existing.TaxRate), valueOr(in.Discount, existing.Discount))
			patch.Subtotal = &totals.Subtotal
			patch.TaxAmount = &totals.TaxAmount
			patch.GrandTotal = &totals.GrandTotal
		}
	}

	bill, err := e.bills.UpdateBill(ctx, oid, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errBillNotFound
		}
		return nil, apperr.Internal("bill update failed", err)
	}

	e.log.Info().Str("bill_number", bill.BillNumber).Msg("bill updated")
	e.publish(ctx, events.BillUpdated, bill)
	return bill, nil
}

func (e *Engine) Remove(ctx context.Context, identity *auth.Identity, id string) error {
	bill, err := e.load(ctx, identity, id)
	if err != nil {
		return err
	}

	if err := e.bills.DeleteBill(ctx, bill.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return errBillNotFound
		}
		return apperr.Internal("bill delete failed", err)
	}

	e.log.Info().Str("bill_number", bill.BillNumber).Msg("bill deleted")
	e.publish(ctx, events.BillDeleted, bill)
	return nil
}

// ListFilter narrows a bill listing. Pagination applies only when both Page
// and Limit are positive.
type ListFilter struct {
	Status string
	Search string
	Page   int64
	Limit  int64
}

func (f ListFilter) paginated() bool {
	return f.Page > 0 && f.Limit > 0
}

type ListResult struct {
	Bills     []models.Bill
	Total     int64
	Page      int64
	Limit     int64
	Paginated bool
}

func (e *Engine) List(ctx context.Context, identity *auth.Identity, filter ListFilter) (*ListResult, error) {
	if identity == nil {
		return nil, apperr.Authentication("Not authorized")
	}

	query := store.BillFilter{Search: strings.TrimSpace(filter.Search)}
	if !identity.IsAdmin() {
		owner := identity.ID
		query.OwnerID = &owner
	}
	if status := strings.TrimSpace(filter.Status); status != "" && status != "all" {
		query.Statuses = []string{status}
	}

	result := &ListResult{Paginated: filter.paginated()}
	if result.Paginated {
		if filter.Page > math.MaxInt64/filter.Limit {
			return nil, apperr.Validation("invalid pagination", "page is out of range")
		}
		query.Skip = (filter.Page - 1) * filter.Limit
		query.Limit = filter.Limit
		result.Page = filter.Page
		result.Limit = filter.Limit
	}

	bills, err := e.bills.FindBills(ctx, query)
	if err != nil {
		return nil, apperr.Internal("bill query failed", err)
	}
	result.Bills = bills

	if result.Paginated {
		query.Skip, query.Limit = 0, 0
		total, err := e.bills.CountBills(ctx, query)
		if err != nil {
			return nil, apperr.Internal("bill count failed", err)
		}
		result.Total = total
	} else {
		result.Total = int64(len(bills))
	}
	return result, nil
}

func (e *Engine) resolveID(identity *auth.Identity, id string) (primitive.ObjectID, error) {
	if e.enforceOwnership && identity == nil {
		return primitive.NilObjectID, apperr.Authentication("Not authorized")
	}
	oid, err := primitive.ObjectIDFromHex(strings.TrimSpace(id))
	if err != nil {
		return primitive.NilObjectID, errBillNotFound
	}
	return oid, nil
}

func (e *Engine) load(ctx context.Context, identity *auth.Identity, id string) (*models.Bill, error) {
	oid, err := e.resolveID(identity, id)
	if err != nil {
		return nil, err
	}
	return e.find(ctx, identity, oid)
}

// find fetches a bill and, when ownership is enforced, hides bills the
// caller does not own behind a not-found error.
func (e *Engine) find(ctx context.Context, identity *auth.Identity, id primitive.ObjectID) (*models.Bill, error) {
	bill, err := e.bills.FindBillByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errBillNotFound
		}
		return nil, apperr.Internal("bill lookup failed", err)
	}
	if e.enforceOwnership && !identity.IsAdmin() && !bill.OwnedBy(identity.ID) {
		return nil, errBillNotFound
	}
	return bill, nil
}

// publish is best effort: a failed notification never fails the write.
func (e *Engine) publish(ctx context.Context, eventType string, bill *models.Bill) {
	metrics.BillOperation(strings.TrimPrefix(eventType, "bill."))
	if err := e.publisher.Publish(ctx, events.NewBillEvent(eventType, bill)); err != nil {
		e.log.Error().Err(err).Str("type", eventType).Str("bill_number", bill.BillNumber).Msg("event publish failed")
	}
}
