// Package memory is an in-process implementation of the store contracts.
// It backs STORE_DRIVER=memory for local runs and serves as the fake in tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"billgen/internal/models"
	"billgen/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	users    []models.User
	bills    []models.Bill
	clients  []models.Client
	counters map[string]int
}

func New() *Store {
	return &Store{counters: make(map[string]int)}
}

func (s *Store) Ping(context.Context) error {
	return nil
}

/* =========================
   USERS
========================= */

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return store.ErrDuplicate
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.users = append(s.users, *user)
	return nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			found := user
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID == id {
			found := user
			return &found, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) UpdateUserRole(_ context.Context, email, role string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].Email == email {
			s.users[i].Role = role
			s.users[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return store.ErrNotFound
}

/* =========================
   BILLS
========================= */

func (s *Store) InsertBill(_ context.Context, bill *models.Bill) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bills {
		if existing.BillNumber == bill.BillNumber {
			return store.ErrDuplicate
		}
	}
	if bill.ID.IsZero() {
		bill.ID = primitive.NewObjectID()
	}
	s.bills = append(s.bills, cloneBill(*bill))
	return nil
}

func (s *Store) FindBillByID(_ context.Context, id primitive.ObjectID) (*models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.billIndex(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}
	found := cloneBill(s.bills[idx])
	return &found, nil
}

func (s *Store) FindBills(_ context.Context, filter store.BillFilter) ([]models.Bill, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := s.matchBills(filter)

	if filter.Skip > 0 {
		if filter.Skip >= int64(len(matched)) {
			return []models.Bill{}, nil
		}
		matched = matched[filter.Skip:]
	}
	if filter.Limit > 0 && filter.Limit < int64(len(matched)) {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (s *Store) CountBills(_ context.Context, filter store.BillFilter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return int64(len(s.matchBills(filter))), nil
}

func (s *Store) SumGrandTotal(_ context.Context, filter store.BillFilter) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total float64
	for _, bill := range s.matchBills(filter) {
		total += bill.GrandTotal
	}
	return total, nil
}

func (s *Store) UpdateBill(_ context.Context, id primitive.ObjectID, patch store.BillPatch) (*models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.billIndex(id)
	if idx < 0 {
		return nil, store.ErrNotFound
	}

	bill := &s.bills[idx]
	if patch.Customer != nil {
		bill.Customer = *patch.Customer
	}
	if patch.BillDate != nil {
		bill.BillDate = *patch.BillDate
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		bill.DueDate = &due
	}
	if patch.Items != nil {
		bill.Items = cloneItems(*patch.Items)
	}
	if patch.Subtotal != nil {
		bill.Subtotal = *patch.Subtotal
	}
	if patch.TaxRate != nil {
		bill.TaxRate = *patch.TaxRate
	}
	if patch.TaxAmount != nil {
		bill.TaxAmount = *patch.TaxAmount
	}
	if patch.Discount != nil {
		bill.Discount = *patch.Discount
	}
	if patch.GrandTotal != nil {
		bill.GrandTotal = *patch.GrandTotal
	}
	if patch.Status != nil {
		bill.Status = *patch.Status
	}
	if patch.Notes != nil {
		bill.Notes = *patch.Notes
	}
	if patch.PaymentDetails != nil {
		details := *patch.PaymentDetails
		bill.PaymentDetails = &details
	}
	bill.UpdatedAt = patch.UpdatedAt

	updated := cloneBill(*bill)
	return &updated, nil
}

func (s *Store) DeleteBill(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.billIndex(id)
	if idx < 0 {
		return store.ErrNotFound
	}
	s.bills = append(s.bills[:idx], s.bills[idx+1:]...)
	return nil
}

func (s *Store) LatestBillNumber(_ context.Context, prefix string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := ""
	for _, bill := range s.bills {
		if strings.HasPrefix(bill.BillNumber, prefix) && bill.BillNumber > latest {
			latest = bill.BillNumber
		}
	}
	return latest, nil
}

func (s *Store) billIndex(id primitive.ObjectID) int {
	for i, bill := range s.bills {
		if bill.ID == id {
			return i
		}
	}
	return -1
}

// matchBills returns copies of the matching bills, newest createdAt first.
// Callers must hold the lock.
func (s *Store) matchBills(filter store.BillFilter) []models.Bill {
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	matched := make([]models.Bill, 0)
	for i := len(s.bills) - 1; i >= 0; i-- {
		bill := s.bills[i]
		if filter.OwnerID != nil && !bill.OwnedBy(*filter.OwnerID) {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, bill.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(bill.BillNumber), search) &&
			!strings.Contains(strings.ToLower(bill.Customer.Name), search) {
			continue
		}
		if filter.BillDateFrom != nil && bill.BillDate.Before(*filter.BillDateFrom) {
			continue
		}
		if filter.BillDateTo != nil && !bill.BillDate.Before(*filter.BillDateTo) {
			continue
		}
		matched = append(matched, cloneBill(bill))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	return matched
}

/* =========================
   CLIENTS
========================= */

func (s *Store) InsertClient(_ context.Context, client *models.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if client.ID.IsZero() {
		client.ID = primitive.NewObjectID()
	}
	s.clients = append(s.clients, *client)
	return nil
}

func (s *Store) FindClients(_ context.Context, filter store.ClientFilter) ([]models.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]models.Client, 0)
	for i := len(s.clients) - 1; i >= 0; i-- {
		client := s.clients[i]
		if filter.OwnerID != nil && (client.UserID == nil || *client.UserID != *filter.OwnerID) {
			continue
		}
		clients = append(clients, client)
	}

	sort.SliceStable(clients, func(i, j int) bool {
		return clients[i].CreatedAt.After(clients[j].CreatedAt)
	})
	return clients, nil
}

/* =========================
   COUNTERS
========================= */

func (s *Store) CurrentSequence(_ context.Context, key string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counters[key], nil
}

func (s *Store) RaiseSequence(_ context.Context, key string, floor int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.counters[key] < floor {
		s.counters[key] = floor
	}
	return nil
}

func (s *Store) IncrementSequence(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[key]++
	return s.counters[key], nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func cloneItems(items []models.BillItem) []models.BillItem {
	if items == nil {
		return nil
	}
	out := make([]models.BillItem, len(items))
	copy(out, items)
	return out
}

func cloneBill(b models.Bill) models.Bill {
	b.Items = cloneItems(b.Items)
	if b.DueDate != nil {
		due := *b.DueDate
		b.DueDate = &due
	}
	if b.PaymentDetails != nil {
		details := *b.PaymentDetails
		b.PaymentDetails = &details
	}
	if b.UserID != nil {
		owner := *b.UserID
		b.UserID = &owner
	}
	return b
}
