package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// InMemory keeps ownership records in maps. Mutations for the same
// property serialize on a per-property mutex, so the validate-then-commit
// sequence inside Mutate never interleaves for one property while distinct
// properties proceed in parallel.
type InMemory struct {
	mu      sync.RWMutex
	records map[id.OwnershipID]*models.Ownership

	locksMu sync.Mutex
	locks   map[id.PropertyID]*sync.Mutex
}

func NewInMemory() *InMemory {
	return &InMemory{
		records: make(map[id.OwnershipID]*models.Ownership),
		locks:   make(map[id.PropertyID]*sync.Mutex),
	}
}

func (s *InMemory) propertyLock(propertyID id.PropertyID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[propertyID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[propertyID] = lock
	}
	return lock
}

func (s *InMemory) FindByAccountAndID(_ context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[recordID]
	if !ok || rec.AccountID != accountID {
		return nil, sentinel.ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *InMemory) ListByProperty(_ context.Context, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listLocked(accountID, propertyID), nil
}

func (s *InMemory) listLocked(accountID id.AccountID, propertyID id.PropertyID) []*models.Ownership {
	var out []*models.Ownership
	for _, rec := range s.records {
		if rec.AccountID == accountID && rec.PropertyID == propertyID {
			out = append(out, rec.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartDate.After(out[j].StartDate) })
	return out
}

func (s *InMemory) OwnerHasActiveStake(_ context.Context, accountID id.AccountID, ownerID id.OwnerID, asOf time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.AccountID == accountID && rec.OwnerID == ownerID && rec.ActiveAt(asOf) {
			return true, nil
		}
	}
	return false, nil
}

// Mutate serializes per property, then runs fn against a transactional view.
func (s *InMemory) Mutate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, fn func(ctx context.Context, txn Txn) error) error {
	lock := s.propertyLock(propertyID)
	lock.Lock()
	defer lock.Unlock()

	txn := &memTxn{store: s, accountID: accountID, propertyID: propertyID}
	return fn(ctx, txn)
}

type memTxn struct {
	store      *InMemory
	accountID  id.AccountID
	propertyID id.PropertyID
}

func (t *memTxn) List(_ context.Context) ([]*models.Ownership, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	return t.store.listLocked(t.accountID, t.propertyID), nil
}

func (t *memTxn) Insert(_ context.Context, record *models.Ownership) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if _, exists := t.store.records[record.ID]; exists {
		return sentinel.ErrConflict
	}
	t.store.records[record.ID] = record.Clone()
	return nil
}

func (t *memTxn) Update(_ context.Context, record *models.Ownership) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	existing, ok := t.store.records[record.ID]
	if !ok || existing.AccountID != t.accountID {
		return sentinel.ErrNotFound
	}
	t.store.records[record.ID] = record.Clone()
	return nil
}

func (t *memTxn) Delete(_ context.Context, recordID id.OwnershipID) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	existing, ok := t.store.records[recordID]
	if !ok || existing.AccountID != t.accountID {
		return sentinel.ErrNotFound
	}
	delete(t.store.records, recordID)
	return nil
}
