package store

import (
	"context"
	"sort"
	"sync"

	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// InMemory is a map-backed owner store for tests and local development.
type InMemory struct {
	mu     sync.RWMutex
	owners map[id.OwnerID]*models.Owner
}

func NewInMemory() *InMemory {
	return &InMemory{owners: make(map[id.OwnerID]*models.Owner)}
}

func (s *InMemory) Create(_ context.Context, owner *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.owners[owner.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *owner
	s.owners[owner.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, owner *models.Owner) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.owners[owner.ID]
	if !ok || existing.AccountID != owner.AccountID {
		return sentinel.ErrNotFound
	}
	cp := *owner
	s.owners[owner.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, accountID id.AccountID, ownerID id.OwnerID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.owners[ownerID]
	if !ok || existing.AccountID != accountID {
		return sentinel.ErrNotFound
	}
	delete(s.owners, ownerID)
	return nil
}

func (s *InMemory) FindByAccountAndID(_ context.Context, accountID id.AccountID, ownerID id.OwnerID) (*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	owner, ok := s.owners[ownerID]
	if !ok || owner.AccountID != accountID {
		return nil, sentinel.ErrNotFound
	}
	cp := *owner
	return &cp, nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]*models.Owner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Owner
	for _, owner := range s.owners {
		if owner.AccountID == accountID {
			cp := *owner
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
