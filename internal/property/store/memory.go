package store

import (
	"context"
	"sort"
	"sync"

	"github.com/natovichat/rent-management-app-sub001/internal/property/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// InMemory is a map-backed property store for tests and local development.
type InMemory struct {
	mu         sync.RWMutex
	properties map[id.PropertyID]*models.Property
}

func NewInMemory() *InMemory {
	return &InMemory{properties: make(map[id.PropertyID]*models.Property)}
}

func (s *InMemory) Create(_ context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.properties[property.ID]; exists {
		return sentinel.ErrConflict
	}
	cp := *property
	s.properties[property.ID] = &cp
	return nil
}

func (s *InMemory) Update(_ context.Context, property *models.Property) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.properties[property.ID]
	if !ok || existing.AccountID != property.AccountID {
		return sentinel.ErrNotFound
	}
	cp := *property
	s.properties[property.ID] = &cp
	return nil
}

func (s *InMemory) Delete(_ context.Context, accountID id.AccountID, propertyID id.PropertyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.properties[propertyID]
	if !ok || existing.AccountID != accountID {
		return sentinel.ErrNotFound
	}
	delete(s.properties, propertyID)
	return nil
}

func (s *InMemory) FindByAccountAndID(_ context.Context, accountID id.AccountID, propertyID id.PropertyID) (*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	property, ok := s.properties[propertyID]
	if !ok || property.AccountID != accountID {
		return nil, sentinel.ErrNotFound
	}
	cp := *property
	return &cp, nil
}

func (s *InMemory) ListByAccount(_ context.Context, accountID id.AccountID) ([]*models.Property, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Property
	for _, property := range s.properties {
		if property.AccountID == accountID {
			cp := *property
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}
