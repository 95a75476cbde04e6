package store

import (
	"context"
	"strings"
	"sync"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// InMemory is a map-backed account store for tests and local development.
type InMemory struct {
	mu       sync.RWMutex
	accounts map[id.AccountID]*models.Account
	byName   map[string]id.AccountID
}

func NewInMemory() *InMemory {
	return &InMemory{
		accounts: make(map[id.AccountID]*models.Account),
		byName:   make(map[string]id.AccountID),
	}
}

func (s *InMemory) CreateIfNameAvailable(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(account.Name)
	if _, exists := s.byName[key]; exists {
		return sentinel.ErrAlreadyUsed
	}
	cp := *account
	s.accounts[account.ID] = &cp
	s.byName[key] = account.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, accountID id.AccountID) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[accountID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

func (s *InMemory) Update(_ context.Context, account *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.accounts[account.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byName, strings.ToLower(existing.Name))
	cp := *account
	s.accounts[account.ID] = &cp
	s.byName[strings.ToLower(account.Name)] = account.ID
	return nil
}
