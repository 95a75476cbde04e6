package models

import (
	"time"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// AccountStatus is the lifecycle state of an account.
type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "active"
	AccountStatusInactive AccountStatus = "inactive"
)

// Account is the isolation boundary for all data in the system.
//
// Invariants:
//   - Name is non-empty and at most 128 characters
//   - Status is either active or inactive
//   - CreatedAt is immutable after construction
//
// Deactivating an account is an immediate security boundary: request
// resolution (service.Resolve) refuses inactive accounts, so every scoped
// read and write for the account fails without cascading status changes to
// its properties, owners, or ownership records.
type Account struct {
	ID        id.AccountID  `json:"id"`
	Name      string        `json:"name"`
	Status    AccountStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// NewAccount constructs an active account, validating invariants.
func NewAccount(accountID id.AccountID, name string, now time.Time) (*Account, error) {
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account name must be 128 characters or less")
	}
	return &Account{
		ID:        accountID,
		Name:      name,
		Status:    AccountStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
