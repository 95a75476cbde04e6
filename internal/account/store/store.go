// Package store defines the account persistence contract and its
// in-memory and Postgres implementations.
package store

import (
	"context"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

// Store is the persistence contract for accounts. Implementations return
// sentinel errors (pkg/platform/sentinel) for infrastructure facts.
type Store interface {
	CreateIfNameAvailable(ctx context.Context, account *models.Account) error
	FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
}
