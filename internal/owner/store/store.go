// Package store defines owner persistence. Every lookup is account-scoped:
// there is no way to fetch an owner without naming the account it must
// belong to.
package store

import (
	"context"

	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, owner *models.Owner) error
	Update(ctx context.Context, owner *models.Owner) error
	Delete(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error
	FindByAccountAndID(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) (*models.Owner, error)
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Owner, error)
}
