// Package store defines property persistence. Every lookup is account-scoped
// so cross-account reads are structurally impossible.
package store

import (
	"context"

	"github.com/natovichat/rent-management-app-sub001/internal/property/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

type Store interface {
	Create(ctx context.Context, property *models.Property) error
	Update(ctx context.Context, property *models.Property) error
	Delete(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error
	FindByAccountAndID(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) (*models.Property, error)
	ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Property, error)
}
