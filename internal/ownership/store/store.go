// Package store persists ownership records and provides the per-property
// critical section every mutation runs in.
package store

import (
	"context"
	"time"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
)

// Txn exposes the operations available inside a Mutate critical section.
// All operations are implicitly scoped to the property and account that
// Mutate was called with.
type Txn interface {
	List(ctx context.Context) ([]*models.Ownership, error)
	Insert(ctx context.Context, record *models.Ownership) error
	Update(ctx context.Context, record *models.Ownership) error
	Delete(ctx context.Context, recordID id.OwnershipID) error
}

// Store is the persistence contract for ownership records.
//
// Mutate runs fn so that no two invocations for the same property
// interleave their read-validate-write sequence: the in-memory store holds
// a per-property mutex, the Postgres store a SERIALIZABLE transaction. A
// lost serialization race surfaces as sentinel.ErrSerialization, which the
// service retries before reporting contention to the caller.
type Store interface {
	FindByAccountAndID(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error)
	ListByProperty(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error)
	OwnerHasActiveStake(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, asOf time.Time) (bool, error)
	Mutate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, fn func(ctx context.Context, txn Txn) error) error
}
