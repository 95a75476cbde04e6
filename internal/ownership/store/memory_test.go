package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store      *InMemory
	ctx        context.Context
	accountID  id.AccountID
	propertyID id.PropertyID
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.accountID = id.AccountID(uuid.New())
	s.propertyID = id.PropertyID(uuid.New())
}

func (s *InMemoryStoreSuite) newRecord(percentage string) *models.Ownership {
	now := time.Now()
	return &models.Ownership{
		ID:         id.OwnershipID(uuid.New()),
		PropertyID: s.propertyID,
		OwnerID:    id.OwnerID(uuid.New()),
		AccountID:  s.accountID,
		Percentage: decimal.RequireFromString(percentage),
		Type:       models.OwnershipTypePartial,
		StartDate:  now.AddDate(-1, 0, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (s *InMemoryStoreSuite) insert(record *models.Ownership) {
	err := s.store.Mutate(s.ctx, s.accountID, s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Insert(ctx, record)
	})
	s.Require().NoError(err)
}

func (s *InMemoryStoreSuite) TestInsertAndFind() {
	record := s.newRecord("100")
	s.insert(record)

	found, err := s.store.FindByAccountAndID(s.ctx, s.accountID, record.ID)
	s.Require().NoError(err)
	s.Equal(record.ID, found.ID)
	s.True(found.Percentage.Equal(record.Percentage))
}

func (s *InMemoryStoreSuite) TestFindIsAccountScoped() {
	record := s.newRecord("100")
	s.insert(record)

	_, err := s.store.FindByAccountAndID(s.ctx, id.AccountID(uuid.New()), record.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListByPropertyScopes() {
	s.insert(s.newRecord("60"))
	s.insert(s.newRecord("40"))

	other := s.newRecord("100")
	other.PropertyID = id.PropertyID(uuid.New())
	err := s.store.Mutate(s.ctx, s.accountID, other.PropertyID, func(ctx context.Context, txn Txn) error {
		return txn.Insert(ctx, other)
	})
	s.Require().NoError(err)

	records, err := s.store.ListByProperty(s.ctx, s.accountID, s.propertyID)
	s.Require().NoError(err)
	s.Len(records, 2)
}

func (s *InMemoryStoreSuite) TestUpdateReplacesRecord() {
	record := s.newRecord("100")
	s.insert(record)

	changed := record.Clone()
	changed.Notes = "rebalanced"
	err := s.store.Mutate(s.ctx, s.accountID, s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Update(ctx, changed)
	})
	s.Require().NoError(err)

	found, err := s.store.FindByAccountAndID(s.ctx, s.accountID, record.ID)
	s.Require().NoError(err)
	s.Equal("rebalanced", found.Notes)
}

func (s *InMemoryStoreSuite) TestUpdateUnknownRecord() {
	err := s.store.Mutate(s.ctx, s.accountID, s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Update(ctx, s.newRecord("50"))
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteRemovesRecord() {
	record := s.newRecord("100")
	s.insert(record)

	err := s.store.Mutate(s.ctx, s.accountID, s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Delete(ctx, record.ID)
	})
	s.Require().NoError(err)

	_, err = s.store.FindByAccountAndID(s.ctx, s.accountID, record.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestDeleteIsAccountScoped() {
	record := s.newRecord("100")
	s.insert(record)

	err := s.store.Mutate(s.ctx, id.AccountID(uuid.New()), s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Delete(ctx, record.ID)
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestOwnerHasActiveStake() {
	record := s.newRecord("100")
	s.insert(record)

	held, err := s.store.OwnerHasActiveStake(s.ctx, s.accountID, record.OwnerID, time.Now())
	s.Require().NoError(err)
	s.True(held)

	// Closed record no longer counts.
	closed := record.Clone()
	end := time.Now().AddDate(0, -1, 0)
	closed.EndDate = &end
	err = s.store.Mutate(s.ctx, s.accountID, s.propertyID, func(ctx context.Context, txn Txn) error {
		return txn.Update(ctx, closed)
	})
	s.Require().NoError(err)

	held, err = s.store.OwnerHasActiveStake(s.ctx, s.accountID, record.OwnerID, time.Now())
	s.Require().NoError(err)
	s.False(held)
}

func (s *InMemoryStoreSuite) TestCallersGetClones() {
	record := s.newRecord("100")
	s.insert(record)

	found, err := s.store.FindByAccountAndID(s.ctx, s.accountID, record.ID)
	s.Require().NoError(err)
	found.Notes = "mutated copy"

	again, err := s.store.FindByAccountAndID(s.ctx, s.accountID, record.ID)
	s.Require().NoError(err)
	s.Empty(again.Notes)
}
