package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	"github.com/natovichat/rent-management-app-sub001/internal/owner/store"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

type stubStakes struct {
	held map[string]bool
}

func (s *stubStakes) OwnerHasActiveStake(_ context.Context, _ id.AccountID, ownerID id.OwnerID, _ time.Time) (bool, error) {
	return s.held[ownerID.String()], nil
}

func TestCreateOwner(t *testing.T) {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())

	t.Run("creates owner with defaults", func(t *testing.T) {
		svc := New(store.NewInMemory(), &stubStakes{})
		owner, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "  Dana Levin  "})
		require.NoError(t, err)
		assert.Equal(t, "Dana Levin", owner.Name)
		assert.Equal(t, models.OwnerTypeIndividual, owner.Type)
		assert.Equal(t, accountID, owner.AccountID)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := New(store.NewInMemory(), &stubStakes{})
		_, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "   "})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		svc := New(store.NewInMemory(), &stubStakes{})
		_, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "Dana", Type: "trust"})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func TestGetIsAccountScoped(t *testing.T) {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	svc := New(store.NewInMemory(), &stubStakes{})

	owner, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "Dana"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, id.AccountID(uuid.New()), owner.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestDeleteOwner(t *testing.T) {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())

	t.Run("deletes owner without stakes", func(t *testing.T) {
		svc := New(store.NewInMemory(), &stubStakes{})
		owner, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "Dana"})
		require.NoError(t, err)

		require.NoError(t, svc.Delete(ctx, accountID, owner.ID))
		_, err = svc.Get(ctx, accountID, owner.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("refuses owner with active stake", func(t *testing.T) {
		stakes := &stubStakes{held: map[string]bool{}}
		svc := New(store.NewInMemory(), stakes)
		owner, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "Dana"})
		require.NoError(t, err)
		stakes.held[owner.ID.String()] = true

		err = svc.Delete(ctx, accountID, owner.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))

		// Owner is still there.
		_, err = svc.Get(ctx, accountID, owner.ID)
		assert.NoError(t, err)
	})
}

func TestUpdateOwner(t *testing.T) {
	ctx := context.Background()
	accountID := id.AccountID(uuid.New())
	svc := New(store.NewInMemory(), &stubStakes{})

	owner, err := svc.Create(ctx, accountID, &models.CreateOwnerRequest{Name: "Dana"})
	require.NoError(t, err)

	email := "dana@example.com"
	ownerType := models.OwnerTypeCompany
	updated, err := svc.Update(ctx, accountID, owner.ID, &models.UpdateOwnerRequest{Email: &email, Type: &ownerType})
	require.NoError(t, err)
	assert.Equal(t, email, updated.Email)
	assert.Equal(t, models.OwnerTypeCompany, updated.Type)
	assert.Equal(t, "Dana", updated.Name)
}
