package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	"github.com/natovichat/rent-management-app-sub001/internal/account/store"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

func newTestService() *Service {
	return New(store.NewInMemory())
}

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active account", func(t *testing.T) {
		svc := newTestService()
		account, err := svc.Create(ctx, "Harbor Lettings")
		require.NoError(t, err)
		assert.Equal(t, "Harbor Lettings", account.Name)
		assert.Equal(t, models.AccountStatusActive, account.Status)
		assert.False(t, account.ID.IsNil())
	})

	t.Run("rejects empty name", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Create(ctx, "   ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Create(ctx, "Harbor Lettings")
		require.NoError(t, err)
		_, err = svc.Create(ctx, "harbor lettings")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestDeactivate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	account, err := svc.Create(ctx, "Harbor Lettings")
	require.NoError(t, err)

	deactivated, err := svc.Deactivate(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AccountStatusInactive, deactivated.Status)

	_, err = svc.Deactivate(ctx, account.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves active account", func(t *testing.T) {
		svc := newTestService()
		account, err := svc.Create(ctx, "Harbor Lettings")
		require.NoError(t, err)

		resolved, err := svc.Resolve(ctx, account.ID.String())
		require.NoError(t, err)
		assert.Equal(t, account.ID, resolved)
	})

	t.Run("missing identifier is unauthorized", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Resolve(ctx, "  ")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("malformed identifier is unauthorized", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Resolve(ctx, "not-a-uuid")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("unknown account is unauthorized, never a default", func(t *testing.T) {
		svc := newTestService()
		_, err := svc.Resolve(ctx, uuid.NewString())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("inactive account is unauthorized", func(t *testing.T) {
		svc := newTestService()
		account, err := svc.Create(ctx, "Harbor Lettings")
		require.NoError(t, err)
		_, err = svc.Deactivate(ctx, account.ID)
		require.NoError(t, err)

		_, err = svc.Resolve(ctx, account.ID.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}
