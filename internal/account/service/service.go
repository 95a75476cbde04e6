// Package service orchestrates account management and per-request account
// resolution. Resolution is the single choke point that turns a caller
// supplied account identifier into a verified, active account id; every
// scoped operation downstream takes that id as an explicit argument.
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	"github.com/natovichat/rent-management-app-sub001/internal/account/store"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/metrics"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// Service orchestrates account management.
type Service struct {
	accounts store.Store
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(accounts store.Store, opts ...Option) *Service {
	s := &Service{accounts: accounts}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new account.
func (s *Service) Create(ctx context.Context, name string) (*models.Account, error) {
	name = strings.TrimSpace(name)

	account, err := models.NewAccount(id.AccountID(uuid.New()), name, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
		}
		return nil, err
	}

	if err := s.accounts.CreateIfNameAvailable(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "account name must be unique")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created",
			"account_id", account.ID,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if s.metrics != nil {
		s.metrics.AccountsCreated.Inc()
	}
	return account, nil
}

// Get fetches account metadata.
func (s *Service) Get(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "account not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	return account, nil
}

// Deactivate transitions an account to inactive, cutting off all scoped access.
func (s *Service) Deactivate(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	account, err := s.Get(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsActive() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "account is already inactive")
	}
	account.Status = models.AccountStatusInactive
	account.UpdatedAt = requestcontext.Now(ctx)
	if err := s.accounts.Update(ctx, account); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate account")
	}
	return account, nil
}

// Resolve maps a caller-supplied account identifier to a verified account id.
//
// A missing identifier and an unknown or inactive account both fail with
// CodeUnauthorized; the request is never silently attributed to a default
// account. Resolution is pure per-request lookup, no state is mutated.
func (s *Service) Resolve(ctx context.Context, raw string) (id.AccountID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return id.AccountID{}, dErrors.New(dErrors.CodeUnauthorized, "account identifier is required")
	}

	accountID, err := id.ParseAccountID(raw)
	if err != nil {
		return id.AccountID{}, dErrors.New(dErrors.CodeUnauthorized, "account identifier is invalid")
	}

	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.AccountID{}, dErrors.New(dErrors.CodeUnauthorized, "unknown account")
		}
		return id.AccountID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve account")
	}
	if !account.IsActive() {
		return id.AccountID{}, dErrors.New(dErrors.CodeUnauthorized, "account is inactive")
	}
	return account.ID, nil
}
