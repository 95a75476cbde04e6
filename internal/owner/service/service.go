package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/audit"
	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	"github.com/natovichat/rent-management-app-sub001/internal/owner/store"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// StakeChecker reports whether an owner currently holds an active stake in
// any property. Implemented by the ownership store; used to refuse deleting
// owners that are still on title.
type StakeChecker interface {
	OwnerHasActiveStake(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, asOf time.Time) (bool, error)
}

// Service manages owners within an account. Every operation takes the
// account id explicitly; nothing is read from ambient state.
type Service struct {
	owners  store.Store
	stakes  StakeChecker
	logger  *slog.Logger
	auditor audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func New(owners store.Store, stakes StakeChecker, opts ...Option) *Service {
	s := &Service{owners: owners, stakes: stakes, auditor: audit.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, accountID id.AccountID, req *models.CreateOwnerRequest) (*models.Owner, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	owner := &models.Owner{
		ID:        id.OwnerID(uuid.New()),
		AccountID: accountID,
		Name:      req.Name,
		Type:      req.Type,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.owners.Create(ctx, owner); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create owner")
	}
	s.emit(ctx, audit.ActionOwnerCreated, accountID, owner.ID.String())
	return owner, nil
}

func (s *Service) Get(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) (*models.Owner, error) {
	owner, err := s.owners.FindByAccountAndID(ctx, accountID, ownerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get owner")
	}
	return owner, nil
}

// Exists reports whether the owner is visible in the account; a miss is a
// not-found error so referencing another account's owner reveals nothing.
func (s *Service) Exists(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error {
	_, err := s.Get(ctx, accountID, ownerID)
	return err
}

func (s *Service) List(ctx context.Context, accountID id.AccountID) ([]*models.Owner, error) {
	owners, err := s.owners.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list owners")
	}
	return owners, nil
}

func (s *Service) Update(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, req *models.UpdateOwnerRequest) (*models.Owner, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	owner, err := s.Get(ctx, accountID, ownerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		owner.Name = strings.TrimSpace(*req.Name)
	}
	if req.Type != nil {
		owner.Type = *req.Type
	}
	if req.Email != nil {
		owner.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		owner.Phone = strings.TrimSpace(*req.Phone)
	}
	owner.UpdatedAt = requestcontext.Now(ctx)

	if err := s.owners.Update(ctx, owner); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update owner")
	}
	s.emit(ctx, audit.ActionOwnerUpdated, accountID, owner.ID.String())
	return owner, nil
}

// Delete removes an owner. Owners holding an active stake in any property
// cannot be deleted; the stake must be closed or transferred first.
func (s *Service) Delete(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error {
	if _, err := s.Get(ctx, accountID, ownerID); err != nil {
		return err
	}

	if s.stakes != nil {
		held, err := s.stakes.OwnerHasActiveStake(ctx, accountID, ownerID, requestcontext.Now(ctx))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check owner stakes")
		}
		if held {
			return dErrors.New(dErrors.CodeConflict, "owner holds an active ownership stake and cannot be deleted")
		}
	}

	if err := s.owners.Delete(ctx, accountID, ownerID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "owner not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete owner")
	}
	s.emit(ctx, audit.ActionOwnerDeleted, accountID, ownerID.String())
	return nil
}

func (s *Service) emit(ctx context.Context, action string, accountID id.AccountID, subject string) {
	s.auditor.Emit(ctx, audit.Event{
		Action:    action,
		AccountID: accountID,
		Subject:   subject,
		RequestID: requestcontext.RequestID(ctx),
		Timestamp: requestcontext.Now(ctx),
	})
}
