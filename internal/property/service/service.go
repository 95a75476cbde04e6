package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/audit"
	"github.com/natovichat/rent-management-app-sub001/internal/property/models"
	"github.com/natovichat/rent-management-app-sub001/internal/property/store"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// Service manages properties within an account. A property that exists but
// belongs to a different account is reported as not found, never as
// forbidden, so existence does not leak across accounts.
type Service struct {
	properties store.Store
	logger     *slog.Logger
	auditor    audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func New(properties store.Store, opts ...Option) *Service {
	s := &Service{properties: properties, auditor: audit.Nop{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, accountID id.AccountID, req *models.CreatePropertyRequest) (*models.Property, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	property := &models.Property{
		ID:         id.PropertyID(uuid.New()),
		AccountID:  accountID,
		Address:    req.Address,
		FileNumber: req.FileNumber,
		Status:     models.PropertyStatusActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.properties.Create(ctx, property); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create property")
	}
	s.emit(ctx, audit.ActionPropertyCreated, accountID, property.ID.String())
	return property, nil
}

func (s *Service) Get(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) (*models.Property, error) {
	property, err := s.properties.FindByAccountAndID(ctx, accountID, propertyID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get property")
	}
	return property, nil
}

// Exists reports whether the property is visible in the account.
func (s *Service) Exists(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error {
	_, err := s.Get(ctx, accountID, propertyID)
	return err
}

func (s *Service) List(ctx context.Context, accountID id.AccountID) ([]*models.Property, error) {
	properties, err := s.properties.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list properties")
	}
	return properties, nil
}

func (s *Service) Update(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, req *models.UpdatePropertyRequest) (*models.Property, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	property, err := s.Get(ctx, accountID, propertyID)
	if err != nil {
		return nil, err
	}

	if req.Address != nil {
		property.Address = strings.TrimSpace(*req.Address)
	}
	if req.FileNumber != nil {
		property.FileNumber = strings.TrimSpace(*req.FileNumber)
	}
	if req.Status != nil {
		property.Status = *req.Status
	}
	property.UpdatedAt = requestcontext.Now(ctx)

	if err := s.properties.Update(ctx, property); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update property")
	}
	s.emit(ctx, audit.ActionPropertyUpdated, accountID, property.ID.String())
	return property, nil
}

func (s *Service) Delete(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error {
	if err := s.properties.Delete(ctx, accountID, propertyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "property not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete property")
	}
	s.emit(ctx, audit.ActionPropertyDeleted, accountID, propertyID.String())
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
