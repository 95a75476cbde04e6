// Package service coordinates ownership mutations. Every create, update,
// close, and delete runs inside the store's per-property critical section,
// where the ledger validates the resulting active total before anything is
// persisted. Requests that would break the 100% invariant are rejected with
// the current and would-be totals attached.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/audit"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/cache"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/ledger"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	"github.com/natovichat/rent-management-app-sub001/internal/ownership/store"
	"github.com/natovichat/rent-management-app-sub001/internal/platform/metrics"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
	"github.com/natovichat/rent-management-app-sub001/pkg/requestcontext"
)

// maxRetries bounds how often a lost serialization race is retried before
// the caller sees a contention error.
const maxRetries = 3

// PropertyFinder confirms the target property exists in the account.
type PropertyFinder interface {
	Exists(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error
}

// OwnerFinder confirms the referenced owner exists in the account.
type OwnerFinder interface {
	Exists(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error
}

// Service is the single entry point for ownership mutations and reads.
type Service struct {
	ownerships store.Store
	properties PropertyFinder
	owners     OwnerFinder
	totals     cache.TotalCache
	logger     *slog.Logger
	metrics    *metrics.Metrics
	auditor    audit.Publisher
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func WithTotalCache(c cache.TotalCache) Option {
	return func(s *Service) { s.totals = c }
}

func New(ownerships store.Store, properties PropertyFinder, owners OwnerFinder, opts ...Option) *Service {
	s := &Service{
		ownerships: ownerships,
		properties: properties,
		owners:     owners,
		totals:     cache.Nop{},
		logger:     slog.Default(),
		auditor:    audit.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a new stake. The ledger validates the resulting active
// total inside the property's critical section before the record is
// inserted.
func (s *Service) Create(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, req *models.CreateOwnershipRequest) (*models.Ownership, error) {
	if err := s.properties.Exists(ctx, accountID, propertyID); err != nil {
		return nil, err
	}
	if err := s.owners.Exists(ctx, accountID, req.OwnerID); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	record, err := buildRecord(accountID, propertyID, req, now)
	if err != nil {
		return nil, err
	}

	err = s.mutate(ctx, accountID, propertyID, func(ctx context.Context, txn store.Txn) error {
		records, err := txn.List(ctx)
		if err != nil {
			return err
		}
		if _, err := ledger.Validate(records, ledger.Insert(record), now); err != nil {
			return err
		}
		return txn.Insert(ctx, record)
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.ActionOwnershipCreated, accountID, record.ID.String())
	return record, nil
}

// Update applies a partial change to an existing stake and revalidates the
// property's active total with the post-image in place.
func (s *Service) Update(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID, req *models.UpdateOwnershipRequest) (*models.Ownership, error) {
	existing, err := s.find(ctx, accountID, recordID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	var updated *models.Ownership
	err = s.mutate(ctx, accountID, existing.PropertyID, func(ctx context.Context, txn store.Txn) error {
		records, err := txn.List(ctx)
		if err != nil {
			return err
		}
		current := findRecord(records, recordID)
		if current == nil {
			return dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}

		post, err := applyUpdate(current, req, now)
		if err != nil {
			return err
		}
		if _, err := ledger.Validate(records, ledger.Update(post), now); err != nil {
			return err
		}
		if err := txn.Update(ctx, post); err != nil {
			return err
		}
		updated = post
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, audit.ActionOwnershipUpdated, accountID, recordID.String())
	return updated, nil
}

// Close ends a stake at the given date. The record stops contributing to
// the active total from that date on, so closing is only accepted when a
// successor already covers the released share, or when it is staged ahead
// of one that will.
func (s *Service) Close(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID, req *models.CloseOwnershipRequest) (*models.Ownership, error) {
	if strings.TrimSpace(req.EndDate) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "end_date is required")
	}
	end := req.EndDate
	return s.Update(ctx, accountID, recordID, &models.UpdateOwnershipRequest{EndDate: &end})
}

// Delete hard-removes a record. It is refused unless the property's active
// total stays at 100% without it, so history-preserving Close remains the
// normal path for transfers.
func (s *Service) Delete(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) error {
	existing, err := s.find(ctx, accountID, recordID)
	if err != nil {
		return err
	}

	now := requestcontext.Now(ctx)
	err = s.mutate(ctx, accountID, existing.PropertyID, func(ctx context.Context, txn store.Txn) error {
		records, err := txn.List(ctx)
		if err != nil {
			return err
		}
		if _, err := ledger.Validate(records, ledger.Remove(recordID), now); err != nil {
			return err
		}
		return txn.Delete(ctx, recordID)
	})
	if err != nil {
		return err
	}

	s.emit(ctx, audit.ActionOwnershipDeleted, accountID, recordID.String())
	return nil
}

// Get returns a single record within the account.
func (s *Service) Get(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error) {
	return s.find(ctx, accountID, recordID)
}

// ListByProperty returns all of a property's records, active and closed,
// newest start date first.
func (s *Service) ListByProperty(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error) {
	if err := s.properties.Exists(ctx, accountID, propertyID); err != nil {
		return nil, err
	}
	records, err := s.ownerships.ListByProperty(ctx, accountID, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ownerships")
	}
	return records, nil
}

// ActiveSummary is the point-in-time ownership picture of a property.
type ActiveSummary struct {
	AsOf    time.Time           `json:"as_of"`
	Total   string              `json:"total"`
	Records []*models.Ownership `json:"records"`
}

// ActiveOwnerships returns the records active at asOf and their total. The
// total is served from cache when possible.
func (s *Service) ActiveOwnerships(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time) (*ActiveSummary, error) {
	if err := s.properties.Exists(ctx, accountID, propertyID); err != nil {
		return nil, err
	}

	records, err := s.ownerships.ListByProperty(ctx, accountID, propertyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list ownerships")
	}

	active := make([]*models.Ownership, 0, len(records))
	for _, rec := range records {
		if rec.ActiveAt(asOf) {
			active = append(active, rec)
		}
	}

	total, ok := s.totals.Get(ctx, accountID, propertyID, asOf)
	if !ok {
		total = ledger.ActiveTotal(records, asOf).Total
		s.totals.Set(ctx, accountID, propertyID, asOf, total)
	}

	return &ActiveSummary{AsOf: asOf, Total: total.StringFixed(2), Records: active}, nil
}

// OwnerHasActiveStake reports whether an owner currently holds any stake
// in the account. The owner service consults this before deleting owners.
func (s *Service) OwnerHasActiveStake(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, asOf time.Time) (bool, error) {
	held, err := s.ownerships.OwnerHasActiveStake(ctx, accountID, ownerID, asOf)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check owner stakes")
	}
	return held, nil
}

// mutate runs fn in the store's critical section, retrying lost
// serialization races and translating ledger rejections into invariant
// violations. Each observed outcome is counted once.
func (s *Service) mutate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, fn func(ctx context.Context, txn store.Txn) error) error {
	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			if s.metrics != nil {
				s.metrics.ContentionRetries.Inc()
			}
			select {
			case <-ctx.Done():
				return dErrors.Wrap(ctx.Err(), dErrors.CodeInternal, "ownership mutation cancelled")
			case <-time.After(backoff(attempt)):
			}
		}

		err = s.ownerships.Mutate(ctx, accountID, propertyID, fn)
		if !errors.Is(err, sentinel.ErrSerialization) {
			break
		}
		s.logger.InfoContext(ctx, "retrying ownership mutation after serialization conflict",
			"property_id", propertyID, "attempt", attempt+1)
	}

	switch {
	case err == nil:
		s.count(metrics.OutcomeAccepted)
		s.totals.Invalidate(ctx, accountID, propertyID)
		return nil
	case errors.Is(err, sentinel.ErrSerialization):
		s.count(metrics.OutcomeContention)
		return dErrors.Wrap(err, dErrors.CodeContention, "property is being modified concurrently, retry the request")
	default:
		var rejection *ledger.Rejection
		if errors.As(err, &rejection) {
			s.count(metrics.OutcomeRejected)
			return dErrors.Wrap(rejection, dErrors.CodeInvariantViolation, rejection.Error())
		}
		if dErrors.HasCode(err, dErrors.CodeNotFound) ||
			dErrors.HasCode(err, dErrors.CodeValidation) ||
			dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return err
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "ownership mutation failed")
	}
}

func (s *Service) count(outcome string) {
	if s.metrics != nil {
		s.metrics.OwnershipMutations.WithLabelValues(outcome).Inc()
	}
}

func backoff(attempt int) time.Duration {
	base := time.Duration(attempt) * 25 * time.Millisecond
	jitter := time.Duration(rand.Int63n(int64(10 * time.Millisecond)))
	return base + jitter
}

func (s *Service) find(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error) {
	record, err := s.ownerships.FindByAccountAndID(ctx, accountID, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "ownership record not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to get ownership record")
	}
	return record, nil
}

func buildRecord(accountID id.AccountID, propertyID id.PropertyID, req *models.CreateOwnershipRequest, now time.Time) (*models.Ownership, error) {
	if strings.TrimSpace(req.StartDate) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "start_date is required")
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return nil, err
	}

	var end *time.Time
	if strings.TrimSpace(req.EndDate) != "" {
		parsed, err := models.ParseDate(req.EndDate)
		if err != nil {
			return nil, err
		}
		end = &parsed
	}

	ownType := req.Type
	if ownType == "" {
		ownType = models.OwnershipTypePartial
	}

	record := &models.Ownership{
		ID:         id.OwnershipID(uuid.New()),
		PropertyID: propertyID,
		OwnerID:    req.OwnerID,
		AccountID:  accountID,
		Percentage: req.Percentage,
		Type:       ownType,
		StartDate:  start,
		EndDate:    end,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// applyUpdate builds the post-image from a partial request. An explicit
// empty end_date clears the end date, reopening the record.
func applyUpdate(current *models.Ownership, req *models.UpdateOwnershipRequest, now time.Time) (*models.Ownership, error) {
	post := current.Clone()
	if req.Percentage != nil {
		post.Percentage = *req.Percentage
	}
	if req.Type != nil {
		post.Type = *req.Type
	}
	if req.StartDate != nil {
		start, err := models.ParseDate(*req.StartDate)
		if err != nil {
			return nil, err
		}
		post.StartDate = start
	}
	if req.EndDate != nil {
		if strings.TrimSpace(*req.EndDate) == "" {
			post.EndDate = nil
		} else {
			end, err := models.ParseDate(*req.EndDate)
			if err != nil {
				return nil, err
			}
			post.EndDate = &end
		}
	}
	if req.Notes != nil {
		post.Notes = strings.TrimSpace(*req.Notes)
	}
	post.UpdatedAt = now

	if err := post.Validate(); err != nil {
		return nil, err
	}
	return post, nil
}

func findRecord(records []*models.Ownership, recordID id.OwnershipID) *models.Ownership {
	for _, rec := range records {
		if rec.ID == recordID {
			return rec
		}
	}
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
