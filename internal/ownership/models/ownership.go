package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// OwnershipType distinguishes sole from shared title.
type OwnershipType string

const (
	OwnershipTypeFull    OwnershipType = "full"
	OwnershipTypePartial OwnershipType = "partial"
)

// Ownership is one owner's time-bounded fractional claim on a property.
//
// Invariants:
//   - Percentage is in (0, 100]; decimal arithmetic throughout, never floats
//   - StartDate <= EndDate when EndDate is set; the active interval is
//     [StartDate, EndDate), so a record is no longer active on its end date
//   - AccountID always equals the property's account; cross-account
//     references are forbidden
//
// Lifecycle: a record is closed (EndDate set) rather than deleted when a
// stake transfers, preserving history. Hard deletion is permitted only when
// removing the record keeps the property's active total at 100%.
type Ownership struct {
	ID         id.OwnershipID  `json:"id"`
	PropertyID id.PropertyID   `json:"property_id"`
	OwnerID    id.OwnerID      `json:"owner_id"`
	AccountID  id.AccountID    `json:"account_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Type       OwnershipType   `json:"type"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    *time.Time      `json:"end_date,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

var hundred = decimal.NewFromInt(100)

// ActiveAt reports whether the record's interval contains t.
func (o *Ownership) ActiveAt(t time.Time) bool {
	if o.StartDate.After(t) {
		return false
	}
	return o.EndDate == nil || o.EndDate.After(t)
}

// Clone returns an independent copy.
func (o *Ownership) Clone() *Ownership {
	cp := *o
	if o.EndDate != nil {
		end := *o.EndDate
		cp.EndDate = &end
	}
	return &cp
}

// Validate checks field-level invariants. Range errors are caught here,
// before any ledger computation runs.
func (o *Ownership) Validate() error {
	if o.Percentage.LessThanOrEqual(decimal.Zero) || o.Percentage.GreaterThan(hundred) {
		return dErrors.New(dErrors.CodeInvalidInput, "percentage must be greater than 0 and at most 100")
	}
	if o.EndDate != nil && o.StartDate.After(*o.EndDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "start date must not be after end date")
	}
	if o.Type != OwnershipTypeFull && o.Type != OwnershipTypePartial {
		return dErrors.New(dErrors.CodeInvalidInput, "ownership type must be full or partial")
	}
	return nil
}

// ParseDate accepts a date-only or RFC 3339 timestamp string.
func ParseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, dErrors.Newf(dErrors.CodeInvalidInput, "invalid date %q, expected YYYY-MM-DD or RFC 3339", raw)
}

// CreateOwnershipRequest is the payload for recording a new stake.
type CreateOwnershipRequest struct {
	OwnerID    id.OwnerID      `json:"owner_id"`
	Percentage decimal.Decimal `json:"percentage"`
	Type       OwnershipType   `json:"type"`
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Notes      string          `json:"notes"`
}

// UpdateOwnershipRequest carries partial changes; nil means unchanged.
// An explicit empty EndDate clears the end date, reopening the record.
type UpdateOwnershipRequest struct {
	Percentage *decimal.Decimal `json:"percentage"`
	Type       *OwnershipType   `json:"type"`
	StartDate  *string          `json:"start_date"`
	EndDate    *string          `json:"end_date"`
	Notes      *string          `json:"notes"`
}

// CloseOwnershipRequest ends a stake as of the given date.
type CloseOwnershipRequest struct {
	EndDate string `json:"end_date"`
}
