package models

import (
	"strings"
	"time"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// PropertyStatus is the lifecycle state of a property.
type PropertyStatus string

const (
	PropertyStatusActive PropertyStatus = "active"
	PropertyStatusSold   PropertyStatus = "sold"
)

// Property is the fractionally owned resource. It belongs to exactly one
// account; a property is never visible or mutable from another account's
// context, and lookups outside the owning account behave as if the
// property does not exist.
type Property struct {
	ID         id.PropertyID  `json:"id"`
	AccountID  id.AccountID   `json:"account_id"`
	Address    string         `json:"address"`
	FileNumber string         `json:"file_number,omitempty"`
	Status     PropertyStatus `json:"status"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// CreatePropertyRequest is the payload for registering a property.
type CreatePropertyRequest struct {
	Address    string `json:"address"`
	FileNumber string `json:"file_number"`
}

func (r *CreatePropertyRequest) Normalize() {
	r.Address = strings.TrimSpace(r.Address)
	r.FileNumber = strings.TrimSpace(r.FileNumber)
}

func (r *CreatePropertyRequest) Validate() error {
	if r.Address == "" {
		return dErrors.New(dErrors.CodeValidation, "property address is required")
	}
	return nil
}

// UpdatePropertyRequest carries mutable property fields; nil means unchanged.
type UpdatePropertyRequest struct {
	Address    *string         `json:"address"`
	FileNumber *string         `json:"file_number"`
	Status     *PropertyStatus `json:"status"`
}

func (r *UpdatePropertyRequest) Validate() error {
	if r.Address != nil && strings.TrimSpace(*r.Address) == "" {
		return dErrors.New(dErrors.CodeValidation, "property address cannot be empty")
	}
	if r.Status != nil && *r.Status != PropertyStatusActive && *r.Status != PropertyStatusSold {
		return dErrors.New(dErrors.CodeValidation, "property status must be active or sold")
	}
	return nil
}
