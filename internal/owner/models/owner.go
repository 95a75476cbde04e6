package models

import (
	"strings"
	"time"

	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

// OwnerType distinguishes private individuals from companies.
type OwnerType string

const (
	OwnerTypeIndividual OwnerType = "individual"
	OwnerTypeCompany    OwnerType = "company"
)

// Owner is a party that can hold a fractional stake in a property.
// Owners belong to exactly one account and are never visible outside it.
type Owner struct {
	ID        id.OwnerID   `json:"id"`
	AccountID id.AccountID `json:"account_id"`
	Name      string       `json:"name"`
	Type      OwnerType    `json:"type"`
	Email     string       `json:"email,omitempty"`
	Phone     string       `json:"phone,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// CreateOwnerRequest is the payload for creating an owner.
type CreateOwnerRequest struct {
	Name  string    `json:"name"`
	Type  OwnerType `json:"type"`
	Email string    `json:"email"`
	Phone string    `json:"phone"`
}

func (r *CreateOwnerRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	if r.Type == "" {
		r.Type = OwnerTypeIndividual
	}
}

func (r *CreateOwnerRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "owner name is required")
	}
	if r.Type != OwnerTypeIndividual && r.Type != OwnerTypeCompany {
		return dErrors.New(dErrors.CodeValidation, "owner type must be individual or company")
	}
	return nil
}

// UpdateOwnerRequest carries the mutable owner fields; nil means unchanged.
type UpdateOwnerRequest struct {
	Name  *string    `json:"name"`
	Type  *OwnerType `json:"type"`
	Email *string    `json:"email"`
	Phone *string    `json:"phone"`
}

func (r *UpdateOwnerRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "owner name cannot be empty")
	}
	if r.Type != nil && *r.Type != OwnerTypeIndividual && *r.Type != OwnerTypeCompany {
		return dErrors.New(dErrors.CodeValidation, "owner type must be individual or company")
	}
	return nil
}
