// Package domain defines typed identifiers shared across modules.
//
// Every aggregate gets its own UUID-backed type so an account id can never be
// passed where a property id is expected. Parsing validates at trust
// boundaries: ids must be valid, non-empty, non-nil UUIDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "github.com/natovichat/rent-management-app-sub001/pkg/domain-errors"
)

type (
	// AccountID identifies a tenant account, the isolation boundary for all data.
	AccountID uuid.UUID
	// OwnerID identifies a party that can hold a stake in a property.
	OwnerID uuid.UUID
	// PropertyID identifies a property (the fractionally owned resource).
	PropertyID uuid.UUID
	// OwnershipID identifies a single time-bounded ownership record.
	OwnershipID uuid.UUID
)

func parseUUID(kind, raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is required", kind)
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id is not a valid UUID", kind)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s id must not be the nil UUID", kind)
	}
	return u, nil
}

// ParseAccountID parses and validates an account id.
func ParseAccountID(raw string) (AccountID, error) {
	u, err := parseUUID("account", raw)
	return AccountID(u), err
}

// ParseOwnerID parses and validates an owner id.
func ParseOwnerID(raw string) (OwnerID, error) {
	u, err := parseUUID("owner", raw)
	return OwnerID(u), err
}

// ParsePropertyID parses and validates a property id.
func ParsePropertyID(raw string) (PropertyID, error) {
	u, err := parseUUID("property", raw)
	return PropertyID(u), err
}

// ParseOwnershipID parses and validates an ownership record id.
func ParseOwnershipID(raw string) (OwnershipID, error) {
	u, err := parseUUID("ownership", raw)
	return OwnershipID(u), err
}

func (i AccountID) String() string   { return uuid.UUID(i).String() }
func (i OwnerID) String() string     { return uuid.UUID(i).String() }
func (i PropertyID) String() string  { return uuid.UUID(i).String() }
func (i OwnershipID) String() string { return uuid.UUID(i).String() }

func (i AccountID) IsNil() bool   { return uuid.UUID(i) == uuid.Nil }
func (i OwnerID) IsNil() bool     { return uuid.UUID(i) == uuid.Nil }
func (i PropertyID) IsNil() bool  { return uuid.UUID(i) == uuid.Nil }
func (i OwnershipID) IsNil() bool { return uuid.UUID(i) == uuid.Nil }

// MarshalText implementations keep typed ids transparent in JSON payloads.

func (i AccountID) MarshalText() ([]byte, error)   { return []byte(i.String()), nil }
func (i OwnerID) MarshalText() ([]byte, error)     { return []byte(i.String()), nil }
func (i PropertyID) MarshalText() ([]byte, error)  { return []byte(i.String()), nil }
func (i OwnershipID) MarshalText() ([]byte, error) { return []byte(i.String()), nil }

func (i *AccountID) UnmarshalText(b []byte) error {
	id, err := ParseAccountID(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

func (i *OwnerID) UnmarshalText(b []byte) error {
	id, err := ParseOwnerID(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

func (i *PropertyID) UnmarshalText(b []byte) error {
	id, err := ParsePropertyID(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}

func (i *OwnershipID) UnmarshalText(b []byte) error {
	id, err := ParseOwnershipID(string(b))
	if err != nil {
		return err
	}
	*i = id
	return nil
}
