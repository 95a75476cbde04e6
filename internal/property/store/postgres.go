package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/property/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, property *models.Property) error {
	query := `
		INSERT INTO properties (id, account_id, address, file_number, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(property.ID),
		uuid.UUID(property.AccountID),
		property.Address,
		property.FileNumber,
		string(property.Status),
		property.CreatedAt,
		property.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert property: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, property *models.Property) error {
	query := `
		UPDATE properties
		SET address = $3, file_number = $4, status = $5, updated_at = $6
		WHERE id = $1 AND account_id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(property.ID),
		uuid.UUID(property.AccountID),
		property.Address,
		property.FileNumber,
		string(property.Status),
		property.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update property: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM properties WHERE id = $1 AND account_id = $2`,
		uuid.UUID(propertyID), uuid.UUID(accountID),
	)
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) FindByAccountAndID(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) (*models.Property, error) {
	query := `
		SELECT id, account_id, address, file_number, status, created_at, updated_at
		FROM properties
		WHERE id = $1 AND account_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(propertyID), uuid.UUID(accountID))
	property, err := scanProperty(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan property: %w", err)
	}
	return property, nil
}

func (s *Postgres) ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Property, error) {
	query := `
		SELECT id, account_id, address, file_number, status, created_at, updated_at
		FROM properties
		WHERE account_id = $1
		ORDER BY address
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		property, err := scanProperty(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, property)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate properties: %w", err)
	}
	return out, nil
}

func scanProperty(scan func(dest ...any) error) (*models.Property, error) {
	var (
		property   models.Property
		rawID      uuid.UUID
		rawAccount uuid.UUID
		status     string
	)
	err := scan(&rawID, &rawAccount, &property.Address, &property.FileNumber, &status,
		&property.CreatedAt, &property.UpdatedAt)
	if err != nil {
		return nil, err
	}
	property.ID = id.PropertyID(rawID)
	property.AccountID = id.AccountID(rawAccount)
	property.Status = models.PropertyStatus(status)
	return &property, nil
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
