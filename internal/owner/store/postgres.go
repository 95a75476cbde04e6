package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/natovichat/rent-management-app-sub001/internal/owner/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Create(ctx context.Context, owner *models.Owner) error {
	query := `
		INSERT INTO owners (id, account_id, name, type, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(owner.ID),
		uuid.UUID(owner.AccountID),
		owner.Name,
		string(owner.Type),
		owner.Email,
		owner.Phone,
		owner.CreatedAt,
		owner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert owner: %w", err)
	}
	return nil
}

func (s *Postgres) Update(ctx context.Context, owner *models.Owner) error {
	query := `
		UPDATE owners
		SET name = $3, type = $4, email = $5, phone = $6, updated_at = $7
		WHERE id = $1 AND account_id = $2
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(owner.ID),
		uuid.UUID(owner.AccountID),
		owner.Name,
		string(owner.Type),
		owner.Email,
		owner.Phone,
		owner.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update owner: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) Delete(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM owners WHERE id = $1 AND account_id = $2`,
		uuid.UUID(ownerID), uuid.UUID(accountID),
	)
	if err != nil {
		return fmt.Errorf("delete owner: %w", err)
	}
	return requireAffected(res)
}

func (s *Postgres) FindByAccountAndID(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID) (*models.Owner, error) {
	query := `
		SELECT id, account_id, name, type, email, phone, created_at, updated_at
		FROM owners
		WHERE id = $1 AND account_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(ownerID), uuid.UUID(accountID))
	owner, err := scanOwner(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan owner: %w", err)
	}
	return owner, nil
}

func (s *Postgres) ListByAccount(ctx context.Context, accountID id.AccountID) ([]*models.Owner, error) {
	query := `
		SELECT id, account_id, name, type, email, phone, created_at, updated_at
		FROM owners
		WHERE account_id = $1
		ORDER BY name
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("query owners: %w", err)
	}
	defer rows.Close()

	var out []*models.Owner
	for rows.Next() {
		owner, err := scanOwner(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan owner: %w", err)
		}
		out = append(out, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate owners: %w", err)
	}
	return out, nil
}

func scanOwner(scan func(dest ...any) error) (*models.Owner, error) {
	var (
		owner      models.Owner
		rawID      uuid.UUID
		rawAccount uuid.UUID
		ownerType  string
	)
	err := scan(&rawID, &rawAccount, &owner.Name, &ownerType, &owner.Email, &owner.Phone,
		&owner.CreatedAt, &owner.UpdatedAt)
	if err != nil {
		return nil, err
	}
	owner.ID = id.OwnerID(rawID)
	owner.AccountID = id.AccountID(rawAccount)
	owner.Type = models.OwnerType(ownerType)
	return &owner, nil
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
