package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/natovichat/rent-management-app-sub001/internal/account/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// Postgres persists accounts. Name uniqueness is enforced case-insensitively
// by a unique index on lower(name).
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) CreateIfNameAvailable(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Name,
		string(account.Status),
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func (s *Postgres) FindByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM accounts
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, uuid.UUID(accountID)))
}

func (s *Postgres) Update(ctx context.Context, account *models.Account) error {
	query := `
		UPDATE accounts
		SET name = $2, status = $3, updated_at = $4
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		uuid.UUID(account.ID),
		account.Name,
		string(account.Status),
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account rows affected: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) scanOne(row *sql.Row) (*models.Account, error) {
	var (
		account models.Account
		rawID   uuid.UUID
		status  string
	)
	err := row.Scan(&rawID, &account.Name, &status, &account.CreatedAt, &account.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	account.ID = id.AccountID(rawID)
	account.Status = models.AccountStatus(status)
	return &account, nil
}
