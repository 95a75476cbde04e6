package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/natovichat/rent-management-app-sub001/internal/ownership/models"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/sentinel"
)

// Postgres persists ownership records. Mutate wraps the read-validate-write
// sequence in a SERIALIZABLE transaction so concurrent mutations for the
// same property cannot both commit against the same pre-image; the loser
// surfaces as sentinel.ErrSerialization and is retried by the service.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

const ownershipColumns = `id, property_id, owner_id, account_id, percentage, type, start_date, end_date, notes, created_at, updated_at`

func (s *Postgres) FindByAccountAndID(ctx context.Context, accountID id.AccountID, recordID id.OwnershipID) (*models.Ownership, error) {
	query := `
		SELECT ` + ownershipColumns + `
		FROM ownerships
		WHERE id = $1 AND account_id = $2
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(recordID), uuid.UUID(accountID))
	rec, err := scanOwnership(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ownership: %w", err)
	}
	return rec, nil
}

func (s *Postgres) ListByProperty(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error) {
	return listOwnerships(ctx, s.db, accountID, propertyID)
}

func (s *Postgres) OwnerHasActiveStake(ctx context.Context, accountID id.AccountID, ownerID id.OwnerID, asOf time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM ownerships
			WHERE account_id = $1 AND owner_id = $2
			  AND start_date <= $3
			  AND (end_date IS NULL OR end_date > $3)
		)
	`
	var held bool
	if err := s.db.QueryRowContext(ctx, query, uuid.UUID(accountID), uuid.UUID(ownerID), asOf).Scan(&held); err != nil {
		return false, fmt.Errorf("check active stake: %w", err)
	}
	return held, nil
}

func (s *Postgres) Mutate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, fn func(ctx context.Context, txn Txn) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin ownership tx: %w", err)
	}

	txn := &pgTxn{tx: tx, accountID: accountID, propertyID: propertyID}
	if err := fn(ctx, txn); err != nil {
		_ = tx.Rollback()
		return mapSerialization(err)
	}
	if err := tx.Commit(); err != nil {
		return mapSerialization(fmt.Errorf("commit ownership tx: %w", err))
	}
	return nil
}

// mapSerialization translates Postgres serialization_failure (40001) and
// deadlock_detected (40P01) into the retryable sentinel.
func mapSerialization(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01":
			return sentinel.ErrSerialization
		}
	}
	return err
}

type pgTxn struct {
	tx         *sql.Tx
	accountID  id.AccountID
	propertyID id.PropertyID
}

func (t *pgTxn) List(ctx context.Context) ([]*models.Ownership, error) {
	return listOwnerships(ctx, t.tx, t.accountID, t.propertyID)
}

func (t *pgTxn) Insert(ctx context.Context, record *models.Ownership) error {
	query := `
		INSERT INTO ownerships (` + ownershipColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := t.tx.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(record.PropertyID),
		uuid.UUID(record.OwnerID),
		uuid.UUID(record.AccountID),
		record.Percentage,
		string(record.Type),
		record.StartDate,
		nullTime(record.EndDate),
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ownership: %w", err)
	}
	return nil
}

func (t *pgTxn) Update(ctx context.Context, record *models.Ownership) error {
	query := `
		UPDATE ownerships
		SET owner_id = $3, percentage = $4, type = $5, start_date = $6,
		    end_date = $7, notes = $8, updated_at = $9
		WHERE id = $1 AND account_id = $2
	`
	res, err := t.tx.ExecContext(ctx, query,
		uuid.UUID(record.ID),
		uuid.UUID(t.accountID),
		uuid.UUID(record.OwnerID),
		record.Percentage,
		string(record.Type),
		record.StartDate,
		nullTime(record.EndDate),
		record.Notes,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update ownership: %w", err)
	}
	return requireAffected(res)
}

func (t *pgTxn) Delete(ctx context.Context, recordID id.OwnershipID) error {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM ownerships WHERE id = $1 AND account_id = $2`,
		uuid.UUID(recordID), uuid.UUID(t.accountID),
	)
	if err != nil {
		return fmt.Errorf("delete ownership: %w", err)
	}
	return requireAffected(res)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listOwnerships(ctx context.Context, q queryer, accountID id.AccountID, propertyID id.PropertyID) ([]*models.Ownership, error) {
	query := `
		SELECT ` + ownershipColumns + `
		FROM ownerships
		WHERE property_id = $1 AND account_id = $2
		ORDER BY start_date DESC
	`
	rows, err := q.QueryContext(ctx, query, uuid.UUID(propertyID), uuid.UUID(accountID))
	if err != nil {
		return nil, fmt.Errorf("query ownerships: %w", err)
	}
	defer rows.Close()

	var out []*models.Ownership
	for rows.Next() {
		rec, err := scanOwnership(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan ownership: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ownerships: %w", err)
	}
	return out, nil
}

func scanOwnership(scan func(dest ...any) error) (*models.Ownership, error) {
	var (
		rec         models.Ownership
		rawID       uuid.UUID
		rawProperty uuid.UUID
		rawOwner    uuid.UUID
		rawAccount  uuid.UUID
		percentage  decimal.Decimal
		ownType     string
		endDate     sql.NullTime
	)
	err := scan(&rawID, &rawProperty, &rawOwner, &rawAccount, &percentage, &ownType,
		&rec.StartDate, &endDate, &rec.Notes, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID = id.OwnershipID(rawID)
	rec.PropertyID = id.PropertyID(rawProperty)
	rec.OwnerID = id.OwnerID(rawOwner)
	rec.AccountID = id.AccountID(rawAccount)
	rec.Percentage = percentage
	rec.Type = models.OwnershipType(ownType)
	if endDate.Valid {
		end := endDate.Time
		rec.EndDate = &end
	}
	return &rec, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
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
