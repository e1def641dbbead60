package points

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const accountColumns = `id, user_id, current_points, total_points_earned, points_used,
	total_likes, followers, tier, is_active, created_at, updated_at`

// Postgres error codes surfaced by the points_accounts constraints.
const (
	pgCheckViolation      = "23514"
	pgForeignKeyViolation = "23503"
)

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL points account repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func (r *postgresRepository) GetByUserID(ctx context.Context, userID int64) (*Account, error) {
	a, err := scanAccount(r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM points_accounts WHERE user_id = $1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrAccountNotFound, userID)
	}
	return a, err
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]*Account, error) {
	return r.queryAccounts(ctx, `
		SELECT `+accountColumns+`
		FROM points_accounts WHERE is_active = TRUE
		ORDER BY current_points DESC, user_id ASC`)
}

func (r *postgresRepository) ListTopEarners(ctx context.Context, limit int) ([]*Account, error) {
	return r.queryAccounts(ctx, `
		SELECT `+accountColumns+`
		FROM points_accounts WHERE is_active = TRUE
		ORDER BY total_points_earned DESC, user_id ASC
		LIMIT $1`, limit)
}

func (r *postgresRepository) Statistics(ctx context.Context) (*Statistics, error) {
	s := &Statistics{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_points_earned), 0), COALESCE(SUM(points_used), 0)
		FROM points_accounts WHERE is_active = TRUE`).
		Scan(&s.ActiveTripFluencers, &s.TotalPointsEarned, &s.TotalPointsUsed)
	if err != nil {
		return nil, fmt.Errorf("points statistics: %w", err)
	}
	if s.ActiveTripFluencers > 0 {
		s.AveragePointsPerUser = s.TotalPointsEarned / s.ActiveTripFluencers
	}
	return s, nil
}

func (r *postgresRepository) Update(ctx context.Context, userID int64, create bool, fn func(*Account) error) (*Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if create {
		if err := insertIfAbsent(ctx, tx, userID); err != nil {
			return nil, err
		}
	}

	a, err := LockAccount(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	if err := SaveAccount(ctx, tx, a); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return a, nil
}

// LockAccount reads the user's account inside tx and holds a row lock on it
// until the transaction ends.
func LockAccount(ctx context.Context, tx *sql.Tx, userID int64) (*Account, error) {
	a, err := scanAccount(tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM points_accounts WHERE user_id = $1 FOR UPDATE`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: user %d", ErrAccountNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("lock points account: %w", err)
	}
	return a, nil
}

// SaveAccount validates a and writes its balances inside tx.
func SaveAccount(ctx context.Context, tx *sql.Tx, a *Account) error {
	if err := a.Validate(); err != nil {
		return err
	}
	err := tx.QueryRowContext(ctx, `
		UPDATE points_accounts
		SET current_points = $1, total_points_earned = $2, points_used = $3,
		    total_likes = $4, followers = $5, tier = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at`,
		a.CurrentPoints, a.TotalPointsEarned, a.PointsUsed,
		a.TotalLikes, a.Followers, a.Tier, a.IsActive, a.ID).Scan(&a.UpdatedAt)
	if err != nil {
		return MapConstraintError(fmt.Errorf("save points account: %w", err))
	}
	return nil
}

func insertIfAbsent(ctx context.Context, tx *sql.Tx, userID int64) error {
	a := NewAccount(userID)
	_, err := tx.ExecContext(ctx, `
		INSERT INTO points_accounts (id, user_id, tier, is_active)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (user_id) DO NOTHING`,
		a.ID, a.UserID, a.Tier)
	if err != nil {
		return fmt.Errorf("create points account: %w", err)
	}
	return nil
}

// MapConstraintError turns ledger constraint violations reported by Postgres
// into package errors.
func MapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pgCheckViolation:
		return fmt.Errorf("%w: %s", ErrLedgerInvariant, pqErr.Message)
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrAccountNotFound, pqErr.Message)
	}
	return err
}

func (r *postgresRepository) queryAccounts(ctx context.Context, query string, args ...interface{}) ([]*Account, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query points_accounts: %w", err)
	}
	defer rows.Close()

	accounts := []*Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan points_accounts: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanAccount(row rowScanner) (*Account, error) {
	a := &Account{}
	err := row.Scan(&a.ID, &a.UserID, &a.CurrentPoints, &a.TotalPointsEarned, &a.PointsUsed,
		&a.TotalLikes, &a.Followers, &a.Tier, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
