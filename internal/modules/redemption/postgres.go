package redemption

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/points"
	"github.com/google/uuid"
)

const redemptionColumns = `id, user_id, points_used, discount_percentage, subscription_type,
	original_price, discounted_price, subscription_id, status, redeemed_at, expires_at, updated_at`

type postgresRepository struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL redemption repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepository{db: db} }

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Redemption, error) {
	red, err := scanRedemption(r.db.QueryRowContext(ctx,
		`SELECT `+redemptionColumns+` FROM point_redemptions WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRedemptionNotFound, id)
	}
	return red, err
}

func (r *postgresRepository) ListAll(ctx context.Context) ([]*Redemption, error) {
	return r.queryRedemptions(ctx, `
		SELECT `+redemptionColumns+`
		FROM point_redemptions ORDER BY redeemed_at DESC`)
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID int64) ([]*Redemption, error) {
	return r.queryRedemptions(ctx, `
		SELECT `+redemptionColumns+`
		FROM point_redemptions WHERE user_id = $1 ORDER BY redeemed_at DESC`, userID)
}

func (r *postgresRepository) ListByStatus(ctx context.Context, status Status) ([]*Redemption, error) {
	return r.queryRedemptions(ctx, `
		SELECT `+redemptionColumns+`
		FROM point_redemptions WHERE status = $1 ORDER BY redeemed_at DESC`, status)
}

func (r *postgresRepository) Statistics(ctx context.Context) (*Statistics, error) {
	s := &Statistics{}
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FILTER (WHERE status = $1), COALESCE(SUM(points_used), 0)
		FROM point_redemptions`, StatusActive).
		Scan(&s.ActiveRedemptions, &s.TotalPointsRedeemed)
	if err != nil {
		return nil, fmt.Errorf("redemption statistics: %w", err)
	}
	return s, nil
}

func (r *postgresRepository) Redeem(ctx context.Context, userID int64, build func(*points.Account) (*Redemption, error)) (*Redemption, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	acct, err := points.LockAccount(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	red, err := build(acct)
	if err != nil {
		return nil, err
	}
	if err := points.SaveAccount(ctx, tx, acct); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO point_redemptions
		  (id, user_id, points_used, discount_percentage, subscription_type,
		   original_price, discounted_price, subscription_id, status, redeemed_at, expires_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		red.ID, red.UserID, red.PointsUsed, red.DiscountPercentage, red.SubscriptionType,
		red.OriginalPrice, red.DiscountedPrice, red.SubscriptionID, red.Status,
		red.RedeemedAt, red.ExpiresAt, red.UpdatedAt)
	if err != nil {
		return nil, points.MapConstraintError(fmt.Errorf("insert redemption: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return red, nil
}

func (r *postgresRepository) Cancel(ctx context.Context, id uuid.UUID, apply func(*Redemption, *points.Account) error) (*Redemption, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	red, err := scanRedemption(tx.QueryRowContext(ctx,
		`SELECT `+redemptionColumns+` FROM point_redemptions WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRedemptionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("lock redemption: %w", err)
	}

	acct, err := points.LockAccount(ctx, tx, red.UserID)
	if err != nil {
		return nil, err
	}
	if err := apply(red, acct); err != nil {
		return nil, err
	}
	if err := points.SaveAccount(ctx, tx, acct); err != nil {
		return nil, err
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE point_redemptions SET status = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING updated_at`, red.Status, red.ID).Scan(&red.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update redemption status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return red, nil
}

func (r *postgresRepository) ExpireBefore(ctx context.Context, now time.Time, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	var total int64
	for {
		res, err := r.db.ExecContext(ctx, `
			UPDATE point_redemptions SET status = $1, updated_at = NOW()
			WHERE id IN (
				SELECT id FROM point_redemptions
				WHERE status = $2 AND expires_at < $3
				ORDER BY expires_at
				LIMIT $4
				FOR UPDATE SKIP LOCKED
			)`, StatusExpired, StatusActive, now, batchSize)
		if err != nil {
			return total, fmt.Errorf("expire redemptions: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batchSize) {
			return total, nil
		}
	}
}

func (r *postgresRepository) queryRedemptions(ctx context.Context, query string, args ...interface{}) ([]*Redemption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query point_redemptions: %w", err)
	}
	defer rows.Close()

	out := []*Redemption{}
	for rows.Next() {
		red, err := scanRedemption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point_redemptions: %w", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanRedemption(row rowScanner) (*Redemption, error) {
	red := &Redemption{}
	var subscriptionID sql.NullInt64
	err := row.Scan(&red.ID, &red.UserID, &red.PointsUsed, &red.DiscountPercentage, &red.SubscriptionType,
		&red.OriginalPrice, &red.DiscountedPrice, &subscriptionID, &red.Status,
		&red.RedeemedAt, &red.ExpiresAt, &red.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if subscriptionID.Valid {
		id := subscriptionID.Int64
		red.SubscriptionID = &id
	}
	return red, nil
}
