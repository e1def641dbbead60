package pointsettings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const tierColumns = `id, tier_name, min_likes, max_likes, points_per_milestone, is_active, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL point tier repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) ListTiers(ctx context.Context) ([]*Tier, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+tierColumns+` FROM point_settings ORDER BY min_likes ASC`)
	if err != nil {
		return nil, fmt.Errorf("query point_settings: %w", err)
	}
	defer rows.Close()

	var tiers []*Tier
	for rows.Next() {
		tier, err := scanTier(rows)
		if err != nil {
			return nil, fmt.Errorf("scan point_settings: %w", err)
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate point_settings: %w", err)
	}
	return tiers, nil
}

func (r *postgresRepository) GetTierByName(ctx context.Context, name string) (*Tier, error) {
	tier, err := scanTier(r.db.QueryRowContext(ctx, `SELECT `+tierColumns+` FROM point_settings WHERE tier_name = $1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTierNotFound, name)
	}
	return tier, err
}

func (r *postgresRepository) UpdatePointsPerMilestone(ctx context.Context, name string, points int) (*Tier, error) {
	tier, err := scanTier(r.db.QueryRowContext(ctx, `
		UPDATE point_settings
		SET points_per_milestone = $1, updated_at = NOW()
		WHERE tier_name = $2
		RETURNING `+tierColumns, points, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrTierNotFound, name)
	}
	return tier, err
}

func (r *postgresRepository) BulkUpdatePointsPerMilestone(ctx context.Context, updates []PointsUpdate) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, u := range updates {
		res, err := tx.ExecContext(ctx, `
			UPDATE point_settings SET points_per_milestone = $1, updated_at = NOW() WHERE tier_name = $2`,
			u.Points, u.TierName)
		if err != nil {
			return fmt.Errorf("update tier %s: %w", u.TierName, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", ErrTierNotFound, u.TierName)
		}
	}

	return tx.Commit()
}

func (r *postgresRepository) SeedIfEmpty(ctx context.Context, tiers []*Tier) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM point_settings`).Scan(&count); err != nil {
		return false, fmt.Errorf("count point_settings: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	for _, t := range tiers {
		if t.ID == uuid.Nil {
			t.ID = uuid.New()
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO point_settings (id, tier_name, min_likes, max_likes, points_per_milestone, is_active)
			VALUES ($1, $2, $3, $4, $5, TRUE)
			ON CONFLICT (tier_name) DO NOTHING`,
			t.ID, t.TierName, t.MinLikes, t.MaxLikes, t.PointsPerMilestone)
		if err != nil {
			return false, fmt.Errorf("insert tier %s: %w", t.TierName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanTier(row rowScanner) (*Tier, error) {
	t := &Tier{}
	err := row.Scan(&t.ID, &t.TierName, &t.MinLikes, &t.MaxLikes, &t.PointsPerMilestone,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}
