package redemption

import (
	"context"
	"time"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/points"
	"github.com/google/uuid"
)

// Repository defines persistence operations for redemptions.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Redemption, error)
	ListAll(ctx context.Context) ([]*Redemption, error)
	ListByUser(ctx context.Context, userID int64) ([]*Redemption, error)
	ListByStatus(ctx context.Context, status Status) ([]*Redemption, error)
	Statistics(ctx context.Context) (*Statistics, error)

	// Redeem locks the user's points account and passes it to build, which
	// debits it and returns the redemption to record. The account update and
	// the redemption insert commit together or not at all.
	Redeem(ctx context.Context, userID int64, build func(*points.Account) (*Redemption, error)) (*Redemption, error)

	// Cancel locks the redemption and its owner's account, passes both to
	// apply, and persists both in one transaction.
	Cancel(ctx context.Context, id uuid.UUID, apply func(*Redemption, *points.Account) error) (*Redemption, error)

	// ExpireBefore moves ACTIVE redemptions whose expiry is before now to
	// EXPIRED in batches of batchSize and returns how many were moved.
	ExpireBefore(ctx context.Context, now time.Time, batchSize int) (int64, error)
}
