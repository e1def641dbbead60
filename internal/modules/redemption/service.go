package redemption

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/georgemunganga/tripfluencer-admin/internal/modules/points"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service defines the redemption business logic.
type Service interface {
	// Redeem exchanges up to MaxRedeemablePoints of the user's points for a
	// percentage discount on a subscription.
	Redeem(ctx context.Context, req RedeemRequest) (*Redemption, error)

	// Cancel refunds an ACTIVE redemption and marks it CANCELLED.
	Cancel(ctx context.Context, id string) (*Redemption, error)

	// ExpireOld marks every ACTIVE redemption past its expiry as EXPIRED.
	// Points are not refunded. It returns the number of redemptions expired.
	ExpireOld(ctx context.Context) (int64, error)

	Get(ctx context.Context, id string) (*Redemption, error)
	ListAll(ctx context.Context) ([]*Redemption, error)
	ListByUser(ctx context.Context, userID int64) ([]*Redemption, error)
	ListByStatus(ctx context.Context, status string) ([]*Redemption, Status, error)
	Statistics(ctx context.Context) (*Statistics, error)
}

type service struct {
	repo      Repository
	basePrice decimal.Decimal
	batchSize int
	now       func() time.Time
}

// NewService creates a redemption service pricing discounts against basePrice
// and expiring redemptions in chunks of batchSize.
func NewService(repo Repository, basePrice decimal.Decimal, batchSize int) Service {
	return &service{repo: repo, basePrice: basePrice, batchSize: batchSize, now: time.Now}
}

func (s *service) Redeem(ctx context.Context, req RedeemRequest) (*Redemption, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if req.PointsToRedeem <= 0 {
		return nil, fmt.Errorf("points_to_redeem must be positive")
	}
	effective := EffectivePoints(req.PointsToRedeem)

	red, err := s.repo.Redeem(ctx, req.UserID, func(a *points.Account) (*Redemption, error) {
		if err := a.Debit(effective); err != nil {
			return nil, err
		}
		return New(a.UserID, effective, req.SubscriptionType, req.SubscriptionID, s.basePrice, s.now()), nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[redemption] user %d redeemed %d points for %d%% off %s (%s -> %s)",
		red.UserID, red.PointsUsed, red.DiscountPercentage, red.SubscriptionType,
		red.OriginalPrice.StringFixed(2), red.DiscountedPrice.StringFixed(2))
	return red, nil
}

func (s *service) Cancel(ctx context.Context, id string) (*Redemption, error) {
	rid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	red, err := s.repo.Cancel(ctx, rid, func(red *Redemption, a *points.Account) error {
		if err := red.Transition(StatusCancelled); err != nil {
			return err
		}
		return a.Refund(red.PointsUsed)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[redemption] cancelled %s, refunded %d points to user %d", red.ID, red.PointsUsed, red.UserID)
	return red, nil
}

func (s *service) ExpireOld(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireBefore(ctx, s.now(), s.batchSize)
	if err != nil {
		return n, err
	}
	if n > 0 {
		log.Printf("[redemption] expired %d redemptions", n)
	}
	return n, nil
}

func (s *service) Get(ctx context.Context, id string) (*Redemption, error) {
	rid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, rid)
}

func (s *service) ListAll(ctx context.Context) ([]*Redemption, error) {
	return s.repo.ListAll(ctx)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]*Redemption, error) {
	if userID <= 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListByStatus(ctx context.Context, status string) ([]*Redemption, Status, error) {
	st, err := ParseStatus(status)
	if err != nil {
		return nil, "", err
	}
	out, err := s.repo.ListByStatus(ctx, st)
	return out, st, err
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

func parseID(id string) (uuid.UUID, error) {
	rid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("redemption id must be a valid UUID")
	}
	return rid, nil
}
