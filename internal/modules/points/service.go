package points

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
)

// TopEarnersLimit caps the top earners listing.
const TopEarnersLimit = 10

// TierCalculator converts a number of likes into points under the current tier ladder.
type TierCalculator interface {
	CalculatePoints(ctx context.Context, likes int) (int, error)
}

// Service defines the points ledger business logic.
type Service interface {
	ListActive(ctx context.Context) ([]*Account, error)
	GetByUser(ctx context.Context, userID int64) (*Account, error)
	TopEarners(ctx context.Context) ([]*Account, error)
	Statistics(ctx context.Context) (*Statistics, error)

	AddPoints(ctx context.Context, req AddPointsRequest) (*Account, error)
	DeductPoints(ctx context.Context, req DeductPointsRequest) (*Account, error)
	ToggleActive(ctx context.Context, userID int64) (*Account, error)

	// AwardPointsForLikes credits the points earned for newLikes and adds them
	// to the account's like total. It returns the account and the points awarded.
	AwardPointsForLikes(ctx context.Context, userID int64, newLikes int) (*Account, int, error)

	// SyncAccount records the latest follower and like counts and reclassifies the tier.
	SyncAccount(ctx context.Context, userID int64, req SyncAccountRequest) (*Account, error)
}

type service struct {
	repo  Repository
	tiers TierCalculator
}

func NewService(repo Repository, tiers TierCalculator) Service {
	return &service{repo: repo, tiers: tiers}
}

func (s *service) ListActive(ctx context.Context) ([]*Account, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) GetByUser(ctx context.Context, userID int64) (*Account, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) TopEarners(ctx context.Context) ([]*Account, error) {
	return s.repo.ListTopEarners(ctx, TopEarnersLimit)
}

func (s *service) Statistics(ctx context.Context) (*Statistics, error) {
	return s.repo.Statistics(ctx)
}

func (s *service) AddPoints(ctx context.Context, req AddPointsRequest) (*Account, error) {
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if req.Points <= 0 {
		return s.unchanged(ctx, req.UserID)
	}
	if err := ValidateAmount("points", req.Points); err != nil {
		return nil, err
	}

	a, err := s.repo.Update(ctx, req.UserID, true, func(a *Account) error {
		return a.Credit(req.Points)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[points] added %d points to user %d (reason: %q)", req.Points, req.UserID, req.Reason)
	return a, nil
}

func (s *service) DeductPoints(ctx context.Context, req DeductPointsRequest) (*Account, error) {
	if err := validateUserID(req.UserID); err != nil {
		return nil, err
	}
	if err := ValidateAmount("points", req.Points); err != nil {
		return nil, err
	}

	a, err := s.repo.Update(ctx, req.UserID, false, func(a *Account) error {
		return a.Debit(req.Points)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[points] deducted %d points from user %d (reason: %q)", req.Points, req.UserID, req.Reason)
	return a, nil
}

func (s *service) ToggleActive(ctx context.Context, userID int64) (*Account, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}

	a, err := s.repo.Update(ctx, userID, false, func(a *Account) error {
		a.IsActive = !a.IsActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[points] user %d active=%t", userID, a.IsActive)
	return a, nil
}

func (s *service) AwardPointsForLikes(ctx context.Context, userID int64, newLikes int) (*Account, int, error) {
	if err := validateUserID(userID); err != nil {
		return nil, 0, err
	}
	if newLikes < 0 {
		return nil, 0, fmt.Errorf("new_likes must be non-negative")
	}
	if err := ValidateAmount("new_likes", newLikes); err != nil {
		return nil, 0, err
	}

	// The ladder is read outside the account transaction.
	awarded, err := s.tiers.CalculatePoints(ctx, newLikes)
	if err != nil {
		return nil, 0, fmt.Errorf("calculate points for likes: %w", err)
	}

	a, err := s.repo.Update(ctx, userID, true, func(a *Account) error {
		if err := a.Credit(awarded); err != nil {
			return err
		}
		return a.AddLikes(newLikes)
	})
	if err != nil {
		return nil, 0, err
	}
	log.Printf("[points] awarded %d points to user %d for %d likes", awarded, userID, newLikes)
	return a, awarded, nil
}

func (s *service) SyncAccount(ctx context.Context, userID int64, req SyncAccountRequest) (*Account, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if req.Followers < 0 || req.TotalLikes < 0 {
		return nil, fmt.Errorf("followers and total_likes must be non-negative")
	}
	if err := ValidateAmount("followers", req.Followers); err != nil {
		return nil, err
	}
	if err := ValidateAmount("total_likes", req.TotalLikes); err != nil {
		return nil, err
	}

	a, err := s.repo.Update(ctx, userID, true, func(a *Account) error {
		a.Sync(req.Followers, req.TotalLikes)
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[points] synced user %d: followers=%d likes=%d tier=%s", userID, a.Followers, a.TotalLikes, a.Tier)
	return a, nil
}

// unchanged returns the account untouched by a non-positive credit. A user
// without an account gets an unsaved empty one rather than an error.
func (s *service) unchanged(ctx context.Context, userID int64) (*Account, error) {
	a, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, ErrAccountNotFound) {
		empty := NewAccount(userID)
		empty.ID = uuid.Nil
		return empty, nil
	}
	return a, err
}

func validateUserID(userID int64) error {
	if userID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	return nil
}
