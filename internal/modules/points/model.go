package points

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Tier is the follower-based classification of a TripFluencer.
type Tier string

const (
	TierSilver   Tier = "SILVER"
	TierGold     Tier = "GOLD"
	TierPlatinum Tier = "PLATINUM"
)

// Follower thresholds for the GOLD and PLATINUM tiers.
const (
	GoldFollowers     = 15000
	PlatinumFollowers = 25000
)

// MaxAmount bounds every stored counter; the columns are Postgres INTEGER.
const MaxAmount = math.MaxInt32

var (
	// ErrAccountNotFound is returned when a user has no points account.
	ErrAccountNotFound = errors.New("tripfluencer points account not found")
	// ErrInsufficientPoints is returned when a deduction exceeds the current balance.
	ErrInsufficientPoints = errors.New("insufficient points")
	// ErrLedgerInvariant is returned when an account's balances no longer reconcile.
	ErrLedgerInvariant = errors.New("points ledger invariant violated")
	// ErrAmountOutOfRange is returned when an amount or a resulting counter exceeds MaxAmount.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// ValidateAmount rejects a request amount above MaxAmount.
func ValidateAmount(field string, n int) error {
	if n > MaxAmount {
		return fmt.Errorf("%w: %s must be at most %d, got %d", ErrAmountOutOfRange, field, MaxAmount, n)
	}
	return nil
}

// TierForFollowers classifies an account by its follower count.
func TierForFollowers(followers int) Tier {
	switch {
	case followers >= PlatinumFollowers:
		return TierPlatinum
	case followers >= GoldFollowers:
		return TierGold
	default:
		return TierSilver
	}
}

// Account is the points balance of one external user.
type Account struct {
	ID                uuid.UUID `json:"id"`
	UserID            int64     `json:"user_id"`
	CurrentPoints     int       `json:"current_points"`
	TotalPointsEarned int       `json:"total_points_earned"`
	PointsUsed        int       `json:"points_used"`
	TotalLikes        int       `json:"total_likes"`
	Followers         int       `json:"followers"`
	Tier              Tier      `json:"tier"`
	IsActive          bool      `json:"is_active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// NewAccount returns an empty, active SILVER account for userID.
func NewAccount(userID int64) *Account {
	return &Account{
		ID:       uuid.New(),
		UserID:   userID,
		Tier:     TierSilver,
		IsActive: true,
	}
}

// Credit adds earned points. Non-positive amounts leave the account untouched.
// The current balance never exceeds the earned total, so bounding the latter
// bounds both.
func (a *Account) Credit(points int) error {
	if points <= 0 {
		return nil
	}
	if points > MaxAmount-a.TotalPointsEarned {
		return fmt.Errorf("%w: crediting %d would take user %d past %d earned points",
			ErrAmountOutOfRange, points, a.UserID, MaxAmount)
	}
	a.CurrentPoints += points
	a.TotalPointsEarned += points
	return nil
}

// AddLikes adds newly received likes to the like total.
func (a *Account) AddLikes(likes int) error {
	if likes > MaxAmount-a.TotalLikes {
		return fmt.Errorf("%w: adding %d likes would take user %d past %d likes",
			ErrAmountOutOfRange, likes, a.UserID, MaxAmount)
	}
	a.TotalLikes += likes
	return nil
}

// Debit spends points from the current balance.
func (a *Account) Debit(points int) error {
	if points <= 0 {
		return fmt.Errorf("%w: deduction must be positive, got %d", ErrInsufficientPoints, points)
	}
	if a.CurrentPoints < points {
		return fmt.Errorf("%w: user %d has %d, needs %d", ErrInsufficientPoints, a.UserID, a.CurrentPoints, points)
	}
	a.CurrentPoints -= points
	a.PointsUsed += points
	return nil
}

// Refund returns previously spent points to the current balance.
func (a *Account) Refund(points int) error {
	if points <= 0 || points > a.PointsUsed {
		return fmt.Errorf("%w: cannot refund %d of %d used points", ErrLedgerInvariant, points, a.PointsUsed)
	}
	a.CurrentPoints += points
	a.PointsUsed -= points
	return nil
}

// Sync replaces the follower and like counters and reclassifies the tier.
func (a *Account) Sync(followers, totalLikes int) {
	a.Followers = followers
	a.TotalLikes = totalLikes
	a.Tier = TierForFollowers(followers)
}

// Validate checks that the balances reconcile.
func (a *Account) Validate() error {
	if a.CurrentPoints < 0 || a.PointsUsed < 0 || a.TotalPointsEarned < 0 {
		return fmt.Errorf("%w: negative balance on user %d", ErrLedgerInvariant, a.UserID)
	}
	if a.CurrentPoints != a.TotalPointsEarned-a.PointsUsed {
		return fmt.Errorf("%w: user %d current=%d earned=%d used=%d",
			ErrLedgerInvariant, a.UserID, a.CurrentPoints, a.TotalPointsEarned, a.PointsUsed)
	}
	return nil
}

// Statistics aggregates the active accounts.
type Statistics struct {
	ActiveTripFluencers  int64 `json:"active_tripfluencers"`
	TotalPointsEarned    int64 `json:"total_points_earned"`
	TotalPointsUsed      int64 `json:"total_points_used"`
	AveragePointsPerUser int64 `json:"average_points_per_user"`
}

// ── Requests ─────────────────────────────────────────────────────────────────

type AddPointsRequest struct {
	UserID int64  `json:"user_id"`
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}

type DeductPointsRequest struct {
	UserID int64  `json:"user_id"`
	Points int    `json:"points"`
	Reason string `json:"reason,omitempty"`
}

type AwardLikesRequest struct {
	NewLikes int `json:"new_likes"`
}

type SyncAccountRequest struct {
	Followers  int `json:"followers"`
	TotalLikes int `json:"total_likes"`
}
