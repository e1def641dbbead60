package redemption

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxRedeemablePoints caps a single redemption; one point buys one percent of discount.
const MaxRedeemablePoints = 100

// DefaultSubscriptionType is used when a redemption request names no subscription.
const DefaultSubscriptionType = "MONTHLY_PREMIUM"

var (
	// ErrRedemptionNotFound is returned when no redemption has the requested id.
	ErrRedemptionNotFound = errors.New("redemption not found")
	// ErrRedemptionNotActive is returned when a terminal redemption is asked to change.
	ErrRedemptionNotActive = errors.New("redemption is not active")
)

// Status represents the lifecycle state of a redemption.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
	StatusCancelled Status = "CANCELLED"
)

// validTransitions defines the redemption state machine. EXPIRED and
// CANCELLED are terminal.
var validTransitions = map[Status][]Status{
	StatusActive:    {StatusExpired, StatusCancelled},
	StatusExpired:   {},
	StatusCancelled: {},
}

// CanTransition returns true if the redemption transition is valid.
func CanTransition(current, next Status) bool {
	for _, s := range validTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// ParseStatus accepts a status name in any case.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := validTransitions[st]; !ok {
		return "", fmt.Errorf("status must be one of ACTIVE, EXPIRED or CANCELLED, got %q", s)
	}
	return st, nil
}

// Redemption is an exchange of points for a subscription discount.
type Redemption struct {
	ID                 uuid.UUID       `json:"id"`
	UserID             int64           `json:"user_id"`
	PointsUsed         int             `json:"points_used"`
	DiscountPercentage int             `json:"discount_percentage"`
	SubscriptionType   string          `json:"subscription_type"`
	OriginalPrice      decimal.Decimal `json:"original_price"`
	DiscountedPrice    decimal.Decimal `json:"discounted_price"`
	SubscriptionID     *int64          `json:"subscription_id"`
	Status             Status          `json:"status"`
	RedeemedAt         time.Time       `json:"redeemed_at"`
	ExpiresAt          time.Time       `json:"expires_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// EffectivePoints clamps a requested amount to MaxRedeemablePoints.
func EffectivePoints(requested int) int {
	if requested > MaxRedeemablePoints {
		return MaxRedeemablePoints
	}
	return requested
}

// DiscountedPrice applies percent off base, rounded to cents and floored at zero.
func DiscountedPrice(base decimal.Decimal, percent int) decimal.Decimal {
	price := base.Mul(decimal.NewFromInt(int64(100 - percent))).Div(decimal.NewFromInt(100)).Round(2)
	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// New builds an ACTIVE redemption of points (already clamped) against base,
// valid for one month from now.
func New(userID int64, points int, subscriptionType string, subscriptionID *int64, base decimal.Decimal, now time.Time) *Redemption {
	if subscriptionType == "" {
		subscriptionType = DefaultSubscriptionType
	}
	return &Redemption{
		ID:                 uuid.New(),
		UserID:             userID,
		PointsUsed:         points,
		DiscountPercentage: points,
		SubscriptionType:   subscriptionType,
		OriginalPrice:      base,
		DiscountedPrice:    DiscountedPrice(base, points),
		SubscriptionID:     subscriptionID,
		Status:             StatusActive,
		RedeemedAt:         now,
		ExpiresAt:          now.AddDate(0, 1, 0),
		UpdatedAt:          now,
	}
}

// Transition moves the redemption to next or fails with ErrRedemptionNotActive.
func (r *Redemption) Transition(next Status) error {
	if !CanTransition(r.Status, next) {
		return fmt.Errorf("%w: cannot move redemption %s from %s to %s", ErrRedemptionNotActive, r.ID, r.Status, next)
	}
	r.Status = next
	return nil
}

// RedeemRequest is the payload for exchanging points for a discount.
type RedeemRequest struct {
	UserID           int64  `json:"user_id"`
	PointsToRedeem   int    `json:"points_to_redeem"`
	SubscriptionType string `json:"subscription_type,omitempty"`
	SubscriptionID   *int64 `json:"subscription_id,omitempty"`
}

// Statistics summarises redemptions.
type Statistics struct {
	ActiveRedemptions   int64 `json:"active_redemptions"`
	TotalPointsRedeemed int64 `json:"total_points_redeemed"`
}
