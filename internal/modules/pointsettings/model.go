package pointsettings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LikesPerMilestone is the number of likes that make up one milestone in the lowest tier.
const LikesPerMilestone = 100

var (
	// ErrTierNotFound is returned when no tier with the requested name exists.
	ErrTierNotFound = errors.New("point tier not found")
	// ErrInvalidTier is returned for malformed tier updates or seed definitions.
	ErrInvalidTier = errors.New("invalid point tier")
)

// Tier is a like-count bracket carrying a point-earning rule.
// @Description Point tier
// @Description with id, tier_name, min_likes, max_likes, points_per_milestone and is_active
type Tier struct {
	ID                 uuid.UUID `json:"id" yaml:"-"`
	TierName           string    `json:"tier_name" yaml:"tier_name"`
	MinLikes           int       `json:"min_likes" yaml:"min_likes"`
	MaxLikes           int       `json:"max_likes" yaml:"max_likes"`
	PointsPerMilestone int       `json:"points_per_milestone" yaml:"points_per_milestone"`
	IsActive           bool      `json:"is_active" yaml:"-"`
	CreatedAt          time.Time `json:"created_at" yaml:"-"`
	UpdatedAt          time.Time `json:"updated_at" yaml:"-"`
}

// Contains reports whether likes falls within the tier's inclusive bounds.
func (t *Tier) Contains(likes int) bool {
	return likes >= t.MinLikes && likes <= t.MaxLikes
}

// UpdateTierRequest is the payload for changing a tier's points per milestone.
type UpdateTierRequest struct {
	TierName           string `json:"tier_name"`
	PointsPerMilestone *int   `json:"points_per_milestone"`
}

// DefaultTiers returns the built-in tier ladder seeded into an empty store.
func DefaultTiers() []*Tier {
	return []*Tier{
		{TierName: "tier1", MinLikes: 0, MaxLikes: 1000, PointsPerMilestone: 10},
		{TierName: "tier2", MinLikes: 1001, MaxLikes: 10000, PointsPerMilestone: 20},
		{TierName: "tier3", MinLikes: 10001, MaxLikes: 100000, PointsPerMilestone: 30},
		{TierName: "tier4", MinLikes: 100001, MaxLikes: 500000, PointsPerMilestone: 40},
		{TierName: "tier5", MinLikes: 500001, MaxLikes: 1000000, PointsPerMilestone: 50},
	}
}

// CalculatePointsFromLikes returns the points earned for likes against tiers,
// which must be ordered ascending by MinLikes. The lowest tier pays per
// milestone of LikesPerMilestone likes; every other tier pays a flat amount.
// Likes above every range earn the highest tier's flat amount.
func CalculatePointsFromLikes(tiers []*Tier, likes int) int {
	if len(tiers) == 0 || likes <= 0 {
		return 0
	}
	for i, t := range tiers {
		if !t.Contains(likes) {
			continue
		}
		if i == 0 {
			return (likes / LikesPerMilestone) * t.PointsPerMilestone
		}
		return t.PointsPerMilestone
	}
	return tiers[len(tiers)-1].PointsPerMilestone
}
