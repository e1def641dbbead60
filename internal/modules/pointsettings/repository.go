package pointsettings

import "context"

// PointsUpdate sets a tier's points per milestone.
type PointsUpdate struct {
	TierName string
	Points   int
}

// Repository defines the interface for point tier storage.
type Repository interface {
	// ListTiers returns every tier ordered ascending by min_likes.
	ListTiers(ctx context.Context) ([]*Tier, error)

	// GetTierByName returns ErrTierNotFound when the tier does not exist.
	GetTierByName(ctx context.Context, name string) (*Tier, error)

	// UpdatePointsPerMilestone returns ErrTierNotFound when the tier does not exist.
	UpdatePointsPerMilestone(ctx context.Context, name string, points int) (*Tier, error)

	// BulkUpdatePointsPerMilestone applies all updates atomically; an unknown
	// tier name aborts the whole batch with ErrTierNotFound.
	BulkUpdatePointsPerMilestone(ctx context.Context, updates []PointsUpdate) error

	// SeedIfEmpty inserts tiers only when the table holds no rows and reports
	// whether anything was written.
	SeedIfEmpty(ctx context.Context, tiers []*Tier) (bool, error)
}
