package pointsettings

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Service defines the point tier business logic.
type Service interface {
	// GetAllTiers returns tiers ordered ascending by min_likes.
	GetAllTiers(ctx context.Context) ([]*Tier, error)

	// GetTier returns a tier by name or ErrTierNotFound.
	GetTier(ctx context.Context, name string) (*Tier, error)

	// UpdateTier changes the points per milestone of one tier.
	UpdateTier(ctx context.Context, name string, req UpdateTierRequest) (*Tier, error)

	// BulkUpdateTiers applies several updates atomically and returns the full ladder.
	BulkUpdateTiers(ctx context.Context, reqs []UpdateTierRequest) ([]*Tier, error)

	// InitializeDefaults seeds the ladder when the store is empty and returns all tiers.
	InitializeDefaults(ctx context.Context) ([]*Tier, error)

	// CalculatePoints returns the points earned for a number of likes under the current ladder.
	CalculatePoints(ctx context.Context, likes int) (int, error)
}

type service struct {
	repo Repository
	seed []*Tier
}

// NewService creates a new point tier service. A nil seed falls back to DefaultTiers.
func NewService(repo Repository, seed []*Tier) Service {
	return &service{repo: repo, seed: seed}
}

func (s *service) GetAllTiers(ctx context.Context) ([]*Tier, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return nil, err
	}
	if tiers == nil {
		tiers = []*Tier{}
	}
	return tiers, nil
}

func (s *service) GetTier(ctx context.Context, name string) (*Tier, error) {
	return s.repo.GetTierByName(ctx, name)
}

func (s *service) UpdateTier(ctx context.Context, name string, req UpdateTierRequest) (*Tier, error) {
	points, err := validateUpdate(name, req)
	if err != nil {
		return nil, err
	}

	tier, err := s.repo.UpdatePointsPerMilestone(ctx, name, points)
	if err != nil {
		return nil, err
	}
	log.Printf("[pointsettings] tier %s now pays %d points per milestone", name, points)
	return tier, nil
}

func (s *service) BulkUpdateTiers(ctx context.Context, reqs []UpdateTierRequest) ([]*Tier, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: at least one update is required", ErrInvalidTier)
	}

	updates := make([]PointsUpdate, 0, len(reqs))
	for _, req := range reqs {
		points, err := validateUpdate(req.TierName, req)
		if err != nil {
			return nil, err
		}
		updates = append(updates, PointsUpdate{TierName: req.TierName, Points: points})
	}

	if err := s.repo.BulkUpdatePointsPerMilestone(ctx, updates); err != nil {
		return nil, err
	}
	log.Printf("[pointsettings] bulk updated %d tiers", len(updates))
	return s.GetAllTiers(ctx)
}

func (s *service) InitializeDefaults(ctx context.Context) ([]*Tier, error) {
	seeded, err := s.repo.SeedIfEmpty(ctx, s.seedTiers())
	if err != nil {
		return nil, fmt.Errorf("seed point tiers: %w", err)
	}
	if seeded {
		log.Printf("[pointsettings] default point tiers initialized")
	}
	return s.GetAllTiers(ctx)
}

func (s *service) CalculatePoints(ctx context.Context, likes int) (int, error) {
	tiers, err := s.repo.ListTiers(ctx)
	if err != nil {
		return 0, err
	}
	return CalculatePointsFromLikes(tiers, likes), nil
}

// seedTiers returns fresh copies so repeated seeding never shares state.
func (s *service) seedTiers() []*Tier {
	if len(s.seed) == 0 {
		return DefaultTiers()
	}
	out := make([]*Tier, 0, len(s.seed))
	for _, t := range s.seed {
		c := *t
		out = append(out, &c)
	}
	return out
}

func validateUpdate(name string, req UpdateTierRequest) (int, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: tier_name is required", ErrInvalidTier)
	}
	if req.PointsPerMilestone == nil {
		return 0, fmt.Errorf("%w: points_per_milestone is required", ErrInvalidTier)
	}
	if *req.PointsPerMilestone < 0 {
		return 0, fmt.Errorf("%w: points_per_milestone must not be negative", ErrInvalidTier)
	}
	return *req.PointsPerMilestone, nil
}
