package pointsettings

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Tiers []*Tier `yaml:"tiers"`
}

// LoadSeedFile reads a tier ladder from a YAML document of the form
//
//	tiers:
//	  - tier_name: tier1
//	    min_likes: 0
//	    max_likes: 1000
//	    points_per_milestone: 10
//
// The ladder is validated with ValidateLadder before it is returned.
func LoadSeedFile(path string) ([]*Tier, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tier seed file: %w", err)
	}

	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tier seed file %s: %w", path, err)
	}
	if err := ValidateLadder(doc.Tiers); err != nil {
		return nil, err
	}
	return doc.Tiers, nil
}

// ValidateLadder sorts tiers by MinLikes and checks that the ranges are
// contiguous, non-overlapping and carry unique names.
func ValidateLadder(tiers []*Tier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: ladder has no tiers", ErrInvalidTier)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i].MinLikes < tiers[j].MinLikes })

	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		if t.TierName == "" {
			return fmt.Errorf("%w: tier_name is required", ErrInvalidTier)
		}
		if seen[t.TierName] {
			return fmt.Errorf("%w: duplicate tier_name %q", ErrInvalidTier, t.TierName)
		}
		seen[t.TierName] = true
		if t.MinLikes < 0 || t.MinLikes > t.MaxLikes {
			return fmt.Errorf("%w: %s has bounds [%d, %d]", ErrInvalidTier, t.TierName, t.MinLikes, t.MaxLikes)
		}
		if t.PointsPerMilestone < 0 {
			return fmt.Errorf("%w: %s points_per_milestone must not be negative", ErrInvalidTier, t.TierName)
		}
		if i > 0 && t.MinLikes != tiers[i-1].MaxLikes+1 {
			return fmt.Errorf("%w: %s must start at %d", ErrInvalidTier, t.TierName, tiers[i-1].MaxLikes+1)
		}
	}
	return nil
}
