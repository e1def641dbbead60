package pointsettings

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadSeedFile(t *testing.T) {
	path := writeSeed(t, `
tiers:
  - tier_name: high
    min_likes: 501
    max_likes: 5000
    points_per_milestone: 25
  - tier_name: low
    min_likes: 0
    max_likes: 500
    points_per_milestone: 5
`)

	tiers, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile returned error: %v", err)
	}
	if len(tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(tiers))
	}
	if tiers[0].TierName != "low" || tiers[1].TierName != "high" {
		t.Fatalf("expected tiers sorted by min_likes, got %s, %s", tiers[0].TierName, tiers[1].TierName)
	}
	if tiers[1].PointsPerMilestone != 25 {
		t.Fatalf("unexpected points: %d", tiers[1].PointsPerMilestone)
	}
}

func TestLoadSeedFileRejectsGap(t *testing.T) {
	path := writeSeed(t, `
tiers:
  - tier_name: low
    min_likes: 0
    max_likes: 500
    points_per_milestone: 5
  - tier_name: high
    min_likes: 600
    max_likes: 5000
    points_per_milestone: 25
`)

	_, err := LoadSeedFile(path)
	if !errors.Is(err, ErrInvalidTier) {
		t.Fatalf("expected ErrInvalidTier for gapped ladder, got %v", err)
	}
}

func TestValidateLadder(t *testing.T) {
	cases := map[string][]*Tier{
		"empty":     nil,
		"unnamed":   {{MinLikes: 0, MaxLikes: 10}},
		"inverted":  {{TierName: "a", MinLikes: 10, MaxLikes: 5}},
		"negative":  {{TierName: "a", MinLikes: 0, MaxLikes: 5, PointsPerMilestone: -1}},
		"duplicate": {{TierName: "a", MinLikes: 0, MaxLikes: 5}, {TierName: "a", MinLikes: 6, MaxLikes: 9}},
		"overlap":   {{TierName: "a", MinLikes: 0, MaxLikes: 5}, {TierName: "b", MinLikes: 5, MaxLikes: 9}},
	}
	for name, tiers := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateLadder(tiers); !errors.Is(err, ErrInvalidTier) {
				t.Fatalf("expected ErrInvalidTier, got %v", err)
			}
		})
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
