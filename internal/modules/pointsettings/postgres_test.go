package pointsettings

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

var tierRowColumns = []string{"id", "tier_name", "min_likes", "max_likes", "points_per_milestone", "is_active", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestListTiersOrdersByMinLikes(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	rows := sqlmock.NewRows(tierRowColumns).
		AddRow(uuid.NewString(), "tier1", 0, 1000, 10, true, now, now).
		AddRow(uuid.NewString(), "tier2", 1001, 10000, 20, true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM point_settings ORDER BY min_likes ASC`)).WillReturnRows(rows)

	tiers, err := repo.ListTiers(context.Background())
	if err != nil {
		t.Fatalf("ListTiers returned error: %v", err)
	}
	if len(tiers) != 2 {
		t.Fatalf("expected 2 tiers, got %d", len(tiers))
	}
	if tiers[1].TierName != "tier2" || tiers[1].PointsPerMilestone != 20 {
		t.Fatalf("unexpected second tier: %+v", tiers[1])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetTierByNameNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM point_settings WHERE tier_name = $1`)).
		WithArgs("tier9").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetTierByName(context.Background(), "tier9")
	if !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound, got %v", err)
	}
}

func TestUpdatePointsPerMilestone(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE point_settings`)).
		WithArgs(25, "tier2").
		WillReturnRows(sqlmock.NewRows(tierRowColumns).
			AddRow(uuid.NewString(), "tier2", 1001, 10000, 25, true, now, now))

	tier, err := repo.UpdatePointsPerMilestone(context.Background(), "tier2", 25)
	if err != nil {
		t.Fatalf("UpdatePointsPerMilestone returned error: %v", err)
	}
	if tier.PointsPerMilestone != 25 {
		t.Fatalf("expected 25 points, got %d", tier.PointsPerMilestone)
	}
}

func TestBulkUpdateRollsBackOnUnknownTier(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE point_settings SET points_per_milestone = $1`)).
		WithArgs(15, "tier1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE point_settings SET points_per_milestone = $1`)).
		WithArgs(99, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.BulkUpdatePointsPerMilestone(context.Background(), []PointsUpdate{
		{TierName: "tier1", Points: 15},
		{TierName: "missing", Points: 99},
	})
	if !errors.Is(err, ErrTierNotFound) {
		t.Fatalf("expected ErrTierNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeedIfEmptyInsertsWhenEmpty(t *testing.T) {
	repo, mock := newMockRepo(t)
	tiers := DefaultTiers()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM point_settings`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	for _, tier := range tiers {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO point_settings`)).
			WithArgs(sqlmock.AnyArg(), tier.TierName, tier.MinLikes, tier.MaxLikes, tier.PointsPerMilestone).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	seeded, err := repo.SeedIfEmpty(context.Background(), tiers)
	if err != nil {
		t.Fatalf("SeedIfEmpty returned error: %v", err)
	}
	if !seeded {
		t.Fatal("expected seeding to happen on an empty table")
	}
	for _, tier := range tiers {
		if tier.ID == uuid.Nil {
			t.Fatalf("tier %s was not assigned an id", tier.TierName)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSeedIfEmptySkipsPopulatedTable(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM point_settings`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectRollback()

	seeded, err := repo.SeedIfEmpty(context.Background(), DefaultTiers())
	if err != nil {
		t.Fatalf("SeedIfEmpty returned error: %v", err)
	}
	if seeded {
		t.Fatal("expected populated table to be left alone")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
