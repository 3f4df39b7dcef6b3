package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseinvest/habitloop/models"
)

func setupAchievementService(t *testing.T) (*AchievementService, *fakeClock) {
	t.Helper()
	db := openTestDB(t)
	clock := newFakeClock()
	svc := NewAchievementService(db, NewLedgerService(db), clock)
	return svc, clock
}

func TestBuildFactsMergesSources(t *testing.T) {
	svc, _ := setupAchievementService(t)
	u := seedUser(t, svc.db, "facts", false, 0)
	require.NoError(t, svc.db.Create(&models.PredictionStats{
		UserID: u.ID, TotalVotes: 10, CorrectVotes: 8, CurrentStreak: 3,
	}).Error)
	require.NoError(t, svc.db.Create(&models.StreakData{
		UserID: u.ID, CurrentStreak: 7, LastVisitDate: "2026-03-10",
	}).Error)

	facts, err := svc.BuildFacts(u.ID, ExternalFacts{HasDiagnosis: true, TotalAssets: 500})
	require.NoError(t, err)
	assert.Equal(t, 10, facts.TotalVotes)
	assert.Equal(t, 8, facts.CorrectVotes)
	assert.Equal(t, 3, facts.PredictionStreak)
	assert.InDelta(t, 80.0, facts.AccuracyPercent, 0.001)
	assert.Equal(t, 7, facts.VisitStreak)
	assert.True(t, facts.HasDiagnosis)
	assert.Equal(t, int64(500), facts.TotalAssets)
	assert.False(t, facts.HasShared)
}

func TestBuildFactsZeroWhenNoRows(t *testing.T) {
	svc, _ := setupAchievementService(t)
	u := seedUser(t, svc.db, "blank", false, 0)

	facts, err := svc.BuildFacts(u.ID, ExternalFacts{})
	require.NoError(t, err)
	assert.Zero(t, facts.TotalVotes)
	assert.Zero(t, facts.VisitStreak)
	assert.Zero(t, facts.AccuracyPercent)
}

func TestCheckAchievementsUnlocksAndPays(t *testing.T) {
	svc, clock := setupAchievementService(t)
	u := seedUser(t, svc.db, "earner", false, 0)

	newly, err := svc.CheckAchievements(u.ID, Facts{
		TotalVotes: 1, CorrectVotes: 1, AccuracyPercent: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"first_prediction", "accuracy_80"}, newly)

	// rewards: 2 for the first call, 10 for the accuracy badge
	assert.Equal(t, int64(12), balanceOf(t, svc.db, u.ID))

	unlocks, err := svc.Unlocks(u.ID)
	require.NoError(t, err)
	assert.Equal(t, clock.Today(), unlocks["first_prediction"])
	assert.Equal(t, clock.Today(), unlocks["accuracy_80"])
}

func TestCheckAchievementsNeverRepays(t *testing.T) {
	svc, _ := setupAchievementService(t)
	u := seedUser(t, svc.db, "earner", false, 0)
	facts := Facts{TotalVotes: 1}

	newly, err := svc.CheckAchievements(u.ID, facts)
	require.NoError(t, err)
	require.Equal(t, []string{"first_prediction"}, newly)

	newly, err = svc.CheckAchievements(u.ID, facts)
	require.NoError(t, err)
	assert.Empty(t, newly)
	assert.Equal(t, int64(2), balanceOf(t, svc.db, u.ID))
	assert.Len(t, ledgerEntries(t, svc.db, u.ID), 1)
}

func TestAchievementThresholdsInclusive(t *testing.T) {
	svc, _ := setupAchievementService(t)
	u := seedUser(t, svc.db, "edge", false, 0)

	newly, err := svc.CheckAchievements(u.ID, Facts{
		TotalVotes: 5, CorrectVotes: 3, AccuracyPercent: 60,
		TotalAssets: 99_999_999, VisitStreak: 6,
	})
	require.NoError(t, err)
	assert.NotContains(t, newly, "accuracy_80")
	assert.NotContains(t, newly, "assets_100m")
	assert.NotContains(t, newly, "visit_streak_7")

	newly, err = svc.CheckAchievements(u.ID, Facts{
		TotalVotes: 5, CorrectVotes: 4, AccuracyPercent: 80,
		TotalAssets: 100_000_000, VisitStreak: 7,
	})
	require.NoError(t, err)
	assert.Contains(t, newly, "accuracy_80")
	assert.Contains(t, newly, "assets_100m")
	assert.Contains(t, newly, "visit_streak_7")
}

func TestAccuracyBadgeNeedsResolvedVotes(t *testing.T) {
	svc, _ := setupAchievementService(t)
	u := seedUser(t, svc.db, "fresh", false, 0)

	// a perfect rate over zero votes is not accuracy
	newly, err := svc.CheckAchievements(u.ID, Facts{AccuracyPercent: 100})
	require.NoError(t, err)
	assert.Empty(t, newly)
}
