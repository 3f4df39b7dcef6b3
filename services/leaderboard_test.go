package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

func seedRankedUser(t *testing.T, db *gorm.DB, nickname string, total, correct int, createdAt time.Time) *models.User {
	t.Helper()
	u := &models.User{Nickname: nickname, CreatedAt: createdAt}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&models.PredictionStats{
		UserID: u.ID, TotalVotes: total, CorrectVotes: correct,
	}).Error)
	return u
}

func TestLeaderboardRankingAndCutoff(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db, LeaderboardRules{Size: 10, MinVotes: 5})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ace := seedRankedUser(t, db, "ace", 10, 9, base)
	bulk := seedRankedUser(t, db, "bulk", 20, 16, base.Add(time.Hour))
	tied := seedRankedUser(t, db, "tied", 10, 8, base.Add(2*time.Hour))
	rookie := seedRankedUser(t, db, "rookie", 4, 4, base.Add(3*time.Hour))

	board, err := svc.GetLeaderboard(rookie.ID)
	require.NoError(t, err)

	// rookie is below the volume floor despite a perfect record
	require.Len(t, board.Entries, 3)
	assert.Equal(t, ace.ID, board.Entries[0].UserID)
	assert.Equal(t, bulk.ID, board.Entries[1].UserID)
	assert.Equal(t, tied.ID, board.Entries[2].UserID)
	assert.InDelta(t, 90.0, board.Entries[0].AccuracyRate, 0.001)
	assert.Equal(t, 2, board.Entries[1].Rank)

	require.NotNil(t, board.Caller)
	assert.False(t, board.Caller.Qualified)
	assert.Equal(t, 1, board.Caller.VotesToQualify)
}

func TestLeaderboardTieBreakByAccountAge(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db, LeaderboardRules{Size: 10, MinVotes: 5})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	younger := seedRankedUser(t, db, "younger", 10, 8, base.Add(time.Hour))
	older := seedRankedUser(t, db, "older", 10, 8, base)

	board, err := svc.GetLeaderboard(older.ID)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	assert.Equal(t, older.ID, board.Entries[0].UserID)
	assert.Equal(t, younger.ID, board.Entries[1].UserID)
	assert.Nil(t, board.Caller)
}

func TestLeaderboardCallerOutsideTopN(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db, LeaderboardRules{Size: 2, MinVotes: 5})

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	seedRankedUser(t, db, "first", 10, 9, base)
	seedRankedUser(t, db, "second", 10, 8, base.Add(time.Hour))
	chaser := seedRankedUser(t, db, "chaser", 10, 6, base.Add(2*time.Hour))

	board, err := svc.GetLeaderboard(chaser.ID)
	require.NoError(t, err)
	require.Len(t, board.Entries, 2)
	require.NotNil(t, board.Caller)
	assert.True(t, board.Caller.Qualified)
	assert.Equal(t, 3, board.Caller.Rank)
	// 6/10 = 60%, cutoff is 80%: eleven straight correct picks give 17/21 = 81%
	assert.Equal(t, 11, board.Caller.PicksToReachTopN)
}

func TestLeaderboardCallerWithNoStats(t *testing.T) {
	db := openTestDB(t)
	svc := NewLeaderboardService(db, LeaderboardRules{Size: 10, MinVotes: 5})
	ghost := seedUser(t, db, "ghost", false, 0)

	board, err := svc.GetLeaderboard(ghost.ID)
	require.NoError(t, err)
	assert.Empty(t, board.Entries)
	require.NotNil(t, board.Caller)
	assert.False(t, board.Caller.Qualified)
	assert.Equal(t, 5, board.Caller.VotesToQualify)
}
