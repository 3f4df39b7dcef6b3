package services

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"github.com/pulseinvest/habitloop/models"
)

// openTestDB returns an isolated in-memory database with the full schema.
// Single connection: the in-memory store vanishes with its connection.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         glogger.Default.LogMode(glogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Poll{},
		&models.PollOutcome{},
		&models.Vote{},
		&models.PredictionStats{},
		&models.StreakData{},
		&models.StreakFreeze{},
		&models.AchievementUnlock{},
		&models.CreditEntry{},
	))
	return db
}

// fakeClock is a hand-cranked Clock for deterministic calendar math.
type fakeClock struct {
	now time.Time
	loc *time.Location
}

func newFakeClock() *fakeClock {
	loc := time.UTC
	return &fakeClock{
		now: time.Date(2026, 3, 10, 9, 0, 0, 0, loc),
		loc: loc,
	}
}

func (c *fakeClock) Now() time.Time           { return c.now }
func (c *fakeClock) Today() string            { return c.now.Format(DateLayout) }
func (c *fakeClock) Location() *time.Location { return c.loc }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }
func (c *fakeClock) advanceDays(n int)       { c.now = c.now.AddDate(0, 0, n) }

func seedUser(t *testing.T, db *gorm.DB, nickname string, subscriber bool, credits int64) *models.User {
	t.Helper()
	u := &models.User{Nickname: nickname, IsSubscriber: subscriber, Credits: credits}
	require.NoError(t, db.Create(u).Error)
	return u
}

func balanceOf(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, userID).Error)
	return u.Credits
}

func ledgerEntries(t *testing.T, db *gorm.DB, userID uint) []models.CreditEntry {
	t.Helper()
	var entries []models.CreditEntry
	require.NoError(t, db.Where("user_id = ?", userID).Order("id ASC").Find(&entries).Error)
	return entries
}
