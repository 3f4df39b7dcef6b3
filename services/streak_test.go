package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulseinvest/habitloop/models"
)

func setupStreakService(t *testing.T) (*StreakService, *fakeClock, *LedgerService) {
	t.Helper()
	db := openTestDB(t)
	clock := newFakeClock()
	ledger := NewLedgerService(db)
	svc := NewStreakService(db, ledger, clock, StreakRules{FreezeCost: 3})
	return svc, clock, ledger
}

func checkIn(t *testing.T, svc *StreakService, userID uint) *CheckInResult {
	t.Helper()
	res, err := svc.CheckIn(userID)
	require.NoError(t, err)
	return res
}

func TestCheckInSameDayIdempotent(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "daily", false, 0)

	first := checkIn(t, svc, u.ID)
	assert.Equal(t, 1, first.CurrentStreak)
	assert.False(t, first.AlreadyVisited)
	assert.Equal(t, clock.Today(), first.LastVisitDate)

	again := checkIn(t, svc, u.ID)
	assert.True(t, again.AlreadyVisited)
	assert.Equal(t, 1, again.CurrentStreak)
}

func TestCheckInConsecutiveDays(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "daily", false, 0)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	res := checkIn(t, svc, u.ID)

	assert.Equal(t, 3, res.CurrentStreak)
	assert.Equal(t, 3, res.LongestStreak)
}

func TestCheckInFreezeCoversOneMissedDay(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "insured", false, 10)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	checkIn(t, svc, u.ID)

	freeze, err := svc.PurchaseFreeze(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, freeze.FreezeCount)
	assert.Equal(t, int64(7), balanceOf(t, svc.db, u.ID))

	// skip one full day
	clock.advanceDays(2)
	res := checkIn(t, svc, u.ID)
	assert.True(t, res.FreezeUsed)
	assert.False(t, res.StreakReset)
	assert.Equal(t, 3, res.CurrentStreak)

	var f models.StreakFreeze
	require.NoError(t, svc.db.Where("user_id = ?", u.ID).First(&f).Error)
	assert.Equal(t, 0, f.FreezeCount)
	assert.Equal(t, clock.Today(), f.LastUsedDate)
}

func TestCheckInHardResetKeepsFreezeForBiggerGap(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "lapsed", false, 10)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	checkIn(t, svc, u.ID)
	_, err := svc.PurchaseFreeze(u.ID)
	require.NoError(t, err)

	// two missed days: a freeze only forgives one
	clock.advanceDays(3)
	res := checkIn(t, svc, u.ID)
	assert.True(t, res.StreakReset)
	assert.False(t, res.FreezeUsed)
	assert.Equal(t, 1, res.CurrentStreak)
	assert.Equal(t, 2, res.LongestStreak)

	var f models.StreakFreeze
	require.NoError(t, svc.db.Where("user_id = ?", u.ID).First(&f).Error)
	assert.Equal(t, 1, f.FreezeCount)

	var sd models.StreakData
	require.NoError(t, svc.db.Where("user_id = ?", u.ID).First(&sd).Error)
	assert.Equal(t, 2, sd.PreviousStreak)
	assert.Equal(t, clock.Today(), sd.BrokenDate)
	assert.Equal(t, 3, sd.BreakGapDays)
}

func TestPurchaseFreezeInsufficientCredits(t *testing.T) {
	svc, _, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "broke", false, 2)

	_, err := svc.PurchaseFreeze(u.ID)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
	assert.Equal(t, int64(2), balanceOf(t, svc.db, u.ID))
}

func TestRecoverBeforeTodaysCheckIn(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "payer", false, 20)

	for i := 0; i < 5; i++ {
		checkIn(t, svc, u.ID)
		clock.advanceDays(1)
	}
	// last visit is now 1 day back (cheapest tier)
	res, err := svc.RecoverStreak(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, res.CurrentStreak)
	assert.Equal(t, int64(3), res.Cost)
	assert.Equal(t, int64(17), balanceOf(t, svc.db, u.ID))

	// recovery counts as today's visit
	again := checkIn(t, svc, u.ID)
	assert.True(t, again.AlreadyVisited)
	assert.Equal(t, 5, again.CurrentStreak)
}

func TestRecoverCostScalesWithGap(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "payer", false, 20)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	checkIn(t, svc, u.ID)

	clock.advanceDays(3)
	res, err := svc.RecoverStreak(u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), res.Cost)
	assert.Equal(t, 2, res.CurrentStreak)
}

func TestRecoverAfterSameDayReset(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "payer", false, 20)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	checkIn(t, svc, u.ID)

	clock.advanceDays(2)
	reset := checkIn(t, svc, u.ID)
	require.True(t, reset.StreakReset)
	assert.Equal(t, 1, reset.CurrentStreak)

	res, err := svc.RecoverStreak(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, res.CurrentStreak)
	assert.Equal(t, int64(5), res.Cost)

	// the break is consumed; a second recovery has nothing to restore
	_, err = svc.RecoverStreak(u.ID)
	assert.ErrorIs(t, err, ErrRecoveryUnavailable)
}

func TestRecoverUnavailable(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "gone", false, 20)

	// never visited
	_, err := svc.RecoverStreak(u.ID)
	assert.ErrorIs(t, err, ErrRecoveryUnavailable)

	checkIn(t, svc, u.ID)
	clock.advanceDays(4)
	_, err = svc.RecoverStreak(u.ID)
	assert.ErrorIs(t, err, ErrRecoveryUnavailable)
	assert.Equal(t, int64(20), balanceOf(t, svc.db, u.ID))
}

func TestRecoverRequiresCredits(t *testing.T) {
	svc, clock, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "broke", false, 2)

	checkIn(t, svc, u.ID)
	clock.advanceDays(1)
	_, err := svc.RecoverStreak(u.ID)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
}

func TestStatusZeroValuedWhenAbsent(t *testing.T) {
	svc, _, _ := setupStreakService(t)
	u := seedUser(t, svc.db, "new", false, 0)

	sd, freeze, err := svc.Status(u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, sd.CurrentStreak)
	assert.Empty(t, sd.LastVisitDate)
	assert.Equal(t, 0, freeze.FreezeCount)
}
