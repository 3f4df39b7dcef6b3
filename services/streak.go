package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

// StreakRules are the tunable streak economy parameters.
type StreakRules struct {
	FreezeCost int64
	// RecoveryCosts[n-1] is the price for an n-day gap; gaps beyond the
	// table are unrecoverable.
	RecoveryCosts []int64
}

// DefaultRecoveryCosts is the 1/2/3-day gap price table.
var DefaultRecoveryCosts = []int64{3, 5, 8}

// StreakService tracks consecutive-visit streaks with freeze insurance and
// paid recovery. Each user's streak row is its own unit of concurrency; every
// mutation locks it inside one transaction so duplicate check-ins from
// multiple devices collapse into a single daily update.
type StreakService struct {
	db     *gorm.DB
	ledger *LedgerService
	clock  Clock
	rules  StreakRules
}

// NewStreakService wires a streak engine.
func NewStreakService(db *gorm.DB, ledger *LedgerService, clock Clock, rules StreakRules) *StreakService {
	if len(rules.RecoveryCosts) == 0 {
		rules.RecoveryCosts = DefaultRecoveryCosts
	}
	return &StreakService{db: db, ledger: ledger, clock: clock, rules: rules}
}

// CheckInResult reports what a check-in did.
type CheckInResult struct {
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastVisitDate  string `json:"last_visit_date"`
	AlreadyVisited bool   `json:"already_visited"`
	FreezeUsed     bool   `json:"freeze_used"`
	StreakReset    bool   `json:"streak_reset"`
}

// CheckIn records today's visit. Idempotent per app-local calendar day: the
// lastVisitDate == today short-circuit means a second call the same day is a
// no-op. A gap of exactly one missed day auto-consumes a freeze and preserves
// the streak; any larger gap (or no freeze) hard-resets to 1, recording the
// pre-break value so a paid recovery later today can still restore it.
func (s *StreakService) CheckIn(userID uint) (*CheckInResult, error) {
	today := s.clock.Today()
	var result CheckInResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sd, err := lockStreak(tx, userID)
		if err != nil {
			return err
		}

		switch {
		case sd.LastVisitDate == "":
			sd.CurrentStreak = 1

		case sd.LastVisitDate == today:
			result = CheckInResult{
				CurrentStreak:  sd.CurrentStreak,
				LongestStreak:  sd.LongestStreak,
				LastVisitDate:  sd.LastVisitDate,
				AlreadyVisited: true,
			}
			return nil

		case DaysBetween(sd.LastVisitDate, today) == 1:
			sd.CurrentStreak++

		default:
			gap := DaysBetween(sd.LastVisitDate, today)
			missed := gap - 1
			if missed == 1 && s.consumeFreeze(tx, userID, today) {
				sd.CurrentStreak++
				result.FreezeUsed = true
			} else {
				sd.PreviousStreak = sd.CurrentStreak
				sd.BrokenDate = today
				sd.BreakGapDays = gap
				sd.CurrentStreak = 1
				result.StreakReset = true
			}
		}

		sd.LastVisitDate = today
		if sd.CurrentStreak > sd.LongestStreak {
			sd.LongestStreak = sd.CurrentStreak
		}
		if err := tx.Save(sd).Error; err != nil {
			return err
		}

		result.CurrentStreak = sd.CurrentStreak
		result.LongestStreak = sd.LongestStreak
		result.LastVisitDate = sd.LastVisitDate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// consumeFreeze spends one freeze if the user has any. The decrement is a
// conditional UPDATE so two concurrent check-ins cannot spend the same freeze.
func (s *StreakService) consumeFreeze(tx *gorm.DB, userID uint, today string) bool {
	res := tx.Model(&models.StreakFreeze{}).
		Where("user_id = ? AND freeze_count > 0", userID).
		Updates(map[string]interface{}{
			"freeze_count":   gorm.Expr("freeze_count - 1"),
			"last_used_date": today,
		})
	return res.Error == nil && res.RowsAffected > 0
}

// PurchaseFreeze debits the fixed freeze cost and grants one freeze. Debit and
// grant share a transaction: no freeze without a successful debit.
func (s *StreakService) PurchaseFreeze(userID uint) (*models.StreakFreeze, error) {
	var freeze models.StreakFreeze
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ledger.Debit(tx, userID, s.rules.FreezeCost, models.ReasonFreezePurchase); err != nil {
			return err
		}

		err := forUpdate(tx).Where("user_id = ?", userID).First(&freeze).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			freeze = models.StreakFreeze{UserID: userID, FreezeCount: 1}
			return tx.Create(&freeze).Error
		}
		if err != nil {
			return err
		}
		freeze.FreezeCount++
		return tx.Save(&freeze).Error
	})
	if err != nil {
		return nil, err
	}
	return &freeze, nil
}

// RecoveryResult reports a successful paid recovery.
type RecoveryResult struct {
	CurrentStreak int   `json:"current_streak"`
	Cost          int64 `json:"cost"`
}

// RecoverStreak restores an already-broken streak for a price that scales
// with the gap: 1/2/3 days since the last visit cost the table prices, four
// or more are unrecoverable. Works both before today's check-in (gap measured
// from last_visit_date) and after a check-in already hard-reset the streak
// today (the recorded break gap keeps the same price for the rest of the day).
func (s *StreakService) RecoverStreak(userID uint) (*RecoveryResult, error) {
	today := s.clock.Today()
	var result RecoveryResult

	err := s.db.Transaction(func(tx *gorm.DB) error {
		sd, err := lockStreak(tx, userID)
		if err != nil {
			return err
		}

		var gap, restore int
		if sd.LastVisitDate == today {
			// Check-in already ran today; only a same-day reset is recoverable.
			if sd.BrokenDate != today || sd.PreviousStreak == 0 {
				return ErrRecoveryUnavailable
			}
			gap = sd.BreakGapDays
			restore = sd.PreviousStreak
		} else {
			if sd.LastVisitDate == "" {
				return ErrRecoveryUnavailable
			}
			gap = DaysBetween(sd.LastVisitDate, today)
			restore = sd.CurrentStreak
		}

		if gap < 1 || gap > len(s.rules.RecoveryCosts) {
			return ErrRecoveryUnavailable
		}
		cost := s.rules.RecoveryCosts[gap-1]

		if err := s.ledger.Debit(tx, userID, cost, models.ReasonStreakRecovery); err != nil {
			return err
		}

		sd.CurrentStreak = restore
		sd.LastVisitDate = today
		sd.PreviousStreak = 0
		sd.BrokenDate = ""
		sd.BreakGapDays = 0
		if sd.CurrentStreak > sd.LongestStreak {
			sd.LongestStreak = sd.CurrentStreak
		}
		if err := tx.Save(sd).Error; err != nil {
			return err
		}

		result = RecoveryResult{CurrentStreak: sd.CurrentStreak, Cost: cost}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Status returns the user's streak row and freeze inventory, zero-valued when absent.
func (s *StreakService) Status(userID uint) (*models.StreakData, *models.StreakFreeze, error) {
	var sd models.StreakData
	err := s.db.Where("user_id = ?", userID).First(&sd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sd = models.StreakData{UserID: userID}
	} else if err != nil {
		return nil, nil, err
	}

	var freeze models.StreakFreeze
	err = s.db.Where("user_id = ?", userID).First(&freeze).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		freeze = models.StreakFreeze{UserID: userID}
	} else if err != nil {
		return nil, nil, err
	}
	return &sd, &freeze, nil
}

// lockStreak fetches the user's streak row FOR UPDATE, creating it on first use.
func lockStreak(tx *gorm.DB, userID uint) (*models.StreakData, error) {
	var sd models.StreakData
	err := forUpdate(tx).Where("user_id = ?", userID).First(&sd).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sd = models.StreakData{UserID: userID}
		if err := tx.Create(&sd).Error; err != nil {
			return nil, err
		}
		return &sd, nil
	}
	if err != nil {
		return nil, err
	}
	return &sd, nil
}
