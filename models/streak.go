package models

import "time"

// StreakData tracks the per-user visit streak. Dates are stored as YYYY-MM-DD
// strings in the application timezone so day comparisons never depend on the
// column's timezone handling.
//
// PreviousStreak / BrokenDate / BreakGapDays are written only when a check-in
// hard-resets the streak; they let a paid recovery on the same day restore the
// pre-break value at the price the gap would have cost.
type StreakData struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	UserID         uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	CurrentStreak  int       `gorm:"default:0" json:"current_streak"`
	LastVisitDate  string    `gorm:"size:10" json:"last_visit_date"`
	LongestStreak  int       `gorm:"default:0" json:"longest_streak"`
	PreviousStreak int       `gorm:"default:0" json:"-"`
	BrokenDate     string    `gorm:"size:10" json:"-"`
	BreakGapDays   int       `gorm:"default:0" json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

// StreakFreeze is the per-user insurance inventory. One freeze silently
// forgives exactly one missed calendar day.
type StreakFreeze struct {
	ID           uint      `gorm:"primaryKey" json:"-"`
	UserID       uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	FreezeCount  int       `gorm:"default:0" json:"freeze_count"`
	LastUsedDate string    `gorm:"size:10" json:"last_used_date"`
	UpdatedAt    time.Time `json:"-"`
}
