package models

import "time"

// AchievementUnlock is a write-once per (user, achievement) row. The composite
// unique index makes the unlock an insert-if-absent: two sessions evaluating
// the same facts can race, only one insert wins and only one reward is paid.
type AchievementUnlock struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	UserID        uint      `gorm:"uniqueIndex:idx_unlocks_user_achievement;not null" json:"user_id"`
	AchievementID string    `gorm:"uniqueIndex:idx_unlocks_user_achievement;size:64;not null" json:"achievement_id"`
	UnlockedDate  string    `gorm:"size:10;not null" json:"unlocked_date"`
	CreatedAt     time.Time `json:"-"`
}
