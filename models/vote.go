package models

import "time"

// Vote is one user's choice on one poll. The composite unique index is the
// correctness backstop against double-submits: the database, not the
// application, decides who voted first. CreditsEarned stays NULL until the
// vote has been scored by resolution, which makes it the completion marker
// for safe re-runs.
type Vote struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	PollID        uint      `gorm:"uniqueIndex:idx_votes_poll_user;not null" json:"poll_id"`
	UserID        uint      `gorm:"uniqueIndex:idx_votes_poll_user;index;not null" json:"user_id"`
	Choice        string    `gorm:"size:8;not null" json:"choice"`
	CastAt        time.Time `gorm:"not null" json:"cast_at"`
	IsCorrect     *bool     `json:"is_correct"`
	CreditsEarned *int64    `json:"credits_earned"`
	CreatedAt     time.Time `json:"-"`
}
