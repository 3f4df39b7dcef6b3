package models

import "time"

// Poll status values. A poll moves OPEN -> RESOLVED exactly once and never back.
const (
	PollStatusOpen     = "OPEN"
	PollStatusResolved = "RESOLVED"
)

// Poll answer / vote choice values.
const (
	AnswerYes = "YES"
	AnswerNo  = "NO"
)

// Poll categories.
const (
	CategoryStocks = "stocks"
	CategoryCrypto = "crypto"
	CategoryMacro  = "macro"
	CategoryEvent  = "event"
)

// Poll is a single yes/no prediction question with a deadline and an eventual
// resolved outcome. Created by the content pipeline, resolved once, never deleted.
type Poll struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Question      string     `gorm:"size:512;not null" json:"question"`
	Category      string     `gorm:"size:16;index;not null" json:"category"`
	YesLabel      string     `gorm:"size:64" json:"yes_label"`
	NoLabel       string     `gorm:"size:64" json:"no_label"`
	Deadline      time.Time  `gorm:"index;not null" json:"deadline"`
	Status        string     `gorm:"size:16;index;default:OPEN" json:"status"`
	CorrectAnswer *string    `gorm:"size:8" json:"correct_answer"`
	ResolvedAt    *time.Time `json:"resolved_at"`
	BaseReward    int64      `gorm:"not null" json:"base_reward_credits"`
	Source        string     `gorm:"size:255" json:"source"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"-"`
}

// PollOutcome is a staged ground-truth answer written by the content pipeline.
// The resolution sweep joins it against due OPEN polls; upserts are idempotent.
type PollOutcome struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PollID    uint      `gorm:"uniqueIndex;not null" json:"poll_id"`
	Answer    string    `gorm:"size:8;not null" json:"answer"`
	Source    string    `gorm:"size:255" json:"source"`
	CreatedAt time.Time `json:"created_at"`
}
