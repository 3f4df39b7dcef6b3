package models

import "time"

// PredictionStats is the per-user rollup over resolved votes. TotalVotes is
// incremented at vote time; everything else only by the resolution step.
// CurrentStreak counts consecutive correctly-answered resolved polls, not
// calendar days.
type PredictionStats struct {
	ID                 uint      `gorm:"primaryKey" json:"-"`
	UserID             uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	TotalVotes         int       `gorm:"default:0" json:"total_votes"`
	CorrectVotes       int       `gorm:"default:0" json:"correct_votes"`
	CurrentStreak      int       `gorm:"default:0" json:"current_streak"`
	BestStreak         int       `gorm:"default:0" json:"best_streak"`
	TotalCreditsEarned int64     `gorm:"default:0" json:"total_credits_earned"`
	UpdatedAt          time.Time `json:"-"`
}

// Accuracy returns the correct-vote percentage, 0 when no votes are resolved.
func (s PredictionStats) Accuracy() float64 {
	if s.TotalVotes == 0 {
		return 0
	}
	return float64(s.CorrectVotes) / float64(s.TotalVotes) * 100
}
