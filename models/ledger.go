package models

import "time"

// Ledger movement reasons.
const (
	ReasonPollReward     = "poll_reward"
	ReasonStreakBonus    = "streak_bonus"
	ReasonFreezePurchase = "freeze_purchase"
	ReasonStreakRecovery = "streak_recovery"
	ReasonAchievement    = "achievement"
)

// CreditEntry is the audit row written alongside every balance change. Amount
// is signed: positive for credits, negative for debits.
type CreditEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Amount    int64     `gorm:"not null" json:"amount"`
	Reason    string    `gorm:"size:64;index;not null" json:"reason"`
	Reference string    `gorm:"size:64" json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}
