package models

import (
	"time"

	"gorm.io/gorm"
)

// User holds the engine-side view of an account. Accounts are provisioned by
// the surrounding app; IsSubscriber mirrors the external entitlement system
// and is consumed read-only by the reward formula. Credits is the single
// shared balance, mutated only through the ledger service.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Nickname     string    `gorm:"size:64;not null" json:"nickname"`
	IsSubscriber bool      `gorm:"default:false" json:"is_subscriber"`
	Credits      int64     `gorm:"default:0" json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}
