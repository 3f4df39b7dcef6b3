package services

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

// LedgerService is the single choke point for the shared credit currency.
// Every movement is an atomic conditional update on the user row plus an
// audit entry; debits never let the balance go negative even when two
// sessions race on the same account.
type LedgerService struct {
	db *gorm.DB
}

// NewLedgerService creates a ledger bound to the given database handle.
func NewLedgerService(db *gorm.DB) *LedgerService {
	return &LedgerService{db: db}
}

// Credit adds amount to the user's balance and records an audit entry.
// Pass tx to make the credit part of an enclosing transaction, nil otherwise.
func (s *LedgerService) Credit(tx *gorm.DB, userID uint, amount int64, reason string) error {
	if tx == nil {
		tx = s.db
	}
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ?", userID).
		Update("credits", gorm.Expr("credits + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}

	entry := models.CreditEntry{
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		Reference: uuid.NewString(),
	}
	return tx.Create(&entry).Error
}

// Debit subtracts amount from the user's balance. The balance check and the
// subtraction are one conditional UPDATE, so concurrent debits cannot take
// the same credits twice.
func (s *LedgerService) Debit(tx *gorm.DB, userID uint, amount int64, reason string) error {
	if tx == nil {
		tx = s.db
	}
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	res := tx.Model(&models.User{}).
		Where("id = ? AND credits >= ?", userID, amount).
		Update("credits", gorm.Expr("credits - ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrInsufficientCredits
	}

	entry := models.CreditEntry{
		UserID:    userID,
		Amount:    -amount,
		Reason:    reason,
		Reference: uuid.NewString(),
	}
	return tx.Create(&entry).Error
}

// Balance returns the user's current credit balance.
func (s *LedgerService) Balance(userID uint) (int64, error) {
	var user models.User
	if err := s.db.Select("credits").First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.Credits, nil
}
