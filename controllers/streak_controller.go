package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// StreakController handles daily check-ins and the streak economy.
type StreakController struct {
	streaks *services.StreakService
	ledger  *services.LedgerService
}

// NewStreakController creates a new controller instance.
func NewStreakController(streaks *services.StreakService, ledger *services.LedgerService) *StreakController {
	return &StreakController{streaks: streaks, ledger: ledger}
}

// CheckIn records today's visit. Duplicate calls on the same day are no-ops.
func (s *StreakController) CheckIn(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := s.streaks.CheckIn(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Status returns the caller's streak, freeze inventory and credit balance.
func (s *StreakController) Status(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	sd, freeze, err := s.streaks.Status(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	balance, err := s.ledger.Balance(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"streak":  sd,
		"freezes": freeze,
		"credits": balance,
	})
}

// PurchaseFreeze buys one streak freeze for the fixed credit cost.
func (s *StreakController) PurchaseFreeze(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	freeze, err := s.streaks.PurchaseFreeze(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"freeze_count": freeze.FreezeCount})
}

// Recover restores an already-broken streak for a gap-scaled price.
func (s *StreakController) Recover(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	result, err := s.streaks.RecoverStreak(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}
