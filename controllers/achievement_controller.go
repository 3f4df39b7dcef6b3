package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// AchievementController exposes the catalog and the evaluation entry point.
type AchievementController struct {
	achievements *services.AchievementService
}

// NewAchievementController creates a new controller instance.
func NewAchievementController(achievements *services.AchievementService) *AchievementController {
	return &AchievementController{achievements: achievements}
}

// List returns the static catalog with the caller's unlock dates merged in.
func (a *AchievementController) List(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	unlocks, err := a.achievements.Unlocks(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	type entry struct {
		services.AchievementRule
		UnlockedDate string `json:"unlocked_date,omitempty"`
	}
	catalog := make([]entry, 0, len(services.Catalog))
	for _, rule := range services.Catalog {
		catalog = append(catalog, entry{AchievementRule: rule, UnlockedDate: unlocks[rule.ID]})
	}
	utils.Success(ctx, gin.H{"achievements": catalog})
}

// Check evaluates the catalog against a fresh fact snapshot. Called by the
// client on screen focus; redundant calls are cheap and safe.
func (a *AchievementController) Check(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	var ext services.ExternalFacts
	if err := ctx.ShouldBindJSON(&ext); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request body")
		return
	}

	facts, err := a.achievements.BuildFacts(userID, ext)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	newly, err := a.achievements.CheckAchievements(userID, facts)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"newly_unlocked": newly})
}
