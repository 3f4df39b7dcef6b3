package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/config"
	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// LeaderboardController serves the accuracy ranking. Responses are cached in
// redis per caller since the standing block is personalized.
type LeaderboardController struct {
	leaderboard *services.LeaderboardService
}

// NewLeaderboardController creates a new controller instance.
func NewLeaderboardController(leaderboard *services.LeaderboardService) *LeaderboardController {
	return &LeaderboardController{leaderboard: leaderboard}
}

// Get returns the top list plus the caller's standing. The window query only
// scopes the cache key: the ranking itself is computed from the lifetime stats
// rollup, which carries no per-day partitions.
func (l *LeaderboardController) Get(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	window := ctx.DefaultQuery("window", "all")
	cacheKey := fmt.Sprintf("leaderboard:v1:%s:%d", window, userID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		var cached services.Leaderboard
		if err := json.Unmarshal(b, &cached); err == nil {
			utils.Success(ctx, cached)
			return
		}
	}

	board, err := l.leaderboard.GetLeaderboard(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}

	ttl := time.Duration(config.Get().LeaderboardCacheSec) * time.Second
	utils.CacheSetJSON(cacheKey, board, ttl)
	utils.Success(ctx, board)
}
