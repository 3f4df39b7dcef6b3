package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/config"
	"github.com/pulseinvest/habitloop/controllers"
	"github.com/pulseinvest/habitloop/middleware"
	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// Deps carries the wired services the router needs.
type Deps struct {
	Polls        *services.PollService
	Streaks      *services.StreakService
	Ledger       *services.LedgerService
	Leaderboard  *services.LeaderboardService
	Achievements *services.AchievementService
	Resolver     *services.Resolver
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	pollController := controllers.NewPollController(deps.Polls, deps.Resolver)
	streakController := controllers.NewStreakController(deps.Streaks, deps.Ledger)
	leaderboardController := controllers.NewLeaderboardController(deps.Leaderboard)
	achievementController := controllers.NewAchievementController(deps.Achievements)

	api := r.Group("/api/v1")

	protected := api.Group("")
	protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())

	protected.GET("/polls/active", pollController.ListActive)
	protected.GET("/polls/resolved", pollController.ListResolved)
	protected.GET("/polls/yesterday", pollController.Yesterday)
	protected.POST("/polls/:id/vote", pollController.SubmitVote)
	protected.GET("/predictions/stats", pollController.Stats)

	protected.POST("/streak/checkin", streakController.CheckIn)
	protected.GET("/streak/status", streakController.Status)
	protected.POST("/streak/freeze", streakController.PurchaseFreeze)
	protected.POST("/streak/recover", streakController.Recover)

	protected.GET("/leaderboard", leaderboardController.Get)

	protected.GET("/achievements", achievementController.List)
	protected.POST("/achievements/check", achievementController.Check)

	// Content pipeline / resolution scheduler surface
	pipeline := api.Group("/polls")
	pipeline.Use(middleware.AuthRequired(), middleware.AdminRequired())
	pipeline.POST("", pollController.Create)
	pipeline.POST("/:id/resolve", pollController.Resolve)
	pipeline.POST("/:id/outcome", pollController.StageOutcome)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "api route not found")
	})

	return r
}
