package main

import (
	"time"

	"github.com/pulseinvest/habitloop/config"
	"github.com/pulseinvest/habitloop/models"
	"github.com/pulseinvest/habitloop/routes"
	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	loc, err := time.LoadLocation(cfg.AppTimezone)
	if err != nil {
		utils.Sugar.Fatalf("invalid app timezone %q: %v", cfg.AppTimezone, err)
	}
	clock := services.NewClock(loc)

	db := config.InitDatabase(
		&models.User{},
		&models.Poll{},
		&models.PollOutcome{},
		&models.Vote{},
		&models.PredictionStats{},
		&models.StreakData{},
		&models.StreakFreeze{},
		&models.AchievementUnlock{},
		&models.CreditEntry{},
	)

	ledger := services.NewLedgerService(db)
	polls := services.NewPollService(db, ledger, clock, services.RewardRules{
		SubscriberMultiplier: int64(cfg.SubscriberMultiplier),
		Streak5Bonus:         int64(cfg.Streak5Bonus),
		Streak10Bonus:        int64(cfg.Streak10Bonus),
	})
	streaks := services.NewStreakService(db, ledger, clock, services.StreakRules{
		FreezeCost: int64(cfg.FreezeCostCredits),
	})
	leaderboard := services.NewLeaderboardService(db, services.LeaderboardRules{
		Size:     cfg.LeaderboardSize,
		MinVotes: cfg.LeaderboardMinVotes,
	})
	achievements := services.NewAchievementService(db, ledger, clock)

	resolver := services.NewResolver(db, polls, clock, utils.Sugar, cfg.ResolverCronSpec)
	if err := resolver.Start(); err != nil {
		utils.Sugar.Fatalf("failed to start resolution sweep: %v", err)
	}
	defer resolver.Stop()

	r := routes.SetupRouter(routes.Deps{
		Polls:        polls,
		Streaks:      streaks,
		Ledger:       ledger,
		Leaderboard:  leaderboard,
		Achievements: achievements,
		Resolver:     resolver,
	})

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
