package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
	"github.com/pulseinvest/habitloop/utils"
)

// Facts is the typed snapshot an achievement rule may consume. Visit and
// prediction facts are filled from the engine's own stores; the rest are
// external signals supplied by the caller.
type Facts struct {
	VisitStreak      int
	PredictionStreak int
	TotalVotes       int
	CorrectVotes     int
	AccuracyPercent  float64
	HasDiagnosis     bool
	TotalAssets      int64
	HasShared        bool
	HasPosted        bool
}

// ExternalFacts are the signals the engine cannot derive itself.
type ExternalFacts struct {
	HasDiagnosis bool  `json:"has_diagnosis"`
	TotalAssets  int64 `json:"total_assets"`
	HasShared    bool  `json:"has_shared"`
	HasPosted    bool  `json:"has_posted"`
}

// AchievementRule is one catalog entry: a pure predicate over Facts plus the
// credit reward paid on unlock. All thresholds are inclusive.
type AchievementRule struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Category string           `json:"category"`
	Reward   int64            `json:"reward_credits"`
	Check    func(Facts) bool `json:"-"`
}

// Catalog is the static achievement table. Rules are evaluated in order; the
// order only affects the sequence of newly-unlocked ids in the response.
var Catalog = []AchievementRule{
	{ID: "first_prediction", Title: "First Call", Category: "prediction", Reward: 2,
		Check: func(f Facts) bool { return f.TotalVotes >= 1 }},
	{ID: "predictions_10", Title: "Regular Forecaster", Category: "prediction", Reward: 5,
		Check: func(f Facts) bool { return f.TotalVotes >= 10 }},
	{ID: "accuracy_80", Title: "Sharp Eye", Category: "prediction", Reward: 10,
		Check: func(f Facts) bool { return f.TotalVotes > 0 && f.AccuracyPercent >= 80 }},
	{ID: "prediction_streak_5", Title: "Hot Hand", Category: "prediction", Reward: 5,
		Check: func(f Facts) bool { return f.PredictionStreak >= 5 }},
	{ID: "visit_streak_7", Title: "One Week Strong", Category: "visit", Reward: 5,
		Check: func(f Facts) bool { return f.VisitStreak >= 7 }},
	{ID: "visit_streak_30", Title: "Monthly Devotee", Category: "visit", Reward: 20,
		Check: func(f Facts) bool { return f.VisitStreak >= 30 }},
	{ID: "first_diagnosis", Title: "Know Thyself", Category: "portfolio", Reward: 3,
		Check: func(f Facts) bool { return f.HasDiagnosis }},
	{ID: "assets_100m", Title: "Nine Digits", Category: "portfolio", Reward: 30,
		Check: func(f Facts) bool { return f.TotalAssets >= 100_000_000 }},
	{ID: "first_share", Title: "Spread the Word", Category: "social", Reward: 3,
		Check: func(f Facts) bool { return f.HasShared }},
	{ID: "first_post", Title: "Voice Heard", Category: "social", Reward: 3,
		Check: func(f Facts) bool { return f.HasPosted }},
}

// AchievementService evaluates the catalog against a fact snapshot and issues
// write-once unlocks. Safe to call redundantly: unlocked ids are skipped, and
// the unique index makes concurrent evaluations pay each reward at most once.
type AchievementService struct {
	db     *gorm.DB
	ledger *LedgerService
	clock  Clock
}

// NewAchievementService wires an evaluator.
func NewAchievementService(db *gorm.DB, ledger *LedgerService, clock Clock) *AchievementService {
	return &AchievementService{db: db, ledger: ledger, clock: clock}
}

// BuildFacts assembles the evaluator snapshot from the engine's stores plus
// the caller-supplied external signals.
func (s *AchievementService) BuildFacts(userID uint, ext ExternalFacts) (Facts, error) {
	facts := Facts{
		HasDiagnosis: ext.HasDiagnosis,
		TotalAssets:  ext.TotalAssets,
		HasShared:    ext.HasShared,
		HasPosted:    ext.HasPosted,
	}

	var stats models.PredictionStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return facts, err
	}
	facts.TotalVotes = stats.TotalVotes
	facts.CorrectVotes = stats.CorrectVotes
	facts.PredictionStreak = stats.CurrentStreak
	facts.AccuracyPercent = stats.Accuracy()

	var sd models.StreakData
	err = s.db.Where("user_id = ?", userID).First(&sd).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return facts, err
	}
	facts.VisitStreak = sd.CurrentStreak

	return facts, nil
}

// CheckAchievements evaluates every not-yet-unlocked rule against facts and
// returns the ids unlocked by this call. Each unlock is its own transaction
// (insert-if-absent + reward credit); a failed rule defers to the next
// evaluation instead of failing the whole call.
func (s *AchievementService) CheckAchievements(userID uint, facts Facts) ([]string, error) {
	var existing []models.AchievementUnlock
	if err := s.db.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		return nil, err
	}
	unlocked := make(map[string]bool, len(existing))
	for _, u := range existing {
		unlocked[u.AchievementID] = true
	}

	newly := []string{}
	for _, rule := range Catalog {
		if unlocked[rule.ID] || !rule.Check(facts) {
			continue
		}
		if err := s.unlock(userID, rule); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// another session unlocked it first; nothing to pay
				continue
			}
			if utils.Sugar != nil {
				utils.Sugar.Warnf("achievement unlock deferred user=%d id=%s err=%v", userID, rule.ID, err)
			}
			continue
		}
		newly = append(newly, rule.ID)
	}
	return newly, nil
}

func (s *AchievementService) unlock(userID uint, rule AchievementRule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		row := models.AchievementUnlock{
			UserID:        userID,
			AchievementID: rule.ID,
			UnlockedDate:  s.clock.Today(),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		return s.ledger.Credit(tx, userID, rule.Reward, models.ReasonAchievement)
	})
}

// Unlocks returns the user's sparse unlock map id -> date.
func (s *AchievementService) Unlocks(userID uint) (map[string]string, error) {
	var rows []models.AchievementUnlock
	if err := s.db.Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.AchievementID] = r.UnlockedDate
	}
	return out, nil
}
