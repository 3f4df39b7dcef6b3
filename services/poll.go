package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

// RewardRules are the tunable parts of the reward formula.
type RewardRules struct {
	SubscriberMultiplier int64
	Streak5Bonus         int64
	Streak10Bonus        int64
}

// PollService owns the poll lifecycle: intake of votes while a poll is open
// and the one-shot resolution fan-out that scores votes, updates prediction
// stats and pays rewards.
type PollService struct {
	db     *gorm.DB
	ledger *LedgerService
	clock  Clock
	rules  RewardRules
}

// NewPollService wires a poll engine.
func NewPollService(db *gorm.DB, ledger *LedgerService, clock Clock, rules RewardRules) *PollService {
	return &PollService{db: db, ledger: ledger, clock: clock, rules: rules}
}

// CreatePollInput is what the content pipeline supplies for a new poll.
type CreatePollInput struct {
	Question   string    `json:"question" binding:"required"`
	Category   string    `json:"category" binding:"required"`
	YesLabel   string    `json:"yes_label"`
	NoLabel    string    `json:"no_label"`
	Deadline   time.Time `json:"deadline" binding:"required"`
	BaseReward int64     `json:"base_reward_credits" binding:"required"`
	Source     string    `json:"source"`
}

func validCategory(c string) bool {
	switch c {
	case models.CategoryStocks, models.CategoryCrypto, models.CategoryMacro, models.CategoryEvent:
		return true
	}
	return false
}

func validAnswer(a string) bool {
	return a == models.AnswerYes || a == models.AnswerNo
}

// CreatePoll inserts a new OPEN poll. The deadline is immutable afterwards.
func (s *PollService) CreatePoll(in CreatePollInput) (*models.Poll, error) {
	if !validCategory(in.Category) {
		return nil, errors.New("unknown poll category")
	}
	if in.BaseReward <= 0 {
		return nil, errors.New("base reward must be positive")
	}
	if !in.Deadline.After(s.clock.Now()) {
		return nil, errors.New("deadline must be in the future")
	}

	poll := models.Poll{
		Question:   in.Question,
		Category:   in.Category,
		YesLabel:   in.YesLabel,
		NoLabel:    in.NoLabel,
		Deadline:   in.Deadline,
		Status:     models.PollStatusOpen,
		BaseReward: in.BaseReward,
		Source:     in.Source,
	}
	if err := s.db.Create(&poll).Error; err != nil {
		return nil, err
	}
	return &poll, nil
}

// SubmitVote records a user's choice on an open poll. The unique index on
// (poll_id, user_id) closes the double-vote race: under concurrent identical
// submissions exactly one insert succeeds and the rest get ErrAlreadyVoted.
// TotalVotes is bumped here; the remaining stats move only at resolution.
func (s *PollService) SubmitVote(userID, pollID uint, choice string) (*models.Vote, error) {
	if !validAnswer(choice) {
		return nil, ErrInvalidChoice
	}

	var poll models.Poll
	if err := s.db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if poll.Status != models.PollStatusOpen || !s.clock.Now().Before(poll.Deadline) {
		return nil, ErrPollClosed
	}

	vote := models.Vote{
		PollID: pollID,
		UserID: userID,
		Choice: choice,
		CastAt: s.clock.Now(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&vote).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyVoted
			}
			return err
		}
		stats, err := lockStats(tx, userID)
		if err != nil {
			return err
		}
		stats.TotalVotes++
		return tx.Save(stats).Error
	})
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

// ResolvePoll transitions a poll OPEN -> RESOLVED and scores every vote in a
// single per-poll transaction. Idempotent: a poll already resolved is a no-op,
// and already-scored votes (credits_earned set) are skipped, so at-least-once
// scheduling can never double-pay a voter.
func (s *PollService) ResolvePoll(pollID uint, correctAnswer, source string) error {
	if !validAnswer(correctAnswer) {
		return ErrInvalidChoice
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := forUpdate(tx).First(&poll, pollID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if poll.Status == models.PollStatusResolved {
			return nil
		}

		now := s.clock.Now()
		poll.Status = models.PollStatusResolved
		poll.CorrectAnswer = &correctAnswer
		poll.ResolvedAt = &now
		if source != "" {
			poll.Source = source
		}
		if err := tx.Save(&poll).Error; err != nil {
			return err
		}

		var votes []models.Vote
		if err := tx.Where("poll_id = ? AND credits_earned IS NULL", pollID).Find(&votes).Error; err != nil {
			return err
		}

		for i := range votes {
			if err := s.scoreVote(tx, &poll, &votes[i], correctAnswer); err != nil {
				return err
			}
		}
		return nil
	})
}

// scoreVote writes the outcome of one vote and rolls it into the voter's
// prediction stats. Correct votes earn base x multiplier; crossing streak 5
// or 10 pays a separate one-time bonus credit.
func (s *PollService) scoreVote(tx *gorm.DB, poll *models.Poll, vote *models.Vote, answer string) error {
	correct := vote.Choice == answer

	stats, err := lockStats(tx, vote.UserID)
	if err != nil {
		return err
	}

	var earned int64
	var bonus int64
	if correct {
		var user models.User
		if err := tx.First(&user, vote.UserID).Error; err != nil {
			return err
		}

		earned = poll.BaseReward
		if user.IsSubscriber {
			earned *= s.rules.SubscriberMultiplier
		}

		streakAfter := stats.CurrentStreak + 1
		switch streakAfter {
		case 5:
			bonus = s.rules.Streak5Bonus
		case 10:
			bonus = s.rules.Streak10Bonus
		}

		stats.CorrectVotes++
		stats.CurrentStreak = streakAfter
		if stats.CurrentStreak > stats.BestStreak {
			stats.BestStreak = stats.CurrentStreak
		}
		stats.TotalCreditsEarned += earned + bonus

		if err := s.ledger.Credit(tx, vote.UserID, earned, models.ReasonPollReward); err != nil {
			return err
		}
		if bonus > 0 {
			if err := s.ledger.Credit(tx, vote.UserID, bonus, models.ReasonStreakBonus); err != nil {
				return err
			}
		}
	} else {
		stats.CurrentStreak = 0
	}

	vote.IsCorrect = &correct
	vote.CreditsEarned = &earned
	if err := tx.Save(vote).Error; err != nil {
		return err
	}
	return tx.Save(stats).Error
}

// lockStats fetches the voter's stats row FOR UPDATE, creating it on first use.
func lockStats(tx *gorm.DB, userID uint) (*models.PredictionStats, error) {
	var stats models.PredictionStats
	err := forUpdate(tx).Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.PredictionStats{UserID: userID}
		if err := tx.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Stats returns the user's prediction rollup, zero-valued when absent.
func (s *PollService) Stats(userID uint) (*models.PredictionStats, error) {
	var stats models.PredictionStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.PredictionStats{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
