package services

import (
	"time"

	"github.com/pulseinvest/habitloop/models"
)

// PollView is a poll with the caller's vote merged in for the UI.
type PollView struct {
	models.Poll
	MyChoice    *string `json:"my_choice,omitempty"`
	MyIsCorrect *bool   `json:"my_is_correct,omitempty"`
	MyCredits   *int64  `json:"my_credits_earned,omitempty"`
}

// ReviewSummary aggregates the caller's performance over a set of polls.
type ReviewSummary struct {
	Polls        int     `json:"polls"`
	Voted        int     `json:"voted"`
	Correct      int     `json:"correct"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

// ActivePolls lists OPEN polls whose deadline has not passed, newest deadline
// last, with the caller's vote merged in.
func (s *PollService) ActivePolls(userID uint) ([]PollView, error) {
	var polls []models.Poll
	err := s.db.
		Where("status = ? AND deadline > ?", models.PollStatusOpen, s.clock.Now()).
		Order("deadline ASC").
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return s.mergeVotes(userID, polls)
}

// ResolvedPolls lists polls resolved within the [from, to] calendar-day window
// (inclusive, app-local days) with the caller's vote and correctness merged in.
func (s *PollService) ResolvedPolls(userID uint, from, to string) ([]PollView, error) {
	start, err := DayStart(s.clock, from)
	if err != nil {
		return nil, err
	}
	end, err := DayStart(s.clock, AddDays(to, 1))
	if err != nil {
		return nil, err
	}

	var polls []models.Poll
	err = s.db.
		Where("status = ? AND resolved_at >= ? AND resolved_at < ?", models.PollStatusResolved, start, end).
		Order("resolved_at DESC").
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return s.mergeVotes(userID, polls)
}

// YesterdayReview returns the polls whose deadline fell on yesterday's
// app-local calendar day, plus the caller's aggregate accuracy over them.
func (s *PollService) YesterdayReview(userID uint) ([]PollView, *ReviewSummary, error) {
	yesterday := AddDays(s.clock.Today(), -1)
	start, err := DayStart(s.clock, yesterday)
	if err != nil {
		return nil, nil, err
	}
	end := start.Add(24 * time.Hour)

	var polls []models.Poll
	err = s.db.
		Where("deadline >= ? AND deadline < ?", start, end).
		Order("deadline ASC").
		Find(&polls).Error
	if err != nil {
		return nil, nil, err
	}

	views, err := s.mergeVotes(userID, polls)
	if err != nil {
		return nil, nil, err
	}

	summary := &ReviewSummary{Polls: len(views)}
	for _, v := range views {
		if v.MyChoice == nil {
			continue
		}
		summary.Voted++
		if v.MyIsCorrect != nil && *v.MyIsCorrect {
			summary.Correct++
		}
	}
	if summary.Voted > 0 {
		summary.AccuracyRate = float64(summary.Correct) / float64(summary.Voted) * 100
	}
	return views, summary, nil
}

func (s *PollService) mergeVotes(userID uint, polls []models.Poll) ([]PollView, error) {
	views := make([]PollView, len(polls))
	if len(polls) == 0 {
		return views, nil
	}

	ids := make([]uint, len(polls))
	for i, p := range polls {
		ids[i] = p.ID
		views[i] = PollView{Poll: p}
	}

	var votes []models.Vote
	if err := s.db.Where("user_id = ? AND poll_id IN ?", userID, ids).Find(&votes).Error; err != nil {
		return nil, err
	}

	byPoll := make(map[uint]models.Vote, len(votes))
	for _, v := range votes {
		byPoll[v.PollID] = v
	}
	for i := range views {
		if v, ok := byPoll[views[i].ID]; ok {
			choice := v.Choice
			views[i].MyChoice = &choice
			views[i].MyIsCorrect = v.IsCorrect
			views[i].MyCredits = v.CreditsEarned
		}
	}
	return views, nil
}
