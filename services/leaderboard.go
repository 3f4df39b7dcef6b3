package services

import (
	"time"

	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

// LeaderboardRules control ranking size and the low-sample cutoff.
type LeaderboardRules struct {
	Size     int
	MinVotes int
}

// LeaderboardService ranks users by prediction accuracy. A pure read over
// PredictionStats: no write side effects, deterministic and stable for
// unchanged input (ties break by volume desc, then earliest account).
type LeaderboardService struct {
	db    *gorm.DB
	rules LeaderboardRules
}

// NewLeaderboardService wires a leaderboard over the stats rollup.
func NewLeaderboardService(db *gorm.DB, rules LeaderboardRules) *LeaderboardService {
	return &LeaderboardService{db: db, rules: rules}
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	UserID       uint    `json:"user_id"`
	Nickname     string  `json:"nickname"`
	TotalVotes   int     `json:"total_votes"`
	CorrectVotes int     `json:"correct_votes"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

// CallerStanding describes the caller when outside the top list.
type CallerStanding struct {
	Rank             int  `json:"rank"`
	Qualified        bool `json:"qualified"`
	VotesToQualify   int  `json:"votes_to_qualify,omitempty"`
	PicksToReachTopN int  `json:"picks_to_reach_top_n,omitempty"`
}

// Leaderboard is the full response: top N plus the caller's standing when the
// caller did not make the cut.
type Leaderboard struct {
	Entries []LeaderboardEntry `json:"entries"`
	Caller  *CallerStanding    `json:"caller,omitempty"`
}

type rankedRow struct {
	UserID       uint
	Nickname     string
	TotalVotes   int
	CorrectVotes int
	CreatedAt    time.Time
}

// GetLeaderboard computes the ranking and the caller's standing.
func (s *LeaderboardService) GetLeaderboard(callerID uint) (*Leaderboard, error) {
	var rows []rankedRow
	err := s.db.Model(&models.PredictionStats{}).
		Select("prediction_stats.user_id, users.nickname, prediction_stats.total_votes, prediction_stats.correct_votes, users.created_at").
		Joins("JOIN users ON users.id = prediction_stats.user_id").
		Where("prediction_stats.total_votes >= ?", s.rules.MinVotes).
		Order("prediction_stats.correct_votes * 1.0 / prediction_stats.total_votes DESC").
		Order("prediction_stats.total_votes DESC").
		Order("users.created_at ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	board := &Leaderboard{Entries: make([]LeaderboardEntry, 0, s.rules.Size)}
	callerRank := 0
	for i, r := range rows {
		entry := LeaderboardEntry{
			Rank:         i + 1,
			UserID:       r.UserID,
			Nickname:     r.Nickname,
			TotalVotes:   r.TotalVotes,
			CorrectVotes: r.CorrectVotes,
			AccuracyRate: accuracyPct(r.CorrectVotes, r.TotalVotes),
		}
		if r.UserID == callerID {
			callerRank = entry.Rank
		}
		if i < s.rules.Size {
			board.Entries = append(board.Entries, entry)
		}
	}

	if callerRank > 0 && callerRank <= s.rules.Size {
		return board, nil
	}

	standing := &CallerStanding{Rank: callerRank, Qualified: callerRank > 0}
	if callerRank == 0 {
		var stats models.PredictionStats
		if err := s.db.Where("user_id = ?", callerID).First(&stats).Error; err == nil {
			if missing := s.rules.MinVotes - stats.TotalVotes; missing > 0 {
				standing.VotesToQualify = missing
			}
		} else if err != gorm.ErrRecordNotFound {
			return nil, err
		} else {
			standing.VotesToQualify = s.rules.MinVotes
		}
	} else if len(board.Entries) == s.rules.Size {
		caller := rows[callerRank-1]
		cutoff := board.Entries[len(board.Entries)-1]
		standing.PicksToReachTopN = picksToReach(caller.CorrectVotes, caller.TotalVotes, cutoff.AccuracyRate)
	}
	board.Caller = standing
	return board, nil
}

func accuracyPct(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// picksToReach returns how many additional consecutive correct picks lift the
// caller's accuracy past the cutoff. Bounded so a pathological cutoff cannot
// loop forever.
func picksToReach(correct, total int, cutoffPct float64) int {
	for n := 1; n <= 1000; n++ {
		if accuracyPct(correct+n, total+n) > cutoffPct {
			return n
		}
	}
	return 1000
}
