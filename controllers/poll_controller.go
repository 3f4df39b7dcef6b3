package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// PollController exposes the poll lifecycle: listing, voting, and the
// pipeline-facing creation/resolution endpoints.
type PollController struct {
	polls    *services.PollService
	resolver *services.Resolver
}

// NewPollController creates a new controller instance.
func NewPollController(polls *services.PollService, resolver *services.Resolver) *PollController {
	return &PollController{polls: polls, resolver: resolver}
}

func pollID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid poll id")
		return 0, false
	}
	return uint(id), true
}

// ListActive returns OPEN polls with the caller's vote merged in.
func (p *PollController) ListActive(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	views, err := p.polls.ActivePolls(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"polls": views})
}

// ListResolved returns polls resolved in a [from, to] calendar-day window.
func (p *PollController) ListResolved(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	from := ctx.Query("from")
	to := ctx.Query("to")
	if from == "" || to == "" {
		utils.Error(ctx, http.StatusBadRequest, 40011, "from and to dates are required (YYYY-MM-DD)")
		return
	}

	views, err := p.polls.ResolvedPolls(userID, from, to)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"polls": views})
}

// Yesterday returns yesterday's polls plus the caller's accuracy summary.
func (p *PollController) Yesterday(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	views, summary, err := p.polls.YesterdayReview(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"polls": views, "summary": summary})
}

type voteRequest struct {
	Choice string `json:"choice" binding:"required"`
}

// SubmitVote records the caller's choice on an open poll.
func (p *PollController) SubmitVote(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}
	id, ok := pollID(ctx)
	if !ok {
		return
	}

	var req voteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request body")
		return
	}

	vote, err := p.polls.SubmitVote(userID, id, req.Choice)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"vote": vote})
}

// Stats returns the caller's prediction rollup.
func (p *PollController) Stats(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	stats, err := p.polls.Stats(userID)
	if err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"total_votes":          stats.TotalVotes,
		"correct_votes":        stats.CorrectVotes,
		"current_streak":       stats.CurrentStreak,
		"best_streak":          stats.BestStreak,
		"total_credits_earned": stats.TotalCreditsEarned,
		"accuracy_rate":        stats.Accuracy(),
	})
}

// Create inserts a new poll (content pipeline endpoint).
func (p *PollController) Create(ctx *gin.Context) {
	var in services.CreatePollInput
	if err := ctx.ShouldBindJSON(&in); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request body")
		return
	}

	poll, err := p.polls.CreatePoll(in)
	if err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40013, err.Error())
		return
	}
	utils.Success(ctx, gin.H{"poll": poll})
}

type resolveRequest struct {
	Answer string `json:"answer" binding:"required"`
	Source string `json:"source"`
}

// Resolve resolves a poll immediately. Safe for duplicate scheduler calls.
func (p *PollController) Resolve(ctx *gin.Context) {
	id, ok := pollID(ctx)
	if !ok {
		return
	}

	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request body")
		return
	}

	if err := p.polls.ResolvePoll(id, req.Answer, req.Source); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"poll_id": id, "status": "RESOLVED"})
}

// StageOutcome records the ground-truth answer for the resolution sweep.
func (p *PollController) StageOutcome(ctx *gin.Context) {
	id, ok := pollID(ctx)
	if !ok {
		return
	}

	var req resolveRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request body")
		return
	}

	if err := p.resolver.StageOutcome(id, req.Answer, req.Source); err != nil {
		respondServiceError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"poll_id": id, "staged": true})
}
