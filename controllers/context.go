package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulseinvest/habitloop/middleware"
	"github.com/pulseinvest/habitloop/services"
	"github.com/pulseinvest/habitloop/utils"
)

// getUserID extracts the authenticated user id from the gin context.
func getUserID(ctx *gin.Context) (uint, bool) {
	v, ok := ctx.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// respondServiceError maps the engine's expected error taxonomy onto the JSON
// envelope. Anything unrecognized is a 500 with a generic message.
func respondServiceError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40410, "not found")
	case errors.Is(err, services.ErrAlreadyVoted):
		utils.Error(ctx, http.StatusConflict, 40910, "already voted on this poll")
	case errors.Is(err, services.ErrPollClosed):
		utils.Error(ctx, http.StatusBadRequest, 40020, "poll is closed")
	case errors.Is(err, services.ErrInvalidChoice):
		utils.Error(ctx, http.StatusBadRequest, 40021, "choice must be YES or NO")
	case errors.Is(err, services.ErrInsufficientCredits):
		utils.Error(ctx, http.StatusBadRequest, 40022, "insufficient credits")
	case errors.Is(err, services.ErrRecoveryUnavailable):
		utils.Error(ctx, http.StatusBadRequest, 40023, "streak recovery unavailable")
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("internal error: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50010, "internal error")
	}
}
