package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pulseinvest/habitloop/models"
)

func setupResolver(t *testing.T) (*Resolver, *PollService, *fakeClock) {
	t.Helper()
	svc, clock, _ := setupPollService(t)
	r := NewResolver(svc.db, svc, clock, zap.NewNop().Sugar(), "0 */5 * * * *")
	return r, svc, clock
}

func TestStageOutcomeUpsert(t *testing.T) {
	r, svc, clock := setupResolver(t)
	poll := mustCreatePoll(t, svc, clock, 2)

	require.NoError(t, r.StageOutcome(poll.ID, models.AnswerYes, "close"))
	require.NoError(t, r.StageOutcome(poll.ID, models.AnswerNo, "correction"))

	var outcome models.PollOutcome
	require.NoError(t, svc.db.Where("poll_id = ?", poll.ID).First(&outcome).Error)
	assert.Equal(t, models.AnswerNo, outcome.Answer)
	assert.Equal(t, "correction", outcome.Source)

	var count int64
	require.NoError(t, svc.db.Model(&models.PollOutcome{}).Where("poll_id = ?", poll.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestStageOutcomeValidation(t *testing.T) {
	r, _, _ := setupResolver(t)

	assert.ErrorIs(t, r.StageOutcome(1, "MAYBE", ""), ErrInvalidChoice)
	assert.ErrorIs(t, r.StageOutcome(999, models.AnswerYes, ""), ErrNotFound)
}

func TestSweepResolvesDuePolls(t *testing.T) {
	r, svc, clock := setupResolver(t)
	u := seedUser(t, svc.db, "voter", false, 0)

	due := mustCreatePoll(t, svc, clock, 2)
	notDue, err := svc.CreatePoll(CreatePollInput{
		Question: "q", Category: models.CategoryMacro,
		Deadline: clock.Now().Add(48 * time.Hour), BaseReward: 2,
	})
	require.NoError(t, err)
	unstagedDue := mustCreatePoll(t, svc, clock, 2)

	_, err = svc.SubmitVote(u.ID, due.ID, models.AnswerYes)
	require.NoError(t, err)

	require.NoError(t, r.StageOutcome(due.ID, models.AnswerYes, ""))
	require.NoError(t, r.StageOutcome(notDue.ID, models.AnswerYes, ""))

	// nothing past its deadline yet
	n, err := r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	clock.advance(2 * time.Hour)
	n, err = r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, int64(2), balanceOf(t, svc.db, u.ID))

	var p models.Poll
	require.NoError(t, svc.db.First(&p, due.ID).Error)
	assert.Equal(t, models.PollStatusResolved, p.Status)

	// due but without a staged outcome stays untouched
	var p2 models.Poll
	require.NoError(t, svc.db.First(&p2, unstagedDue.ID).Error)
	assert.Equal(t, models.PollStatusOpen, p2.Status)

	// re-sweeping finds nothing new
	n, err = r.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
