package services

import (
	"errors"

	"github.com/alitto/pond/v2"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pulseinvest/habitloop/models"
)

// Resolver sweeps for OPEN polls past their deadline that have a staged
// outcome and resolves them. Scheduling is at-least-once by design: the
// per-poll resolution is idempotent, so overlapping or duplicate sweeps are
// harmless.
type Resolver struct {
	db     *gorm.DB
	polls  *PollService
	clock  Clock
	logger *zap.SugaredLogger
	cron   *cron.Cron
	pool   pond.Pool
	spec   string
}

// NewResolver wires the resolution sweep. cronSpec uses the seconds-field format.
func NewResolver(db *gorm.DB, polls *PollService, clock Clock, logger *zap.SugaredLogger, cronSpec string) *Resolver {
	return &Resolver{
		db:     db,
		polls:  polls,
		clock:  clock,
		logger: logger,
		pool:   pond.NewPool(4),
		spec:   cronSpec,
	}
}

// Start registers and starts the cron schedule.
func (r *Resolver) Start() error {
	r.cron = cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	if _, err := r.cron.AddFunc(r.spec, func() {
		if n, err := r.Sweep(); err != nil {
			r.logger.Warnf("resolution sweep failed: %v", err)
		} else if n > 0 {
			r.logger.Infof("resolution sweep resolved %d polls", n)
		}
	}); err != nil {
		return err
	}
	r.cron.Start()
	r.logger.Infof("resolution sweep scheduled: %s", r.spec)
	return nil
}

// Stop halts the schedule and waits for in-flight work.
func (r *Resolver) Stop() {
	if r.cron != nil {
		<-r.cron.Stop().Done()
	}
	r.pool.StopAndWait()
}

type duePoll struct {
	PollID uint
	Answer string
	Source string
}

// Sweep resolves every due poll that has a staged outcome, fanning the
// per-poll transactions out over a bounded worker group. Returns the number
// of polls resolved without error.
func (r *Resolver) Sweep() (int, error) {
	var due []duePoll
	err := r.db.Model(&models.Poll{}).
		Select("polls.id AS poll_id, poll_outcomes.answer, poll_outcomes.source").
		Joins("JOIN poll_outcomes ON poll_outcomes.poll_id = polls.id").
		Where("polls.status = ? AND polls.deadline <= ?", models.PollStatusOpen, r.clock.Now()).
		Scan(&due).Error
	if err != nil {
		return 0, err
	}
	if len(due) == 0 {
		return 0, nil
	}

	group := r.pool.NewGroup()
	resolved := 0
	done := make([]bool, len(due))
	for i, d := range due {
		i, d := i, d
		group.Submit(func() {
			if err := r.polls.ResolvePoll(d.PollID, d.Answer, d.Source); err != nil {
				r.logger.Warnf("resolve poll %d failed, will retry next sweep: %v", d.PollID, err)
				return
			}
			done[i] = true
		})
	}
	if err := group.Wait(); err != nil {
		return 0, err
	}
	for _, ok := range done {
		if ok {
			resolved++
		}
	}
	return resolved, nil
}

// StageOutcome upserts the ground-truth answer for a poll so the next sweep
// can resolve it. Tolerates repeated submissions from the pipeline.
func (r *Resolver) StageOutcome(pollID uint, answer, source string) error {
	if !validAnswer(answer) {
		return ErrInvalidChoice
	}
	var poll models.Poll
	if err := r.db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}

	outcome := models.PollOutcome{PollID: pollID, Answer: answer, Source: source}
	err := r.db.Create(&outcome).Error
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return r.db.Model(&models.PollOutcome{}).
			Where("poll_id = ?", pollID).
			Updates(map[string]interface{}{"answer": answer, "source": source}).Error
	}
	return err
}
