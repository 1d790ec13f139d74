package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"

	"github.com/hearthledger/budget-server/internal/config"
	"github.com/hearthledger/budget-server/internal/schedule"
	storerule "github.com/hearthledger/budget-server/internal/storage/rule"
)

// Loop is the periodic driver of the recurring transaction scheduler. On
// every tick it selects the active rules that may be due and dispatches each
// to the runner on its own goroutine, bounded by a weighted semaphore so one
// household's slow or broken rule cannot starve the rest.
type Loop struct {
	store    RuleStore
	runner   *Runner
	cfg      config.SchedulerConfig
	log      *logrus.Logger
	cron     *cron.Cron
	sem      *semaphore.Weighted
	sweeping atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewLoop(store RuleStore, runner *Runner, cfg config.SchedulerConfig, log *logrus.Logger) *Loop {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loop{
		store:  store,
		runner: runner,
		cfg:    cfg,
		log:    log,
		sem:    semaphore.NewWeighted(int64(cfg.Workers)),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start registers the tick and runs an initial sweep so a restarted server
// catches up immediately instead of waiting out the first interval.
func (l *Loop) Start() error {
	l.cron = cron.New()
	if _, err := l.cron.AddFunc(l.cfg.TickSpec, func() {
		l.Sweep(l.ctx, time.Now())
	}); err != nil {
		return fmt.Errorf("scheduler: bad tick spec %q: %w", l.cfg.TickSpec, err)
	}

	l.log.WithFields(logrus.Fields{
		"tickSpec": l.cfg.TickSpec,
		"workers":  l.cfg.Workers,
	}).Info("Scheduler.Loop.Start")

	go l.Sweep(l.ctx, time.Now())
	l.cron.Start()
	return nil
}

// Stop halts the tick and waits for in-flight rule passes to finish.
func (l *Loop) Stop() {
	if l.cron != nil {
		<-l.cron.Stop().Done()
	}
	l.cancel()
	// Draining the full semaphore waits for every in-flight pass.
	_ = l.sem.Acquire(context.Background(), int64(l.cfg.Workers))
	l.sem.Release(int64(l.cfg.Workers))
	l.log.Info("Scheduler.Loop.Stop")
}

// Sweep runs one tick: list candidate rules, dispatch each to the runner.
// It returns the number of rules dispatched. Overlapping sweeps are
// skipped, matching a tick that fires while the previous one still runs.
func (l *Loop) Sweep(ctx context.Context, asOf time.Time) int {
	if !l.sweeping.CompareAndSwap(false, true) {
		l.log.Warn("Scheduler.Sweep.Overlap")
		return 0
	}
	defer l.sweeping.Store(false)

	rules, err := l.store.ListDueActive(ctx, asOf)
	if err != nil {
		l.log.WithError(err).Error("Scheduler.Sweep.ListDueActive")
		return 0
	}

	l.log.WithField("candidates", len(rules)).Info("Scheduler.Sweep.Start")

	var wg sync.WaitGroup
	dispatched := 0
	for _, r := range rules {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			break
		}
		dispatched++
		wg.Add(1)
		go func(rule schedule.Rule) {
			defer wg.Done()
			defer l.sem.Release(1)
			l.runOne(ctx, rule, asOf)
		}(r)
	}
	wg.Wait()

	l.log.WithField("dispatched", dispatched).Info("Scheduler.Sweep.Complete")
	return dispatched
}

// runOne claims a rule and drives one runner pass under the pass budget.
// Every failure mode is contained here; nothing propagates to the sweep.
//
// The listed rule is only a candidate: the pass runs on the row the claim
// returns, because another instance may have completed a pass, or a user
// may have paused the rule, between the sweep's listing and the claim.
func (l *Loop) runOne(ctx context.Context, rule schedule.Rule, asOf time.Time) {
	defer func() {
		if recovered := recover(); recovered != nil {
			l.log.WithFields(logrus.Fields{
				"ruleID": rule.ID,
				"panic":  recovered,
			}).Error("Scheduler.Rule.Panic")
		}
	}()

	passCtx, cancel := context.WithTimeout(ctx, l.cfg.PassTimeout)
	defer cancel()

	claimed, lease, err := l.store.Claim(passCtx, rule.ID, l.cfg.ClaimTTL)
	if errors.Is(err, storerule.ErrAlreadyClaimed) {
		// Another worker or instance owns this rule right now.
		l.log.WithField("ruleID", rule.ID).Debug("Scheduler.Rule.AlreadyClaimed")
		return
	}
	if err != nil {
		l.log.WithError(err).WithField("ruleID", rule.ID).Error("Scheduler.Rule.Claim")
		return
	}
	defer func() {
		releaseCtx, releaseCancel := context.WithTimeout(context.WithoutCancel(ctx), runStateTimeout)
		defer releaseCancel()
		if err := l.store.Release(releaseCtx, lease); err != nil {
			l.log.WithError(err).WithField("ruleID", rule.ID).Error("Scheduler.Rule.Release")
		}
	}()

	if claimed.Status != schedule.RuleStatusActive {
		// Paused since it was listed.
		l.log.WithField("ruleID", rule.ID).Debug("Scheduler.Rule.NoLongerActive")
		return
	}

	if err := l.runner.Pass(passCtx, *claimed, asOf); err != nil {
		// Already counted and persisted by the runner; logged here only so
		// a sweep's failures are visible in one place.
		l.log.WithError(err).WithField("ruleID", rule.ID).Info("Scheduler.Rule.PassError")
	}
}
