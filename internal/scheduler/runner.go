package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/sirupsen/logrus"

	"github.com/hearthledger/budget-server/internal/config"
	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/schedule"
	storerule "github.com/hearthledger/budget-server/internal/storage/rule"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

const runStateTimeout = 5 * time.Second

// Runner materializes all due occurrences for exactly one rule and updates
// the rule's run-state. Callers must hold the rule's claim for the duration
// of the pass.
type Runner struct {
	store  RuleStore
	ledger ledger.Ledger
	cfg    config.SchedulerConfig
	log    *logrus.Logger
}

func NewRunner(store RuleStore, l ledger.Ledger, cfg config.SchedulerConfig, log *logrus.Logger) *Runner {
	return &Runner{
		store:  store,
		ledger: l,
		cfg:    cfg,
		log:    log,
	}
}

// Pass runs one scheduling pass for a rule as of asOf.
//
// Occurrences are generated strictly in ascending date order and the
// advanced last-run date is persisted after every successful creation, so a
// crash mid-pass can duplicate at most one occurrence and can never leave a
// gap. The first failure stops the pass: skipping ahead past a failed
// occurrence would break the no-gaps guarantee.
//
// The rule must be the row returned by the store's Claim, so the last run
// date reflects every pass any instance has completed.
func (r *Runner) Pass(ctx context.Context, rule schedule.Rule, asOf time.Time) error {
	if err := rule.Validate(); err != nil {
		// A stored rule violating its own invariants is a permanent
		// failure of that rule, never a scheduler crash.
		return r.recordFailure(ctx, rule, false, err)
	}

	due, skipped := schedule.DueOccurrences(rule, asOf, r.cfg.CatchUpCap)
	if skipped > 0 {
		r.log.WithFields(logrus.Fields{
			"ruleID":  rule.ID,
			"skipped": skipped,
			"cap":     r.cfg.CatchUpCap,
		}).Info("Scheduler.Runner.CatchUpSkipped")
	}
	if len(due) == 0 {
		return nil
	}

	generated := false
	for _, occurrence := range due {
		_, err := r.ledger.CreateTransaction(ctx, ledger.Create{
			HouseholdID:     rule.HouseholdID,
			AccountID:       rule.AccountID,
			CategoryID:      rule.CategoryID,
			Type:            transaction.TransactionType(rule.Type),
			Amount:          rule.Amount,
			TransactionName: rule.Description,
			TransactionDate: occurrence,
		})
		if err != nil {
			return r.recordFailure(ctx, rule, generated, err)
		}

		generated = true
		lastRun := occurrence
		rule.LastRunDate = &lastRun
		rule.FailureCount = 0
		rule.LastError = nil
		// Status stays nil: success never touches the status column, so a
		// pause the user applied during this pass survives it.
		if err := r.persist(ctx, rule.ID, storerule.RunState{
			LastRunDate:  rule.LastRunDate,
			FailureCount: 0,
		}); err != nil {
			return err
		}
	}

	return nil
}

// recordFailure applies the uniform failure policy: transient and permanent
// failures both count toward the pause threshold. Any occurrence generated
// earlier in this pass already reset the consecutive-failure count.
func (r *Runner) recordFailure(ctx context.Context, rule schedule.Rule, generatedThisPass bool, cause error) error {
	failureCount := rule.FailureCount
	if generatedThisPass {
		failureCount = 0
	}
	failureCount++

	var status *schedule.RuleStatus
	if failureCount >= r.cfg.PauseThreshold {
		paused := schedule.RuleStatusPaused
		status = &paused
	}

	message := classify(cause)
	if persistErr := r.persist(ctx, rule.ID, storerule.RunState{
		LastRunDate:  rule.LastRunDate,
		FailureCount: failureCount,
		LastError:    &message,
		Status:       status,
	}); persistErr != nil {
		return persistErr
	}

	entry := r.log.WithError(cause).WithFields(logrus.Fields{
		"ruleID":       rule.ID,
		"failureCount": failureCount,
	})
	if status != nil {
		entry.Warn("Scheduler.Runner.RulePaused")
	} else {
		entry.Warn("Scheduler.Runner.PassFailed")
	}

	return cause
}

// persist writes run-state on a detached context: the outcome of a pass
// must be recorded even when the pass budget is already exhausted.
func (r *Runner) persist(ctx context.Context, ruleID uuid.UUID, state storerule.RunState) error {
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runStateTimeout)
	defer cancel()

	if err := r.store.PersistRunState(persistCtx, ruleID, state); err != nil {
		r.log.WithError(err).WithField("ruleID", ruleID).Error("Scheduler.Runner.PersistRunState")
		return err
	}
	return nil
}

func classify(err error) string {
	switch {
	case errors.Is(err, schedule.ErrInvalidRule), ledger.IsPermanent(err):
		return fmt.Sprintf("permanent: %v", err)
	default:
		return fmt.Sprintf("transient: %v", err)
	}
}
