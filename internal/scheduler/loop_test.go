package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"

	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/schedule"
)

func newTestLoop(store *fakeStore, led ledger.Ledger, workers int) *Loop {
	cfg := testConfig()
	cfg.Workers = workers
	runner := NewRunner(store, led, cfg, logging.SetupLogging())
	return NewLoop(store, runner, cfg, logging.SetupLogging())
}

func TestSweep_DispatchesAndReleasesEveryDueRule(t *testing.T) {
	first := weeklyTestRule()
	second := weeklyTestRule()
	store := newFakeStore(first, second)
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 8))

	assert.Equal(t, 2, dispatched)
	assert.Len(t, led.createdDates(), 4) // two Mondays each
	assert.Equal(t, 2, store.released)
	assert.Empty(t, store.claimed, "every lease must be released")
}

func TestSweep_FailingRuleDoesNotAffectOthers(t *testing.T) {
	broken := weeklyTestRule()
	broken.Cadence = nil // permanent validation failure
	healthy := weeklyTestRule()
	store := newFakeStore(broken, healthy)
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	loop.Sweep(context.Background(), date(2024, 1, 1))

	assert.Equal(t, []time.Time{date(2024, 1, 1)}, led.createdDates())
	failed := false
	for _, state := range store.persisted {
		if state.FailureCount > 0 {
			failed = true
		}
	}
	assert.True(t, failed, "broken rule must record its failure")
	assert.Empty(t, store.claimed)
}

func TestSweep_SkipsAlreadyClaimedRule(t *testing.T) {
	taken := weeklyTestRule()
	free := weeklyTestRule()
	store := newFakeStore(taken, free)
	store.claimed[taken.ID] = true // held by another instance
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 1))

	assert.Equal(t, 2, dispatched)
	assert.Len(t, led.createdDates(), 1, "only the unclaimed rule runs")
	assert.Equal(t, 1, store.released)
	assert.True(t, store.claimed[taken.ID], "foreign lease must not be touched")
}

func TestSweep_OverlappingSweepIsSkipped(t *testing.T) {
	store := newFakeStore(weeklyTestRule())
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	loop.sweeping.Store(true)
	assert.Zero(t, loop.Sweep(context.Background(), date(2024, 1, 1)))
	assert.Empty(t, led.createdDates())

	loop.sweeping.Store(false)
	assert.Equal(t, 1, loop.Sweep(context.Background(), date(2024, 1, 1)))
}

func TestSweep_PanickingRuleIsContained(t *testing.T) {
	bomb := weeklyTestRule()
	bomb.Description = "boom"
	healthy := weeklyTestRule()
	store := newFakeStore(bomb, healthy)
	led := &panickyLedger{inner: newFakeLedger()}
	loop := newTestLoop(store, led, 2)

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 1))

	assert.Equal(t, 2, dispatched)
	assert.Equal(t, []time.Time{date(2024, 1, 1)}, led.inner.createdDates())
	assert.Empty(t, store.claimed, "lease is released even after a panic")
}

func TestSweep_ConcurrencyBoundedByWorkers(t *testing.T) {
	rules := make([]schedule.Rule, 6)
	for i := range rules {
		rules[i] = weeklyTestRule()
	}
	store := newFakeStore(rules...)
	led := &gaugedLedger{inner: newFakeLedger(), delay: 10 * time.Millisecond}
	loop := newTestLoop(store, led, 2)

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 1))

	assert.Equal(t, 6, dispatched)
	assert.LessOrEqual(t, led.max, 2, "in-flight passes must not exceed the worker count")
}

func TestSweep_PausedRuleIsExcluded(t *testing.T) {
	paused := weeklyTestRule()
	paused.Status = schedule.RuleStatusPaused
	active := weeklyTestRule()
	store := newFakeStore(paused, active)
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 8))

	assert.Equal(t, 1, dispatched, "paused rules must not be listed as due")
	assert.Len(t, led.createdDates(), 2, "only the active rule's Mondays fire")
	assert.Nil(t, store.rules[paused.ID].LastRunDate, "the paused rule never ran")
}

func TestSweep_PassCompletedElsewhereIsNotRepeated(t *testing.T) {
	rule := weeklyTestRule()
	store := newFakeStore(rule)
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	// Another instance finishes a full pass after this sweep listed the rule
	// but before it claimed the lease. The claim hands back the advanced
	// row, so nothing is due anymore.
	store.afterList = func() {
		caughtUp := rule
		lastRun := date(2024, 1, 8)
		caughtUp.LastRunDate = &lastRun
		store.setRule(caughtUp)
	}

	dispatched := loop.Sweep(context.Background(), date(2024, 1, 8))

	assert.Equal(t, 1, dispatched)
	assert.Empty(t, led.createdDates(), "occurrences already materialized elsewhere must not repeat")
	assert.Empty(t, store.claimed)
}

func TestSweep_PauseAfterListingSkipsThePass(t *testing.T) {
	rule := weeklyTestRule()
	store := newFakeStore(rule)
	led := newFakeLedger()
	loop := newTestLoop(store, led, 2)

	// A user pauses the rule while the sweep is in flight.
	store.afterList = func() {
		pausedRule := rule
		pausedRule.Status = schedule.RuleStatusPaused
		store.setRule(pausedRule)
	}

	loop.Sweep(context.Background(), date(2024, 1, 8))

	assert.Empty(t, led.createdDates())
	assert.Empty(t, store.persisted, "a skipped pass must not write run-state over the pause")
	assert.Equal(t, 1, store.released, "the lease is still released")
}

// panickyLedger panics for rules named "boom" and delegates the rest.
type panickyLedger struct {
	inner *fakeLedger
}

func (l *panickyLedger) CreateTransaction(ctx context.Context, create ledger.Create) (uuid.UUID, error) {
	if create.TransactionName == "boom" {
		panic("ledger blew up")
	}
	return l.inner.CreateTransaction(ctx, create)
}

// gaugedLedger tracks the peak number of concurrent creations.
type gaugedLedger struct {
	inner   *fakeLedger
	delay   time.Duration
	mu      sync.Mutex
	current int
	max     int
}

func (l *gaugedLedger) CreateTransaction(ctx context.Context, create ledger.Create) (uuid.UUID, error) {
	l.mu.Lock()
	l.current++
	if l.current > l.max {
		l.max = l.current
	}
	l.mu.Unlock()

	time.Sleep(l.delay)

	l.mu.Lock()
	l.current--
	l.mu.Unlock()
	return l.inner.CreateTransaction(ctx, create)
}
