package rule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"

	"github.com/hearthledger/budget-server/internal/schedule"
)

// ErrAlreadyClaimed is returned by Claim when another worker holds an
// unexpired lease on the rule.
var ErrAlreadyClaimed = errors.New("rule already claimed")

const selectColumns = `id, household_id, created_by, account_id, category_id, type,
	amount, description, frequency_type, day_of_week, day_of_month, start_date,
	status, last_run_date, failure_count, last_error, created_at, updated_at`

// Store provides access to the scheduled_transaction_rules table, including
// the lease-based claim primitives the scheduler relies on. Its update
// queries are conditional enough that they are written as plain SQL rather
// than through the query builder.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Insert(ctx context.Context, rule *schedule.Rule) (uuid.UUID, error) {
	frequency, dayOfWeek, dayOfMonth := schedule.EncodeCadence(rule.Cadence)

	var categoryID uuid.NullUUID
	if rule.CategoryID != nil {
		categoryID = uuid.NullUUID{UUID: *rule.CategoryID, Valid: true}
	}

	query := `
		INSERT INTO scheduled_transaction_rules
			(household_id, created_by, account_id, category_id, type, amount,
			 description, frequency_type, day_of_week, day_of_month, start_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`
	return stdscan.One(ctx, s.db, scan.SingleColumnMapper[uuid.UUID], query,
		rule.HouseholdID, rule.CreatedBy, rule.AccountID, categoryID,
		int16(rule.Type), rule.Amount, rule.Description,
		int16(frequency), dayOfWeek, dayOfMonth,
		schedule.DateOf(rule.StartDate), int16(rule.Status))
}

func (s *Store) FindByID(ctx context.Context, id uuid.UUID) (*schedule.Rule, error) {
	query := `SELECT ` + selectColumns + ` FROM scheduled_transaction_rules WHERE id = $1`
	found, err := stdscan.One(ctx, s.db, scan.StructMapper[row](), query, id)
	if err != nil {
		return nil, err
	}
	rule := found.toDomain()
	return &rule, nil
}

func (s *Store) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]schedule.Rule, error) {
	query := `SELECT ` + selectColumns + `
		FROM scheduled_transaction_rules
		WHERE household_id = $1
		ORDER BY created_at, id`
	rows, err := stdscan.All(ctx, s.db, scan.StructMapper[row](), query, householdID)
	if err != nil {
		return nil, err
	}
	rules := make([]schedule.Rule, len(rows))
	for i, r := range rows {
		rules[i] = r.toDomain()
	}
	return rules, nil
}

func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM scheduled_transaction_rules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus flips a rule between active and paused on behalf of a user.
// Reactivating resets the failure count so the pause threshold starts
// fresh; the last run date is untouched, so generation resumes strictly
// after the last materialized occurrence.
func (s *Store) SetStatus(ctx context.Context, id uuid.UUID, status schedule.RuleStatus) error {
	var query string
	if status == schedule.RuleStatusActive {
		query = `UPDATE scheduled_transaction_rules
			SET status = $2, failure_count = 0, last_error = NULL, updated_at = now()
			WHERE id = $1`
	} else {
		query = `UPDATE scheduled_transaction_rules
			SET status = $2, updated_at = now()
			WHERE id = $1`
	}
	result, err := s.db.ExecContext(ctx, query, id, int16(status))
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListDueActive returns every active rule that could have an occurrence due
// as of asOf. The filter is deliberately coarse (started, not already run
// today or later); exact dueness is the occurrence calculator's job.
func (s *Store) ListDueActive(ctx context.Context, asOf time.Time) ([]schedule.Rule, error) {
	query := `SELECT ` + selectColumns + `
		FROM scheduled_transaction_rules
		WHERE status = $1
		  AND start_date <= $2
		  AND (last_run_date IS NULL OR last_run_date < $2)
		ORDER BY start_date, id`
	rows, err := stdscan.All(ctx, s.db, scan.StructMapper[row](), query,
		int16(schedule.RuleStatusActive), schedule.DateOf(asOf))
	if err != nil {
		return nil, err
	}
	rules := make([]schedule.Rule, len(rows))
	for i, r := range rows {
		rules[i] = r.toDomain()
	}
	return rules, nil
}

// Lease is an exclusive, time-bounded right to process one rule.
type Lease struct {
	RuleID uuid.UUID
	Until  time.Time
}

// Claim atomically takes the lease on a rule and returns the rule's row as
// it stands under that lease. It succeeds only when no other worker holds
// an unexpired lease, so crashed workers free their rules once the TTL
// passes. Callers must run the pass on the returned row, never on whatever
// listing led them here: between listing and claiming, another instance may
// have finished a pass or a user may have edited the rule.
func (s *Store) Claim(ctx context.Context, id uuid.UUID, ttl time.Duration) (*schedule.Rule, *Lease, error) {
	now := time.Now().UTC()
	until := now.Add(ttl)
	claimed, err := stdscan.One(ctx, s.db, scan.StructMapper[row](), `
		UPDATE scheduled_transaction_rules
		SET claimed_until = $2
		WHERE id = $1 AND (claimed_until IS NULL OR claimed_until < $3)
		RETURNING `+selectColumns,
		id, until, now)
	if errors.Is(err, sql.ErrNoRows) {
		// Leased elsewhere, or deleted since it was listed. Not ours to run
		// either way.
		return nil, nil, ErrAlreadyClaimed
	}
	if err != nil {
		return nil, nil, fmt.Errorf("claim rule %s: %w", id, err)
	}
	rule := claimed.toDomain()
	return &rule, &Lease{RuleID: id, Until: until}, nil
}

// Release clears the lease. A release after expiry is harmless.
func (s *Store) Release(ctx context.Context, lease *Lease) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE scheduled_transaction_rules
		SET claimed_until = NULL
		WHERE id = $1 AND claimed_until = $2`,
		lease.RuleID, lease.Until)
	if err != nil {
		return fmt.Errorf("release rule %s: %w", lease.RuleID, err)
	}
	return nil
}

// RunState is the scheduler-owned slice of a rule's row. Status is set only
// when the runner itself changes it (the failure-threshold pause); a nil
// Status leaves the column alone, so a user pausing a rule mid-pass is
// never overwritten by that pass finishing.
type RunState struct {
	LastRunDate  *time.Time
	FailureCount int
	LastError    *string
	Status       *schedule.RuleStatus
}

// PersistRunState writes the runner's outcome for a rule. The runner calls
// it after every materialized occurrence, not only at the end of a pass, so
// a crash can duplicate at most one occurrence.
func (s *Store) PersistRunState(ctx context.Context, id uuid.UUID, state RunState) error {
	var lastRun any
	if state.LastRunDate != nil {
		lastRun = schedule.DateOf(*state.LastRunDate)
	}
	var lastError any
	if state.LastError != nil {
		lastError = *state.LastError
	}

	var err error
	if state.Status != nil {
		_, err = s.db.ExecContext(ctx, `
			UPDATE scheduled_transaction_rules
			SET last_run_date = $2, failure_count = $3, last_error = $4,
			    status = $5, updated_at = now()
			WHERE id = $1`,
			id, lastRun, state.FailureCount, lastError, int16(*state.Status))
	} else {
		_, err = s.db.ExecContext(ctx, `
			UPDATE scheduled_transaction_rules
			SET last_run_date = $2, failure_count = $3, last_error = $4,
			    updated_at = now()
			WHERE id = $1`,
			id, lastRun, state.FailureCount, lastError)
	}
	if err != nil {
		return fmt.Errorf("persist run state for rule %s: %w", id, err)
	}
	return nil
}
