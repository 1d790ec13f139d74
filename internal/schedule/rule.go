package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// ErrInvalidRule wraps every rule validation failure.
var ErrInvalidRule = errors.New("invalid scheduled rule")

type TransactionType int8

const (
	TransactionTypeIncome TransactionType = iota
	TransactionTypeExpense
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeIncome:
		return "income"
	case TransactionTypeExpense:
		return "expense"
	}
	return "unknown"
}

type RuleStatus int8

const (
	RuleStatusActive RuleStatus = iota
	RuleStatusPaused
)

func (s RuleStatus) String() string {
	switch s {
	case RuleStatusActive:
		return "active"
	case RuleStatusPaused:
		return "paused"
	}
	return "unknown"
}

// FrequencyType is the stored discriminator for a rule's cadence.
type FrequencyType int8

const (
	FrequencyWeekly FrequencyType = iota
	FrequencyMonthly
)

// Cadence is the tagged union of supported recurrence frequencies. The
// stored frequency_type/day_of_week/day_of_month columns are decoded into
// exactly one of Weekly or Monthly when a row is loaded, so a rule can
// never carry both day fields past the storage boundary.
type Cadence interface {
	Frequency() FrequencyType
	validate() error
}

// Weekly fires once per week on Weekday. Weekday uses Go's time.Weekday
// numbering: 0 = Sunday through 6 = Saturday.
type Weekly struct {
	Weekday time.Weekday
}

func (w Weekly) Frequency() FrequencyType { return FrequencyWeekly }

func (w Weekly) validate() error {
	if w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return fmt.Errorf("%w: day of week %d out of range [0,6]", ErrInvalidRule, w.Weekday)
	}
	return nil
}

// Monthly fires once per month on DayOfMonth, clamped to the last valid day
// of shorter months (a day-31 rule fires on Feb 28/29).
type Monthly struct {
	DayOfMonth int
}

func (m Monthly) Frequency() FrequencyType { return FrequencyMonthly }

func (m Monthly) validate() error {
	if m.DayOfMonth < 1 || m.DayOfMonth > 31 {
		return fmt.Errorf("%w: day of month %d out of range [1,31]", ErrInvalidRule, m.DayOfMonth)
	}
	return nil
}

// Rule describes one recurring transaction to generate. Run-state fields
// (Status on failure, LastRunDate, FailureCount, LastError) are written only
// by the scheduler's rule runner; everything else is user-owned.
type Rule struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	CreatedBy   uuid.UUID

	AccountID   uuid.UUID
	CategoryID  *uuid.UUID
	Type        TransactionType
	Amount      decimal.Decimal
	Description string

	Cadence   Cadence
	StartDate time.Time

	Status       RuleStatus
	LastRunDate  *time.Time
	FailureCount int
	LastError    *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate enforces the rule invariants independent of the persistence
// layer. The rule service calls it before any write; the rule runner calls
// it again defensively on loaded rows and treats a failure as a permanent
// rule error rather than a scheduler crash.
func (r *Rule) Validate() error {
	switch r.Type {
	case TransactionTypeIncome:
		if r.CategoryID != nil {
			return fmt.Errorf("%w: income rules must not set a category", ErrInvalidRule)
		}
	case TransactionTypeExpense:
		if r.CategoryID == nil {
			return fmt.Errorf("%w: expense rules require a category", ErrInvalidRule)
		}
	default:
		return fmt.Errorf("%w: unknown transaction type %d", ErrInvalidRule, r.Type)
	}

	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidRule, r.Amount)
	}

	if r.Cadence == nil {
		return fmt.Errorf("%w: cadence is required", ErrInvalidRule)
	}
	if err := r.Cadence.validate(); err != nil {
		return err
	}

	if r.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidRule)
	}
	if r.AccountID == uuid.Nil {
		return fmt.Errorf("%w: account is required", ErrInvalidRule)
	}

	return nil
}

// DecodeCadence rebuilds the Cadence union from its stored representation.
// Rows that violate the weekly/monthly day-field pairing fail here and are
// surfaced as a permanent rule failure.
func DecodeCadence(frequency FrequencyType, dayOfWeek *int16, dayOfMonth *int16) (Cadence, error) {
	switch frequency {
	case FrequencyWeekly:
		if dayOfWeek == nil || dayOfMonth != nil {
			return nil, fmt.Errorf("%w: weekly rules carry day_of_week only", ErrInvalidRule)
		}
		return Weekly{Weekday: time.Weekday(*dayOfWeek)}, nil
	case FrequencyMonthly:
		if dayOfMonth == nil || dayOfWeek != nil {
			return nil, fmt.Errorf("%w: monthly rules carry day_of_month only", ErrInvalidRule)
		}
		return Monthly{DayOfMonth: int(*dayOfMonth)}, nil
	}
	return nil, fmt.Errorf("%w: unknown frequency type %d", ErrInvalidRule, frequency)
}

// EncodeCadence splits the union back into its stored columns.
func EncodeCadence(c Cadence) (frequency FrequencyType, dayOfWeek *int16, dayOfMonth *int16) {
	switch cadence := c.(type) {
	case Weekly:
		day := int16(cadence.Weekday)
		return FrequencyWeekly, &day, nil
	case Monthly:
		day := int16(cadence.DayOfMonth)
		return FrequencyMonthly, nil, &day
	}
	return 0, nil, nil
}
