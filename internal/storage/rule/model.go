package rule

import (
	"database/sql"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/schedule"
)

// row mirrors the scheduled_transaction_rules table.
type row struct {
	ID            uuid.UUID       `db:"id"`
	HouseholdID   uuid.UUID       `db:"household_id"`
	CreatedBy     uuid.UUID       `db:"created_by"`
	AccountID     uuid.UUID       `db:"account_id"`
	CategoryID    uuid.NullUUID   `db:"category_id"`
	Type          int16           `db:"type"`
	Amount        decimal.Decimal `db:"amount"`
	Description   string          `db:"description"`
	FrequencyType int16           `db:"frequency_type"`
	DayOfWeek     sql.NullInt16   `db:"day_of_week"`
	DayOfMonth    sql.NullInt16   `db:"day_of_month"`
	StartDate     time.Time       `db:"start_date"`
	Status        int16           `db:"status"`
	LastRunDate   sql.NullTime    `db:"last_run_date"`
	FailureCount  int             `db:"failure_count"`
	LastError     sql.NullString  `db:"last_error"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// toDomain decodes a stored row into a schedule.Rule. A row whose cadence
// columns are inconsistent decodes with a nil Cadence instead of failing:
// the rule runner's defensive validation then records a permanent failure
// and pauses the rule, which is the required behavior for corrupt rows.
func (r row) toDomain() schedule.Rule {
	rule := schedule.Rule{
		ID:           r.ID,
		HouseholdID:  r.HouseholdID,
		CreatedBy:    r.CreatedBy,
		AccountID:    r.AccountID,
		Type:         schedule.TransactionType(r.Type),
		Amount:       r.Amount,
		Description:  r.Description,
		StartDate:    r.StartDate,
		Status:       schedule.RuleStatus(r.Status),
		FailureCount: r.FailureCount,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.CategoryID.Valid {
		categoryID := r.CategoryID.UUID
		rule.CategoryID = &categoryID
	}
	if r.LastRunDate.Valid {
		lastRun := r.LastRunDate.Time
		rule.LastRunDate = &lastRun
	}
	if r.LastError.Valid {
		lastError := r.LastError.String
		rule.LastError = &lastError
	}

	var dayOfWeek, dayOfMonth *int16
	if r.DayOfWeek.Valid {
		dayOfWeek = &r.DayOfWeek.Int16
	}
	if r.DayOfMonth.Valid {
		dayOfMonth = &r.DayOfMonth.Int16
	}
	if cadence, err := schedule.DecodeCadence(schedule.FrequencyType(r.FrequencyType), dayOfWeek, dayOfMonth); err == nil {
		rule.Cadence = cadence
	}

	return rule
}
