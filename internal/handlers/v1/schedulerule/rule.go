package schedulerule

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/hearthledger/budget-server/internal/schedule"
)

const dateLayout = "2006-01-02"

// ScheduledRule is the API response model for a scheduled transaction rule.
type ScheduledRule struct {
	ID           string `json:"id" doc:"Rule UUID"`
	HouseholdID  string `json:"householdID" doc:"Household UUID"`
	CreatedBy    string `json:"createdBy" doc:"Creating user UUID"`
	AccountID    string `json:"accountID" doc:"Target account UUID"`
	CategoryID   string `json:"categoryID,omitempty" doc:"Category UUID, absent for income rules"`
	Type         int    `json:"type" doc:"Transaction type: 0=income, 1=expense"`
	Amount       string `json:"amount" doc:"Decimal amount"`
	Description  string `json:"description" doc:"Description copied onto generated transactions"`
	Frequency    string `json:"frequency" doc:"weekly or monthly"`
	DayOfWeek    *int   `json:"dayOfWeek,omitempty" doc:"0=Sunday..6=Saturday, weekly rules only"`
	DayOfMonth   *int   `json:"dayOfMonth,omitempty" doc:"1-31, monthly rules only; clamped to shorter months"`
	StartDate    string `json:"startDate" doc:"First eligible date, YYYY-MM-DD"`
	Status       string `json:"status" doc:"active or paused"`
	LastRunDate  string `json:"lastRunDate,omitempty" doc:"Most recent generated occurrence date, YYYY-MM-DD"`
	FailureCount int    `json:"failureCount" doc:"Consecutive failures since the last success"`
	LastError    string `json:"lastError,omitempty" doc:"Most recent failure message"`
	CreatedAt    string `json:"createdAt" doc:"RFC3339 creation time"`
}

func toAPI(rule schedule.Rule) ScheduledRule {
	converted := ScheduledRule{
		ID:           rule.ID.String(),
		HouseholdID:  rule.HouseholdID.String(),
		CreatedBy:    rule.CreatedBy.String(),
		AccountID:    rule.AccountID.String(),
		Type:         int(rule.Type),
		Amount:       rule.Amount.String(),
		Description:  rule.Description,
		StartDate:    rule.StartDate.Format(dateLayout),
		FailureCount: rule.FailureCount,
		CreatedAt:    rule.CreatedAt.Format(time.RFC3339),
	}

	if rule.CategoryID != nil {
		converted.CategoryID = rule.CategoryID.String()
	}
	if rule.LastRunDate != nil {
		converted.LastRunDate = rule.LastRunDate.Format(dateLayout)
	}
	if rule.LastError != nil {
		converted.LastError = *rule.LastError
	}

	switch rule.Status {
	case schedule.RuleStatusPaused:
		converted.Status = "paused"
	default:
		converted.Status = "active"
	}

	switch cadence := rule.Cadence.(type) {
	case schedule.Weekly:
		converted.Frequency = "weekly"
		dayOfWeek := int(cadence.Weekday)
		converted.DayOfWeek = &dayOfWeek
	case schedule.Monthly:
		converted.Frequency = "monthly"
		dayOfMonth := cadence.DayOfMonth
		converted.DayOfMonth = &dayOfMonth
	}

	return converted
}

// parseCadence maps the frequency fields of a request body to the cadence
// union. The day field matching the frequency is required; the other must
// be absent, mirroring the storage constraint.
func parseCadence(frequency string, dayOfWeek, dayOfMonth *int) (schedule.Cadence, error) {
	switch frequency {
	case "weekly":
		if dayOfWeek == nil || dayOfMonth != nil {
			return nil, huma.NewError(http.StatusBadRequest, "weekly rules take dayOfWeek only")
		}
		return schedule.Weekly{Weekday: time.Weekday(*dayOfWeek)}, nil
	case "monthly":
		if dayOfMonth == nil || dayOfWeek != nil {
			return nil, huma.NewError(http.StatusBadRequest, "monthly rules take dayOfMonth only")
		}
		return schedule.Monthly{DayOfMonth: *dayOfMonth}, nil
	}
	return nil, huma.NewError(http.StatusBadRequest, "frequency must be weekly or monthly")
}
