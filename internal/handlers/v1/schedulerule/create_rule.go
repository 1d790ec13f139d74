package schedulerule

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/schedule"
)

// CreateRuleBody is the request body for creating a scheduled rule.
type CreateRuleBody struct {
	HouseholdID string `json:"householdID" required:"true" doc:"Household UUID"`
	CreatedBy   string `json:"createdBy" required:"true" doc:"Creating user UUID"`
	AccountID   string `json:"accountID" required:"true" doc:"Target account UUID"`
	CategoryID  string `json:"categoryID,omitempty" doc:"Category UUID, required for expenses, forbidden for income"`
	Type        int    `json:"type" minimum:"0" maximum:"1" doc:"Transaction type: 0=income, 1=expense"`
	Amount      string `json:"amount" required:"true" doc:"Decimal amount, must be positive"`
	Description string `json:"description" minLength:"1" doc:"Description copied onto generated transactions"`
	Frequency   string `json:"frequency" required:"true" doc:"weekly or monthly"`
	DayOfWeek   *int   `json:"dayOfWeek,omitempty" minimum:"0" maximum:"6" doc:"0=Sunday..6=Saturday, weekly rules only"`
	DayOfMonth  *int   `json:"dayOfMonth,omitempty" minimum:"1" maximum:"31" doc:"1-31, monthly rules only"`
	StartDate   string `json:"startDate" required:"true" doc:"First eligible date, YYYY-MM-DD"`
}

// CreateRuleInput is the Huma input for creating a scheduled rule.
type CreateRuleInput struct {
	Body CreateRuleBody
}

// CreateRuleResponse is the response body for creating a scheduled rule.
type CreateRuleResponse struct {
	ID string `json:"id" doc:"Created rule UUID"`
}

// CreateRuleOutput is the Huma output for creating a scheduled rule.
type CreateRuleOutput struct {
	Status int
	Body   CreateRuleResponse
}

// ruleCreator is the interface for creating scheduled rules.
type ruleCreator interface {
	CreateRule(ctx context.Context, rule schedule.Rule) (uuid.UUID, error)
}

// CreateRuleHandler handles POST /v1/scheduled-rule.
type CreateRuleHandler struct {
	RuleService ruleCreator
}

// NewCreateRuleHandler creates a new CreateRuleHandler.
func NewCreateRuleHandler(svc ruleCreator) *CreateRuleHandler {
	return &CreateRuleHandler{RuleService: svc}
}

// Register registers the create rule endpoint with the Huma API.
func (h *CreateRuleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-scheduled-rule",
		Method:      http.MethodPost,
		Path:        "/v1/scheduled-rule",
		Summary:     "Create a scheduled rule",
		Description: "Creates a recurring transaction rule. New rules start active.",
		Tags:        []string{"Scheduled Rules"},
	}, h.handle)
}

func parseCreateRuleInput(input *CreateRuleInput) (schedule.Rule, error) {
	householdID, err := uuid.FromString(input.Body.HouseholdID)
	if err != nil {
		return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid householdID", err)
	}
	createdBy, err := uuid.FromString(input.Body.CreatedBy)
	if err != nil {
		return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid createdBy", err)
	}
	accountID, err := uuid.FromString(input.Body.AccountID)
	if err != nil {
		return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid accountID", err)
	}

	var categoryID *uuid.UUID
	if input.Body.CategoryID != "" {
		parsed, err := uuid.FromString(input.Body.CategoryID)
		if err != nil {
			return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid categoryID", err)
		}
		categoryID = &parsed
	}

	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	cadence, err := parseCadence(input.Body.Frequency, input.Body.DayOfWeek, input.Body.DayOfMonth)
	if err != nil {
		return schedule.Rule{}, err
	}

	startDate, err := time.ParseInLocation(dateLayout, input.Body.StartDate, time.UTC)
	if err != nil {
		return schedule.Rule{}, huma.NewError(http.StatusBadRequest, "invalid startDate, want YYYY-MM-DD", err)
	}

	return schedule.Rule{
		HouseholdID: householdID,
		CreatedBy:   createdBy,
		AccountID:   accountID,
		CategoryID:  categoryID,
		Type:        schedule.TransactionType(input.Body.Type),
		Amount:      amount,
		Description: input.Body.Description,
		Cadence:     cadence,
		StartDate:   startDate,
	}, nil
}

func (h *CreateRuleHandler) handle(ctx context.Context, input *CreateRuleInput) (*CreateRuleOutput, error) {
	logData := logging.GetLogData(ctx)

	rule, err := parseCreateRuleInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createRuleMs")
	}
	id, err := h.RuleService.CreateRule(ctx, rule)
	if stopTimer != nil {
		stopTimer()
	}
	if errors.Is(err, schedule.ErrInvalidRule) {
		return nil, huma.NewError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to create rule", err)
	}

	if logData != nil {
		logData.AddData("ruleID", id.String())
	}

	return &CreateRuleOutput{
		Status: http.StatusCreated,
		Body:   CreateRuleResponse{ID: id.String()},
	}, nil
}
