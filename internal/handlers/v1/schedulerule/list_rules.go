package schedulerule

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/schedule"
)

// ListRulesInput is the Huma input for listing a household's rules.
type ListRulesInput struct {
	HouseholdID string `query:"householdID" required:"true" doc:"Household UUID"`
}

// ListRulesResponseBody is the response body for listing rules.
type ListRulesResponseBody struct {
	Rules []ScheduledRule `json:"rules" doc:"All rules of the household, oldest first"`
}

// ListRulesOutput is the Huma output for listing rules.
type ListRulesOutput struct {
	Body ListRulesResponseBody
}

// ruleLister is the interface for listing scheduled rules.
type ruleLister interface {
	ListRules(ctx context.Context, householdID uuid.UUID) ([]schedule.Rule, error)
}

// ListRulesHandler handles GET /v1/scheduled-rules.
type ListRulesHandler struct {
	RuleService ruleLister
}

// NewListRulesHandler creates a new ListRulesHandler.
func NewListRulesHandler(svc ruleLister) *ListRulesHandler {
	return &ListRulesHandler{RuleService: svc}
}

// Register registers the list rules endpoint with the Huma API.
func (h *ListRulesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-scheduled-rules",
		Method:      http.MethodGet,
		Path:        "/v1/scheduled-rules",
		Summary:     "List scheduled rules",
		Description: "Returns all of a household's recurring transaction rules.",
		Tags:        []string{"Scheduled Rules"},
	}, h.handle)
}

func (h *ListRulesHandler) handle(ctx context.Context, input *ListRulesInput) (*ListRulesOutput, error) {
	logData := logging.GetLogData(ctx)

	householdID, err := uuid.FromString(input.HouseholdID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid householdID", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listRulesMs")
	}
	rules, err := h.RuleService.ListRules(ctx, householdID)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to list rules", err)
	}

	if logData != nil {
		logData.AddData("ruleCount", len(rules))
	}

	resp := ListRulesResponseBody{
		Rules: make([]ScheduledRule, len(rules)),
	}
	for i, rule := range rules {
		resp.Rules[i] = toAPI(rule)
	}
	return &ListRulesOutput{Body: resp}, nil
}
