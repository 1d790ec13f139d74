package schedulerule

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/schedule"
)

// GetRuleInput is the Huma input for fetching one rule.
type GetRuleInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// GetRuleOutput is the Huma output for fetching one rule.
type GetRuleOutput struct {
	Body ScheduledRule
}

// ruleGetter is the interface for fetching scheduled rules.
type ruleGetter interface {
	GetRule(ctx context.Context, id uuid.UUID) (*schedule.Rule, error)
}

// GetRuleHandler handles GET /v1/scheduled-rule/{id}.
type GetRuleHandler struct {
	RuleService ruleGetter
}

// NewGetRuleHandler creates a new GetRuleHandler.
func NewGetRuleHandler(svc ruleGetter) *GetRuleHandler {
	return &GetRuleHandler{RuleService: svc}
}

// Register registers the get rule endpoint with the Huma API.
func (h *GetRuleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-scheduled-rule",
		Method:      http.MethodGet,
		Path:        "/v1/scheduled-rule/{id}",
		Summary:     "Get a scheduled rule",
		Description: "Returns one recurring transaction rule including its run state.",
		Tags:        []string{"Scheduled Rules"},
	}, h.handle)
}

func (h *GetRuleHandler) handle(ctx context.Context, input *GetRuleInput) (*GetRuleOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid rule id", err)
	}

	rule, err := h.RuleService.GetRule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, huma.NewError(http.StatusNotFound, "rule not found")
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to get rule", err)
	}

	return &GetRuleOutput{Body: toAPI(*rule)}, nil
}
