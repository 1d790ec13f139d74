package schedulerule

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
)

// DeleteRuleInput is the Huma input for deleting a rule.
type DeleteRuleInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// DeleteRuleOutput is the Huma output for deleting a rule.
type DeleteRuleOutput struct {
	Status int
}

// ruleDeleter is the interface for deleting scheduled rules.
type ruleDeleter interface {
	DeleteRule(ctx context.Context, id uuid.UUID) error
}

// DeleteRuleHandler handles DELETE /v1/scheduled-rule/{id}.
type DeleteRuleHandler struct {
	RuleService ruleDeleter
}

// NewDeleteRuleHandler creates a new DeleteRuleHandler.
func NewDeleteRuleHandler(svc ruleDeleter) *DeleteRuleHandler {
	return &DeleteRuleHandler{RuleService: svc}
}

// Register registers the delete rule endpoint with the Huma API.
func (h *DeleteRuleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "delete-scheduled-rule",
		Method:      http.MethodDelete,
		Path:        "/v1/scheduled-rule/{id}",
		Summary:     "Delete a scheduled rule",
		Description: "Deletes a rule permanently. Already generated transactions are kept.",
		Tags:        []string{"Scheduled Rules"},
	}, h.handle)
}

func (h *DeleteRuleHandler) handle(ctx context.Context, input *DeleteRuleInput) (*DeleteRuleOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid rule id", err)
	}

	err = h.RuleService.DeleteRule(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, huma.NewError(http.StatusNotFound, "rule not found")
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to delete rule", err)
	}

	return &DeleteRuleOutput{Status: http.StatusNoContent}, nil
}
