package schedulerule

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
)

// LifecycleInput is the Huma input for pausing or resuming a rule.
type LifecycleInput struct {
	ID string `path:"id" doc:"Rule UUID"`
}

// LifecycleOutput is the Huma output for pausing or resuming a rule.
type LifecycleOutput struct {
	Status int
}

// ruleLifecycle is the interface for pausing and resuming scheduled rules.
type ruleLifecycle interface {
	PauseRule(ctx context.Context, id uuid.UUID) error
	ResumeRule(ctx context.Context, id uuid.UUID) error
}

// LifecycleHandler handles POST /v1/scheduled-rule/{id}/pause and
// POST /v1/scheduled-rule/{id}/resume.
type LifecycleHandler struct {
	RuleService ruleLifecycle
}

// NewLifecycleHandler creates a new LifecycleHandler.
func NewLifecycleHandler(svc ruleLifecycle) *LifecycleHandler {
	return &LifecycleHandler{RuleService: svc}
}

// Register registers the pause and resume endpoints with the Huma API.
func (h *LifecycleHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "pause-scheduled-rule",
		Method:      http.MethodPost,
		Path:        "/v1/scheduled-rule/{id}/pause",
		Summary:     "Pause a scheduled rule",
		Description: "Stops occurrence generation until the rule is resumed.",
		Tags:        []string{"Scheduled Rules"},
	}, h.pause)
	huma.Register(api, huma.Operation{
		OperationID: "resume-scheduled-rule",
		Method:      http.MethodPost,
		Path:        "/v1/scheduled-rule/{id}/resume",
		Summary:     "Resume a scheduled rule",
		Description: "Reactivates a paused rule with a fresh failure count. Generation continues after the last materialized occurrence; occurrences due while paused follow the catch-up policy.",
		Tags:        []string{"Scheduled Rules"},
	}, h.resume)
}

func (h *LifecycleHandler) pause(ctx context.Context, input *LifecycleInput) (*LifecycleOutput, error) {
	return h.setStatus(ctx, input, h.RuleService.PauseRule)
}

func (h *LifecycleHandler) resume(ctx context.Context, input *LifecycleInput) (*LifecycleOutput, error) {
	return h.setStatus(ctx, input, h.RuleService.ResumeRule)
}

func (h *LifecycleHandler) setStatus(ctx context.Context, input *LifecycleInput, apply func(context.Context, uuid.UUID) error) (*LifecycleOutput, error) {
	id, err := uuid.FromString(input.ID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid rule id", err)
	}

	err = apply(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, huma.NewError(http.StatusNotFound, "rule not found")
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to update rule status", err)
	}

	return &LifecycleOutput{Status: http.StatusNoContent}, nil
}
