package category

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/service"
)

// CreateCategoryInput is the Huma input for creating a category.
type CreateCategoryInput struct {
	Body CreateCategoryBody
}

// CreateCategoryBody is the request body fields for creating a category.
type CreateCategoryBody struct {
	HouseholdID string `json:"householdID" required:"true" doc:"Household UUID"`
	Name        string `json:"name" minLength:"1" doc:"Category name"`
}

// CreateCategoryResponse is the response body for creating a category.
type CreateCategoryResponse struct {
	ID string `json:"id" doc:"Created category UUID"`
}

// CreateCategoryOutput is the response for creating a category.
type CreateCategoryOutput struct {
	Status int
	Body   CreateCategoryResponse
}

// categoryCreator is the interface for creating categories.
type categoryCreator interface {
	CreateCategory(ctx context.Context, category service.Category) (uuid.UUID, error)
}

// CreateCategoryHandler handles POST /v1/category.
type CreateCategoryHandler struct {
	CategoryService categoryCreator
}

// NewCreateCategoryHandler creates a new CreateCategoryHandler.
func NewCreateCategoryHandler(svc categoryCreator) *CreateCategoryHandler {
	return &CreateCategoryHandler{CategoryService: svc}
}

// Register registers the create category endpoint with the Huma API.
func (h *CreateCategoryHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-category",
		Method:      http.MethodPost,
		Path:        "/v1/category",
		Summary:     "Create a category",
		Description: "Creates a new spending category for a household.",
		Tags:        []string{"Categories"},
	}, h.handle)
}

func (h *CreateCategoryHandler) handle(ctx context.Context, input *CreateCategoryInput) (*CreateCategoryOutput, error) {
	logData := logging.GetLogData(ctx)

	householdID, err := uuid.FromString(input.Body.HouseholdID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid householdID", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createCategoryMs")
	}
	id, err := h.CategoryService.CreateCategory(ctx, service.Category{
		HouseholdID: householdID,
		Name:        input.Body.Name,
	})
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to create category", err)
	}

	if logData != nil {
		logData.AddData("categoryID", id.String())
	}

	return &CreateCategoryOutput{
		Status: http.StatusCreated,
		Body:   CreateCategoryResponse{ID: id.String()},
	}, nil
}
