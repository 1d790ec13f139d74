package category

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/service"
)

// ListCategoriesInput is the Huma input for listing a household's categories.
type ListCategoriesInput struct {
	HouseholdID string `query:"householdID" required:"true" doc:"Household UUID"`
}

// ListCategoriesResponseBody is the response body for listing categories.
type ListCategoriesResponseBody struct {
	Categories []Category `json:"categories" doc:"All categories of the household, ordered by name"`
}

// ListCategoriesOutput is the Huma output for listing categories.
type ListCategoriesOutput struct {
	Body ListCategoriesResponseBody
}

// categoryLister is the interface for listing categories.
type categoryLister interface {
	ListCategories(ctx context.Context, householdID uuid.UUID) ([]service.Category, error)
}

// ListCategoriesHandler handles GET /v1/categories.
type ListCategoriesHandler struct {
	CategoryService categoryLister
}

// NewListCategoriesHandler creates a new ListCategoriesHandler.
func NewListCategoriesHandler(svc categoryLister) *ListCategoriesHandler {
	return &ListCategoriesHandler{CategoryService: svc}
}

// Register registers the list categories endpoint with the Huma API.
func (h *ListCategoriesHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/v1/categories",
		Summary:     "List categories",
		Description: "Returns all of a household's spending categories.",
		Tags:        []string{"Categories"},
	}, h.handle)
}

func (h *ListCategoriesHandler) handle(ctx context.Context, input *ListCategoriesInput) (*ListCategoriesOutput, error) {
	logData := logging.GetLogData(ctx)

	householdID, err := uuid.FromString(input.HouseholdID)
	if err != nil {
		return nil, huma.NewError(http.StatusBadRequest, "invalid householdID", err)
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("listCategoriesMs")
	}
	categories, err := h.CategoryService.ListCategories(ctx, householdID)
	if stopTimer != nil {
		stopTimer()
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to list categories", err)
	}

	resp := ListCategoriesResponseBody{
		Categories: make([]Category, len(categories)),
	}
	for i, cat := range categories {
		resp.Categories[i] = Category{
			ID:          cat.ID.String(),
			HouseholdID: cat.HouseholdID.String(),
			Name:        cat.Name,
			CreatedAt:   cat.CreatedAt.Format(time.RFC3339),
		}
	}

	return &ListCategoriesOutput{Body: resp}, nil
}
