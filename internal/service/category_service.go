package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/operator/actions"
	"github.com/hearthledger/budget-server/internal/storage/category"
)

// Category represents a spending category in the service layer.
type Category struct {
	ID          uuid.UUID
	HouseholdID uuid.UUID
	Name        string
	CreatedAt   time.Time
}

// categoryReader is the slice of category storage the service depends on.
type categoryReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*category.Category, error)
	ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*category.Category, error)
}

// CategoryService handles category business logic.
type CategoryService struct {
	reader   categoryReader
	operator actionProcessor
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(reader categoryReader, op actionProcessor) *CategoryService {
	return &CategoryService{reader: reader, operator: op}
}

// CreateCategory creates a new category and returns its ID.
func (s *CategoryService) CreateCategory(ctx context.Context, cat Category) (uuid.UUID, error) {
	action := &actions.CreateCategory{
		HouseholdID: cat.HouseholdID,
		Name:        cat.Name,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return uuid.Nil, err
	}
	return action.CreatedID, nil
}

// ListCategories returns all of a household's categories ordered by name.
func (s *CategoryService) ListCategories(ctx context.Context, householdID uuid.UUID) ([]Category, error) {
	rows, err := s.reader.ListByHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	converted := make([]Category, len(rows))
	for i, row := range rows {
		converted[i] = Category{
			ID:          row.ID,
			HouseholdID: row.HouseholdID,
			Name:        row.Name,
			CreatedAt:   row.CreatedAt,
		}
	}
	return converted, nil
}
