package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/storage"
	"github.com/hearthledger/budget-server/internal/storage/category"
)

type CreateCategory struct {
	HouseholdID uuid.UUID
	Name        string

	// CreatedID is set on success.
	CreatedID uuid.UUID
}

func (a *CreateCategory) Perform(ctx context.Context, writer *storage.Writer) error {
	id, err := writer.Category.Create(ctx, &category.CategoryCreate{
		HouseholdID: a.HouseholdID,
		Name:        a.Name,
	})
	if err != nil {
		return err
	}
	a.CreatedID = id
	return nil
}
