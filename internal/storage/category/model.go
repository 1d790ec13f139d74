package category

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Category represents a spending category record.
type Category struct {
	ID          uuid.UUID `db:"id"`
	HouseholdID uuid.UUID `db:"household_id"`
	Name        string    `db:"name"`
	CreatedAt   time.Time `db:"created_at"`
}

// CategoryCreate is the input for creating a new category.
type CategoryCreate struct {
	HouseholdID uuid.UUID
	Name        string
}

var columns = []any{"id", "household_id", "name", "created_at"}
