package category

// Category is the API response model for a category.
type Category struct {
	ID          string `json:"id" doc:"Category UUID"`
	HouseholdID string `json:"householdID" doc:"Household UUID"`
	Name        string `json:"name" doc:"Category name"`
	CreatedAt   string `json:"createdAt" doc:"RFC3339 creation time"`
}
