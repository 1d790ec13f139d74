package transaction

// Transaction is the API response model for a transaction.
// It is used only for responses, not for request bodies.
type Transaction struct {
	ID              string `json:"id" doc:"Transaction UUID"`
	HouseholdID     string `json:"householdID" doc:"Household UUID"`
	AccountID       string `json:"accountID" doc:"Account UUID"`
	CategoryID      string `json:"categoryID,omitempty" doc:"Category UUID, absent for income"`
	Type            int    `json:"type" doc:"Transaction type: 0=income, 1=expense"`
	Amount          string `json:"amount" doc:"Decimal amount"`
	TransactionName string `json:"transactionName" doc:"Name of the transaction"`
	TransactionDate string `json:"transactionDate" doc:"RFC3339 transaction date"`
	CreatedAt       string `json:"createdAt" doc:"RFC3339 creation time"`
}
