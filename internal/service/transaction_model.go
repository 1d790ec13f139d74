package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

// TransactionType distinguishes money in from money out in the service layer.
type TransactionType int8

const (
	TransactionTypeIncome TransactionType = iota
	TransactionTypeExpense
)

// Transaction represents a transaction in the service layer. CategoryID is
// nil for income transactions.
type Transaction struct {
	ID              uuid.UUID
	HouseholdID     uuid.UUID
	AccountID       uuid.UUID
	CategoryID      *uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal
	TransactionName string
	TransactionDate time.Time
	CreatedAt       time.Time
}

// TransactionCursor identifies a position in a paginated result set
// and carries the limit and maxCreationTime so subsequent pages are consistent.
type TransactionCursor struct {
	Position        int
	Limit           int
	MaxCreationTime time.Time
}

func transactionFromStorage(row *transaction.Transaction) Transaction {
	converted := Transaction{
		ID:              row.ID,
		HouseholdID:     row.HouseholdID,
		AccountID:       row.AccountID,
		Type:            TransactionType(row.Type),
		Amount:          row.Amount,
		TransactionName: row.TransactionName,
		TransactionDate: row.TransactionDate,
		CreatedAt:       row.CreatedAt,
	}
	if row.CategoryID.Valid {
		categoryID := row.CategoryID.UUID
		converted.CategoryID = &categoryID
	}
	return converted
}
