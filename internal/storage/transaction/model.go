package transaction

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money in from money out.
type TransactionType int8

const (
	TransactionTypeIncome TransactionType = iota
	TransactionTypeExpense
)

// Transaction represents a ledger transaction record. CategoryID is null
// for income transactions.
type Transaction struct {
	ID              uuid.UUID       `db:"id"`
	HouseholdID     uuid.UUID       `db:"household_id"`
	AccountID       uuid.UUID       `db:"account_id"`
	CategoryID      uuid.NullUUID   `db:"category_id"`
	Type            TransactionType `db:"type"`
	Amount          decimal.Decimal `db:"amount"`
	TransactionName string          `db:"transaction_name"`
	TransactionDate time.Time       `db:"transaction_date"`
	CreatedAt       time.Time       `db:"created_at"`
}

// TransactionCreate is the input for creating a new transaction.
type TransactionCreate struct {
	HouseholdID     uuid.UUID
	AccountID       uuid.UUID
	CategoryID      *uuid.UUID
	Type            TransactionType
	Amount          decimal.Decimal
	TransactionName string
	TransactionDate time.Time
}

// TransactionFilter specifies filters for listing transactions.
type TransactionFilter struct {
	AccountID       *uuid.UUID
	CategoryID      *uuid.UUID
	Limit           int
	Offset          int
	MaxCreationTime *time.Time
}

var columns = []any{
	"id", "household_id", "account_id", "category_id", "type",
	"amount", "transaction_name", "transaction_date", "created_at",
}
