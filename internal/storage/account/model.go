package account

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
)

type AccountType int8

const (
	AccountTypeCash AccountType = iota
	AccountTypeCreditCards
	AccountTypeInvestments
	AccountTypeLoans
	AccountTypeAssets
)

// Account represents an account record.
type Account struct {
	ID              uuid.UUID       `db:"id"`
	HouseholdID     uuid.UUID       `db:"household_id"`
	Name            string          `db:"name"`
	Type            AccountType     `db:"type"`
	SubType         string          `db:"sub_type"`
	Balance         decimal.Decimal `db:"balance"`
	StartingBalance decimal.Decimal `db:"starting_balance"`
	CreatedAt       time.Time       `db:"created_at"`
}

// AccountCreate is the input for creating a new account.
type AccountCreate struct {
	HouseholdID     uuid.UUID
	Name            string
	Type            AccountType
	SubType         string
	StartingBalance decimal.Decimal
}

// AccountFilter specifies filters for listing accounts.
type AccountFilter struct {
	HouseholdID *uuid.UUID
	Limit       int
	Offset      int
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

// AccountListResult contains a page of accounts and an optional next cursor.
type AccountListResult struct {
	Accounts   []*Account
	NextCursor *AccountCursor
}

var columns = []any{
	"id", "household_id", "name", "type", "sub_type",
	"balance", "starting_balance", "created_at",
}
