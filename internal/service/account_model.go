package service

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/storage/account"
)

// AccountType represents an account type in the service layer.
type AccountType int8

const (
	AccountTypeCash AccountType = iota
	AccountTypeCreditCards
	AccountTypeInvestments
	AccountTypeLoans
	AccountTypeAssets
)

// Account represents an account in the service layer.
type Account struct {
	ID              uuid.UUID
	HouseholdID     uuid.UUID
	Name            string
	Type            AccountType
	SubType         string
	Balance         decimal.Decimal
	StartingBalance decimal.Decimal
	CreatedAt       time.Time
}

// AccountCursor identifies a position in a paginated result set.
type AccountCursor struct {
	Position int
	Limit    int
}

func accountTypeToStorage(t AccountType) account.AccountType {
	return account.AccountType(t)
}

func accountFromStorage(row *account.Account) Account {
	return Account{
		ID:              row.ID,
		HouseholdID:     row.HouseholdID,
		Name:            row.Name,
		Type:            AccountType(row.Type),
		SubType:         row.SubType,
		Balance:         row.Balance,
		StartingBalance: row.StartingBalance,
		CreatedAt:       row.CreatedAt,
	}
}
