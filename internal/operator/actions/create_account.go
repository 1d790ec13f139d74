package actions

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/storage"
	"github.com/hearthledger/budget-server/internal/storage/account"
)

type CreateAccount struct {
	HouseholdID     uuid.UUID
	Name            string
	Type            account.AccountType
	SubType         string
	StartingBalance decimal.Decimal

	// CreatedID is set on success.
	CreatedID uuid.UUID
}

func (a *CreateAccount) Perform(ctx context.Context, writer *storage.Writer) error {
	id, err := writer.Account.Create(ctx, &account.AccountCreate{
		HouseholdID:     a.HouseholdID,
		Name:            a.Name,
		Type:            a.Type,
		SubType:         a.SubType,
		StartingBalance: a.StartingBalance,
	})
	if err != nil {
		return err
	}
	a.CreatedID = id
	return nil
}
