package account

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/stephenafamo/scan"
)

type Writer struct {
	tx bob.Tx
	Reader
}

func NewWriter(tx bob.Tx) *Writer {
	return &Writer{
		tx: tx,
		Reader: Reader{
			exec: tx,
		},
	}
}

// FindByIDForUpdate loads an account under a row lock held for the rest of
// the transaction.
func (w *Writer) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From("accounts"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
		sm.ForUpdate(),
	)
	row, err := bob.One(ctx, w.tx, query, scan.StructMapper[Account]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (w *Writer) Create(ctx context.Context, create *AccountCreate) (uuid.UUID, error) {
	query := psql.Insert(
		im.Into("accounts",
			"household_id", "name", "type", "sub_type", "balance", "starting_balance"),
		im.Values(psql.Arg(
			create.HouseholdID, create.Name, int16(create.Type), create.SubType,
			create.StartingBalance, create.StartingBalance)),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, query, scan.SingleColumnMapper[uuid.UUID])
}

func (w *Writer) UpdateBalance(ctx context.Context, id uuid.UUID, balance decimal.Decimal) error {
	query := psql.Update(
		um.Table("accounts"),
		um.SetCol("balance").ToArg(balance),
		um.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	_, err := bob.Exec(ctx, w.tx, query)
	return err
}
