package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/im"
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

func (w *Writer) Insert(ctx context.Context, create *TransactionCreate) (uuid.UUID, error) {
	var categoryID uuid.NullUUID
	if create.CategoryID != nil {
		categoryID = uuid.NullUUID{UUID: *create.CategoryID, Valid: true}
	}

	query := psql.Insert(
		im.Into("transactions",
			"household_id", "account_id", "category_id", "type",
			"amount", "transaction_name", "transaction_date"),
		im.Values(psql.Arg(
			create.HouseholdID, create.AccountID, categoryID, int16(create.Type),
			create.Amount, create.TransactionName, create.TransactionDate)),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, query, scan.SingleColumnMapper[uuid.UUID])
}
