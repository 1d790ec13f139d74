package category

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

func (w *Writer) Create(ctx context.Context, create *CategoryCreate) (uuid.UUID, error) {
	query := psql.Insert(
		im.Into("categories", "household_id", "name"),
		im.Values(psql.Arg(create.HouseholdID, create.Name)),
		im.Returning("id"),
	)
	return bob.One(ctx, w.tx, query, scan.SingleColumnMapper[uuid.UUID])
}
