package transaction

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dialect"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From("transactions"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Transaction]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns transactions matching the filter, newest first. Nil filter
// returns the newest page of everything.
func (r *Reader) List(ctx context.Context, filter *TransactionFilter) ([]*Transaction, error) {
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From("transactions"),
	}
	if filter != nil {
		if filter.AccountID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("account_id").EQ(psql.Arg(*filter.AccountID))))
		}
		if filter.CategoryID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("category_id").EQ(psql.Arg(*filter.CategoryID))))
		}
		if filter.MaxCreationTime != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("created_at").LTE(psql.Arg(*filter.MaxCreationTime))))
		}
		if filter.Limit > 0 {
			queryMods = append(queryMods, sm.Limit(filter.Limit+1))
		}
		if filter.Offset > 0 {
			queryMods = append(queryMods, sm.Offset(filter.Offset))
		}
	}
	queryMods = append(queryMods,
		sm.OrderBy("created_at").Desc(),
		sm.OrderBy("id").Desc(),
	)

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Transaction]())
	if err != nil {
		return nil, err
	}
	result := make([]*Transaction, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
