package account

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

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From("accounts"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Account]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) List(ctx context.Context, filter *AccountFilter) (*AccountListResult, error) {
	limit := 20
	offset := 0
	queryMods := []bob.Mod[*dialect.SelectQuery]{
		sm.Columns(columns...),
		sm.From("accounts"),
		sm.OrderBy("name").Asc(),
		sm.OrderBy("id").Asc(),
	}
	if filter != nil {
		if filter.Limit > 0 {
			limit = filter.Limit
		}
		offset = filter.Offset
		if filter.HouseholdID != nil {
			queryMods = append(queryMods, sm.Where(psql.Quote("household_id").EQ(psql.Arg(*filter.HouseholdID))))
		}
	}
	queryMods = append(queryMods, sm.Limit(limit+1), sm.Offset(offset))

	rows, err := bob.All(ctx, r.exec, psql.Select(queryMods...), scan.StructMapper[Account]())
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return &AccountListResult{Accounts: nil, NextCursor: nil}, nil
	}

	var nextCursor *AccountCursor
	if len(rows) > limit {
		rows = rows[:limit]
		nextCursor = &AccountCursor{
			Position: offset + limit,
			Limit:    limit,
		}
	}

	result := make([]*Account, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return &AccountListResult{Accounts: result, NextCursor: nextCursor}, nil
}
