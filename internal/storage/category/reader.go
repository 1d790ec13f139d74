package category

import (
	"context"

	"github.com/gofrs/uuid/v5"
	"github.com/stephenafamo/bob"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/scan"
)

type Reader struct {
	exec bob.Executor
}

func NewReader(exec bob.Executor) *Reader {
	return &Reader{exec: exec}
}

func (r *Reader) FindByID(ctx context.Context, id uuid.UUID) (*Category, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From("categories"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(id))),
	)
	row, err := bob.One(ctx, r.exec, query, scan.StructMapper[Category]())
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Reader) ListByHousehold(ctx context.Context, householdID uuid.UUID) ([]*Category, error) {
	query := psql.Select(
		sm.Columns(columns...),
		sm.From("categories"),
		sm.Where(psql.Quote("household_id").EQ(psql.Arg(householdID))),
		sm.OrderBy("name").Asc(),
	)
	rows, err := bob.All(ctx, r.exec, query, scan.StructMapper[Category]())
	if err != nil {
		return nil, err
	}
	result := make([]*Category, len(rows))
	for i := range rows {
		result[i] = &rows[i]
	}
	return result, nil
}
