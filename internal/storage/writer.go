package storage

import (
	"context"

	"github.com/stephenafamo/bob"

	"github.com/hearthledger/budget-server/internal/storage/account"
	"github.com/hearthledger/budget-server/internal/storage/category"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

type Writer struct {
	tx          bob.Tx
	Account     *account.Writer
	Category    *category.Writer
	Transaction *transaction.Writer
}

func NewWriter(tx bob.Tx) Writer {
	return Writer{
		tx:          tx,
		Account:     account.NewWriter(tx),
		Category:    category.NewWriter(tx),
		Transaction: transaction.NewWriter(tx),
	}
}

func (w *Writer) Commit() error {
	return w.tx.Commit(context.Background())
}

func (w *Writer) Rollback() error {
	return w.tx.Rollback(context.Background())
}
