package service

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

const defaultLimit = 20

// transactionReader is the slice of transaction storage the service depends on.
type transactionReader interface {
	List(ctx context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error)
}

// TransactionService handles transaction business logic. Creation goes
// through the ledger so the account balance moves in the same storage
// transaction as the insert.
type TransactionService struct {
	reader transactionReader
	ledger ledger.Ledger
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(reader transactionReader, led ledger.Ledger) *TransactionService {
	return &TransactionService{reader: reader, ledger: led}
}

// CreateTransaction creates a new transaction and returns its ID.
func (s *TransactionService) CreateTransaction(ctx context.Context, tx Transaction) (uuid.UUID, error) {
	return s.ledger.CreateTransaction(ctx, ledger.Create{
		HouseholdID:     tx.HouseholdID,
		AccountID:       tx.AccountID,
		CategoryID:      tx.CategoryID,
		Type:            transaction.TransactionType(tx.Type),
		Amount:          tx.Amount,
		TransactionName: tx.TransactionName,
		TransactionDate: tx.TransactionDate,
	})
}

// ListTransactions returns a page of transactions using cursor-based pagination.
func (s *TransactionService) ListTransactions(ctx context.Context, cursor *TransactionCursor) ([]Transaction, *TransactionCursor, error) {
	limit := defaultLimit
	offset := 0
	var maxCreationTime *time.Time
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
		maxCreationTime = &cursor.MaxCreationTime
	}

	rows, err := s.reader.List(ctx, &transaction.TransactionFilter{
		Limit:           limit,
		Offset:          offset,
		MaxCreationTime: maxCreationTime,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	var nextCursor *TransactionCursor
	if len(rows) > limit {
		rows = rows[:limit]

		cursorMaxCreationTime := rows[0].CreatedAt
		if maxCreationTime != nil {
			cursorMaxCreationTime = *maxCreationTime
		}

		nextCursor = &TransactionCursor{
			Position:        offset + limit,
			Limit:           limit,
			MaxCreationTime: cursorMaxCreationTime,
		}
	}

	converted := make([]Transaction, len(rows))
	for i, row := range rows {
		converted[i] = transactionFromStorage(row)
	}
	return converted, nextCursor, nil
}
