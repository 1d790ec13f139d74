// Package ledger is the transaction-creation collaborator: it materializes
// a transaction and adjusts the target account's balance inside a single
// storage transaction. Both the REST surface and the recurring scheduler
// create transactions through it.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/operator"
	"github.com/hearthledger/budget-server/internal/storage"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrCategoryNotFound = errors.New("category not found")
)

// IsPermanent reports whether a creation failure cannot succeed on retry
// with the same inputs. Everything else is treated as transient.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrAccountNotFound) || errors.Is(err, ErrCategoryNotFound)
}

// Create is the input for materializing one transaction.
type Create struct {
	HouseholdID     uuid.UUID
	AccountID       uuid.UUID
	CategoryID      *uuid.UUID
	Type            transaction.TransactionType
	Amount          decimal.Decimal
	TransactionName string
	TransactionDate time.Time
}

// Ledger is the contract the scheduler and handlers consume.
type Ledger interface {
	CreateTransaction(ctx context.Context, create Create) (uuid.UUID, error)
}

// OperatorLedger routes transaction creation through the operator queue so
// all ledger writes share its serialized transaction handling.
type OperatorLedger struct {
	operator *operator.OperatorDelegator
}

var _ Ledger = (*OperatorLedger)(nil)

func NewOperatorLedger(op *operator.OperatorDelegator) *OperatorLedger {
	return &OperatorLedger{operator: op}
}

func (l *OperatorLedger) CreateTransaction(ctx context.Context, create Create) (uuid.UUID, error) {
	action := &createTransactionAction{create: create}
	if err := l.operator.Process(ctx, action); err != nil {
		return uuid.Nil, err
	}
	return action.createdID, nil
}

type createTransactionAction struct {
	create    Create
	createdID uuid.UUID
}

func (a *createTransactionAction) Perform(ctx context.Context, writer *storage.Writer) error {
	account, err := writer.Account.FindByIDForUpdate(ctx, a.create.AccountID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAccountNotFound
	}
	if err != nil {
		return err
	}

	if a.create.CategoryID != nil {
		if _, err := writer.Category.FindByID(ctx, *a.create.CategoryID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrCategoryNotFound
			}
			return err
		}
	}

	id, err := writer.Transaction.Insert(ctx, &transaction.TransactionCreate{
		HouseholdID:     a.create.HouseholdID,
		AccountID:       a.create.AccountID,
		CategoryID:      a.create.CategoryID,
		Type:            a.create.Type,
		Amount:          a.create.Amount,
		TransactionName: a.create.TransactionName,
		TransactionDate: a.create.TransactionDate,
	})
	if err != nil {
		return err
	}
	a.createdID = id

	delta := a.create.Amount
	if a.create.Type == transaction.TransactionTypeExpense {
		delta = delta.Neg()
	}
	return writer.Account.UpdateBalance(ctx, account.ID, account.Balance.Add(delta))
}
