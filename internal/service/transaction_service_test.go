package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

type mockLedger struct {
	mock.Mock
}

func (m *mockLedger) CreateTransaction(ctx context.Context, create ledger.Create) (uuid.UUID, error) {
	args := m.Called(ctx, create)
	id, _ := args.Get(0).(uuid.UUID)
	return id, args.Error(1)
}

type mockTransactionReader struct {
	mock.Mock
}

func (m *mockTransactionReader) List(ctx context.Context, filter *transaction.TransactionFilter) ([]*transaction.Transaction, error) {
	args := m.Called(ctx, filter)
	rows, _ := args.Get(0).([]*transaction.Transaction)
	return rows, args.Error(1)
}

// -- CreateTransaction tests --

func TestCreateTransaction_RoutesThroughLedger(t *testing.T) {
	accountID := uuid.Must(uuid.NewV4())
	categoryID := uuid.Must(uuid.NewV4())
	amount := decimal.RequireFromString("42.50")
	txDate := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expectedID := uuid.Must(uuid.NewV4())

	mockLed := new(mockLedger)
	mockLed.On("CreateTransaction", mock.Anything, mock.MatchedBy(func(c ledger.Create) bool {
		return c.AccountID == accountID &&
			c.CategoryID != nil && *c.CategoryID == categoryID &&
			c.Type == transaction.TransactionTypeExpense &&
			c.Amount.Equal(amount) &&
			c.TransactionName == "Groceries" &&
			c.TransactionDate.Equal(txDate)
	})).Return(expectedID, nil)

	svc := NewTransactionService(new(mockTransactionReader), mockLed)
	id, err := svc.CreateTransaction(context.Background(), Transaction{
		AccountID:       accountID,
		CategoryID:      &categoryID,
		Type:            TransactionTypeExpense,
		Amount:          amount,
		TransactionName: "Groceries",
		TransactionDate: txDate,
	})

	assert.NoError(t, err)
	assert.Equal(t, expectedID, id)
	mockLed.AssertExpectations(t)
}

func TestCreateTransaction_LedgerError(t *testing.T) {
	mockLed := new(mockLedger)
	mockLed.On("CreateTransaction", mock.Anything, mock.Anything).
		Return(uuid.Nil, ledger.ErrAccountNotFound)

	svc := NewTransactionService(new(mockTransactionReader), mockLed)
	id, err := svc.CreateTransaction(context.Background(), Transaction{
		AccountID:       uuid.Must(uuid.NewV4()),
		Amount:          decimal.RequireFromString("10.00"),
		TransactionName: "Test",
	})

	assert.ErrorIs(t, err, ledger.ErrAccountNotFound)
	assert.Equal(t, uuid.Nil, id)
}

// -- ListTransactions tests --

func makeStorageRows(n int, createdAt time.Time) []*transaction.Transaction {
	rows := make([]*transaction.Transaction, n)
	for i := range rows {
		rows[i] = &transaction.Transaction{
			ID:              uuid.Must(uuid.NewV4()),
			HouseholdID:     uuid.Must(uuid.NewV4()),
			AccountID:       uuid.Must(uuid.NewV4()),
			Amount:          decimal.RequireFromString("5.00"),
			TransactionName: "Item",
			TransactionDate: createdAt,
			CreatedAt:       createdAt,
		}
	}
	return rows
}

func TestListTransactions_NoResults(t *testing.T) {
	mockReader := new(mockTransactionReader)
	mockReader.On("List", mock.Anything, mock.Anything).
		Return([]*transaction.Transaction{}, nil)

	svc := NewTransactionService(mockReader, new(mockLedger))
	txs, nextCursor, err := svc.ListTransactions(context.Background(), nil)

	assert.NoError(t, err)
	assert.Nil(t, txs)
	assert.Nil(t, nextCursor)
}

func TestListTransactions_SinglePage(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	rows := makeStorageRows(2, now)

	mockReader := new(mockTransactionReader)
	mockReader.On("List", mock.Anything, mock.MatchedBy(func(f *transaction.TransactionFilter) bool {
		return f.Limit == defaultLimit && f.Offset == 0 && f.MaxCreationTime == nil
	})).Return(rows, nil)

	svc := NewTransactionService(mockReader, new(mockLedger))
	txs, nextCursor, err := svc.ListTransactions(context.Background(), nil)

	assert.NoError(t, err)
	assert.Len(t, txs, 2)
	assert.Nil(t, nextCursor)
	assert.Equal(t, rows[0].ID, txs[0].ID)
	assert.Nil(t, txs[0].CategoryID, "null category stays nil in the service model")
}

func TestListTransactions_HasNextPage(t *testing.T) {
	now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
	rows := makeStorageRows(defaultLimit+1, now)

	mockReader := new(mockTransactionReader)
	mockReader.On("List", mock.Anything, mock.Anything).Return(rows, nil)

	svc := NewTransactionService(mockReader, new(mockLedger))
	txs, nextCursor, err := svc.ListTransactions(context.Background(), nil)

	assert.NoError(t, err)
	assert.Len(t, txs, defaultLimit, "truncated to default limit")

	assert.NotNil(t, nextCursor)
	assert.Equal(t, defaultLimit, nextCursor.Position)
	assert.Equal(t, defaultLimit, nextCursor.Limit)
	assert.Equal(t, now, nextCursor.MaxCreationTime, "derived from first row")
}

func TestListTransactions_WithCursor(t *testing.T) {
	cursorTime := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	rowTime := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	rows := makeStorageRows(3, rowTime) // limit=2, returns 3 so a next page exists

	mockReader := new(mockTransactionReader)
	mockReader.On("List", mock.Anything, mock.MatchedBy(func(f *transaction.TransactionFilter) bool {
		return f.Limit == 2 &&
			f.Offset == 20 &&
			f.MaxCreationTime != nil &&
			f.MaxCreationTime.Equal(cursorTime)
	})).Return(rows, nil)

	svc := NewTransactionService(mockReader, new(mockLedger))
	txs, nextCursor, err := svc.ListTransactions(context.Background(), &TransactionCursor{
		Position:        20,
		Limit:           2,
		MaxCreationTime: cursorTime,
	})

	assert.NoError(t, err)
	assert.Len(t, txs, 2)

	assert.NotNil(t, nextCursor)
	assert.Equal(t, 22, nextCursor.Position)
	assert.Equal(t, 2, nextCursor.Limit)
	assert.Equal(t, cursorTime, nextCursor.MaxCreationTime, "echoed from cursor, not overridden by row data")
}

func TestListTransactions_StorageError(t *testing.T) {
	mockReader := new(mockTransactionReader)
	mockReader.On("List", mock.Anything, mock.Anything).
		Return(nil, errors.New("database unavailable"))

	svc := NewTransactionService(mockReader, new(mockLedger))
	txs, nextCursor, err := svc.ListTransactions(context.Background(), nil)

	assert.Error(t, err)
	assert.Nil(t, txs)
	assert.Nil(t, nextCursor)
}
