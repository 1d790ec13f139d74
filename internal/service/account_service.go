package service

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/operator/actions"
	"github.com/hearthledger/budget-server/internal/storage/account"
)

const defaultAccountLimit = 20

// actionProcessor is the slice of the operator the write paths depend on.
type actionProcessor interface {
	Process(ctx context.Context, action actions.IAction) error
}

// accountReader is the slice of account storage the service depends on.
type accountReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	List(ctx context.Context, filter *account.AccountFilter) (*account.AccountListResult, error)
}

// AccountService handles account business logic.
type AccountService struct {
	reader   accountReader
	operator actionProcessor
}

// NewAccountService creates a new AccountService.
func NewAccountService(reader accountReader, op actionProcessor) *AccountService {
	return &AccountService{reader: reader, operator: op}
}

// CreateAccount creates a new account and returns its ID.
func (s *AccountService) CreateAccount(ctx context.Context, acc Account) (uuid.UUID, error) {
	action := &actions.CreateAccount{
		HouseholdID:     acc.HouseholdID,
		Name:            acc.Name,
		Type:            accountTypeToStorage(acc.Type),
		SubType:         acc.SubType,
		StartingBalance: acc.StartingBalance,
	}
	if err := s.operator.Process(ctx, action); err != nil {
		return uuid.Nil, err
	}
	return action.CreatedID, nil
}

// GetAccount retrieves an account by ID.
func (s *AccountService) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	row, err := s.reader.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	converted := accountFromStorage(row)
	return &converted, nil
}

// ListAccounts returns a page of a household's accounts using cursor
// pagination.
func (s *AccountService) ListAccounts(ctx context.Context, householdID uuid.UUID, cursor *AccountCursor) ([]Account, *AccountCursor, error) {
	limit := defaultAccountLimit
	offset := 0
	if cursor != nil {
		limit = cursor.Limit
		offset = cursor.Position
	}

	result, err := s.reader.List(ctx, &account.AccountFilter{
		HouseholdID: &householdID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(result.Accounts) == 0 {
		return nil, nil, nil
	}

	converted := make([]Account, len(result.Accounts))
	for i, row := range result.Accounts {
		converted[i] = accountFromStorage(row)
	}

	var nextCursor *AccountCursor
	if result.NextCursor != nil {
		nextCursor = &AccountCursor{
			Position: result.NextCursor.Position,
			Limit:    result.NextCursor.Limit,
		}
	}
	return converted, nextCursor, nil
}
