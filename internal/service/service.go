package service

import (
	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/operator"
	"github.com/hearthledger/budget-server/internal/storage"
)

// Service holds all business logic services.
type Service struct {
	Account     *AccountService
	Category    *CategoryService
	Transaction *TransactionService
	Rule        *RuleService
}

// NewService creates a new Service over the given storage and collaborators.
func NewService(store *storage.Storage, op *operator.OperatorDelegator, led ledger.Ledger) (*Service, error) {
	ruleService, err := NewRuleService(store.Rules)
	if err != nil {
		return nil, err
	}
	return &Service{
		Account:     NewAccountService(store.Accounts, op),
		Category:    NewCategoryService(store.Categories, op),
		Transaction: NewTransactionService(store.Transactions, led),
		Rule:        ruleService,
	}, nil
}
