package transaction

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gofrs/uuid/v5"
	"github.com/shopspring/decimal"

	"github.com/hearthledger/budget-server/internal/ledger"
	"github.com/hearthledger/budget-server/internal/logging"
	"github.com/hearthledger/budget-server/internal/service"
)

// CreateTransactionBody is the request body for creating a transaction.
type CreateTransactionBody struct {
	HouseholdID     string `json:"householdID" required:"true" doc:"Household UUID"`
	AccountID       string `json:"accountID" required:"true" doc:"Account UUID"`
	CategoryID      string `json:"categoryID,omitempty" doc:"Category UUID, required for expenses, forbidden for income"`
	Type            int    `json:"type" minimum:"0" maximum:"1" doc:"Transaction type: 0=income, 1=expense"`
	Amount          string `json:"amount" required:"true" doc:"Decimal amount"`
	TransactionName string `json:"transactionName" required:"true" doc:"Name of the transaction"`
	TransactionDate string `json:"transactionDate" doc:"RFC3339 transaction date, defaults to now"`
}

// CreateTransactionInput is the Huma input for creating a transaction.
type CreateTransactionInput struct {
	Body CreateTransactionBody
}

// CreateTransactionResponse is the response body for creating a transaction.
type CreateTransactionResponse struct {
	ID string `json:"id" doc:"Created transaction UUID"`
}

// CreateTransactionOutput is the Huma output for creating a transaction.
type CreateTransactionOutput struct {
	Status int
	Body   CreateTransactionResponse
}

// transactionCreator is the interface for creating transactions.
type transactionCreator interface {
	CreateTransaction(ctx context.Context, tx service.Transaction) (uuid.UUID, error)
}

// CreateTransactionHandler handles POST /v1/transaction.
type CreateTransactionHandler struct {
	TransactionService transactionCreator
}

// NewCreateTransactionHandler creates a new CreateTransactionHandler.
func NewCreateTransactionHandler(svc transactionCreator) *CreateTransactionHandler {
	return &CreateTransactionHandler{TransactionService: svc}
}

// Register registers the create transaction endpoint with the Huma API.
func (h *CreateTransactionHandler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "create-transaction",
		Method:      http.MethodPost,
		Path:        "/v1/transaction",
		Summary:     "Create transaction",
		Description: "Creates a new transaction and adjusts the account balance.",
		Tags:        []string{"Transactions"},
	}, h.handle)
}

func parseCreateTransactionInput(input *CreateTransactionInput) (service.Transaction, error) {
	householdID, err := uuid.FromString(input.Body.HouseholdID)
	if err != nil {
		return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid householdID", err)
	}
	accountID, err := uuid.FromString(input.Body.AccountID)
	if err != nil {
		return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid accountID", err)
	}

	var categoryID *uuid.UUID
	if input.Body.CategoryID != "" {
		parsed, err := uuid.FromString(input.Body.CategoryID)
		if err != nil {
			return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid categoryID", err)
		}
		categoryID = &parsed
	}

	amount, err := decimal.NewFromString(input.Body.Amount)
	if err != nil {
		return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid amount", err)
	}

	var transactionDate time.Time
	if input.Body.TransactionDate != "" {
		transactionDate, err = time.Parse(time.RFC3339, input.Body.TransactionDate)
		if err != nil {
			return service.Transaction{}, huma.NewError(http.StatusBadRequest, "invalid transactionDate", err)
		}
	} else {
		transactionDate = time.Now()
	}

	return service.Transaction{
		HouseholdID:     householdID,
		AccountID:       accountID,
		CategoryID:      categoryID,
		Type:            service.TransactionType(input.Body.Type),
		Amount:          amount,
		TransactionName: input.Body.TransactionName,
		TransactionDate: transactionDate,
	}, nil
}

func (h *CreateTransactionHandler) handle(ctx context.Context, input *CreateTransactionInput) (*CreateTransactionOutput, error) {
	logData := logging.GetLogData(ctx)

	tx, err := parseCreateTransactionInput(input)
	if err != nil {
		return nil, err
	}

	var stopTimer func()
	if logData != nil {
		stopTimer = logData.AddTiming("createTransactionMs")
	}
	id, err := h.TransactionService.CreateTransaction(ctx, tx)
	if stopTimer != nil {
		stopTimer()
	}
	if errors.Is(err, ledger.ErrAccountNotFound) || errors.Is(err, ledger.ErrCategoryNotFound) {
		return nil, huma.NewError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return nil, huma.NewError(http.StatusInternalServerError, "failed to create transaction", err)
	}

	if logData != nil {
		logData.AddData("transactionID", id.String())
	}

	return &CreateTransactionOutput{
		Status: http.StatusCreated,
		Body:   CreateTransactionResponse{ID: id.String()},
	}, nil
}
