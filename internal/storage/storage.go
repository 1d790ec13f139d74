package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/stephenafamo/bob"

	"github.com/hearthledger/budget-server/internal/config"
	"github.com/hearthledger/budget-server/internal/storage/account"
	"github.com/hearthledger/budget-server/internal/storage/category"
	"github.com/hearthledger/budget-server/internal/storage/rule"
	"github.com/hearthledger/budget-server/internal/storage/transaction"
)

type Storage struct {
	DB   *sql.DB
	exec bob.DB

	Accounts     *account.Reader
	Categories   *category.Reader
	Transactions *transaction.Reader
	Rules        *rule.Store
}

func NewStorage(env *config.Config) (*Storage, error) {
	connStr := "postgres://" + env.PostgresUsername + ":" +
		env.PostgresPassword + "@" + env.PostgresAddress + ":" +
		env.PostgresPort + "/" + env.PostgresDB + "?sslmode=disable"

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("storage: open: %w", err)
	}

	exec := bob.NewDB(db)

	return &Storage{
		DB:           db,
		exec:         exec,
		Accounts:     account.NewReader(exec),
		Categories:   category.NewReader(exec),
		Transactions: transaction.NewReader(exec),
		Rules:        rule.NewStore(db),
	}, nil
}

// Write begins a transaction and returns a Writer scoped to it. The caller
// must Commit or Rollback.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("storage: begin: %w", err)
	}
	writer := NewWriter(tx)
	return &writer, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
