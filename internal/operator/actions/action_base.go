package actions

import (
	"context"

	"github.com/hearthledger/budget-server/internal/storage"
)

type IAction interface {
	Perform(ctx context.Context, writer *storage.Writer) error
}
