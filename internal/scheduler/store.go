package scheduler

import (
	"context"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/hearthledger/budget-server/internal/schedule"
	storerule "github.com/hearthledger/budget-server/internal/storage/rule"
)

// RuleStore is the slice of the rule store the scheduler depends on.
//
//go:generate mockery --name RuleStore --output mock_RuleStore.go
type RuleStore interface {
	ListDueActive(ctx context.Context, asOf time.Time) ([]schedule.Rule, error)
	Claim(ctx context.Context, id uuid.UUID, ttl time.Duration) (*schedule.Rule, *storerule.Lease, error)
	Release(ctx context.Context, lease *storerule.Lease) error
	PersistRunState(ctx context.Context, id uuid.UUID, state storerule.RunState) error
}
