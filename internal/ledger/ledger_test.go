package ledger

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPermanent(t *testing.T) {
	assert.True(t, IsPermanent(ErrAccountNotFound))
	assert.True(t, IsPermanent(ErrCategoryNotFound))
	assert.True(t, IsPermanent(fmt.Errorf("create: %w", ErrAccountNotFound)))

	assert.False(t, IsPermanent(errors.New("connection refused")))
	assert.False(t, IsPermanent(context.DeadlineExceeded))
	assert.False(t, IsPermanent(nil))
}
