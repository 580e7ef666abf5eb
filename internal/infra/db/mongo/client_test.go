package mongo

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestIsTransientTxnError(t *testing.T) {
	transient := mongo.CommandError{Code: 112, Name: "WriteConflict", Labels: []string{"TransientTransactionError"}}
	assert.True(t, IsTransientTxnError(transient))
	assert.True(t, IsTransientTxnError(fmt.Errorf("commit: %w", transient)))

	assert.False(t, IsTransientTxnError(mongo.CommandError{Code: 11000, Name: "DuplicateKey"}))
	assert.False(t, IsTransientTxnError(errors.New("boom")))
	assert.False(t, IsTransientTxnError(nil))
}

func TestIsRetryableIncludesStaleVersions(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: booking bk-1", ErrConcurrentUpdate)))
	assert.False(t, IsRetryable(errors.New("boom")))
}
