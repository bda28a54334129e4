package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpErrorMessageFormats(t *testing.T) {
	both := invalidOperation("cannot paste an item's history onto itself", 3, 3)
	assert.Equal(t, "INVALID_OPERATION: cannot paste an item's history onto itself (source=3, dest=3)", both.Error())

	destOnly := storeError(-1, 7, errors.New("disk I/O error"))
	assert.Equal(t, "STORE_ERROR: disk I/O error (dest=7)", destOnly.Error())

	neither := invalidOperation("no other items selected", -1, -1)
	assert.Equal(t, "INVALID_OPERATION: no other items selected", neither.Error())
}

func TestErrorCodePredicates(t *testing.T) {
	assert.True(t, IsInvalidOperation(invalidOperation("x", 1, 2)))
	assert.True(t, IsNoSourceHistory(noSourceHistory(1)))
	assert.True(t, IsSidecarParse(sidecarParse(1, "f.yaml", errors.New("bad"))))
	assert.True(t, IsStoreError(storeError(1, 2, errors.New("bad"))))

	assert.False(t, IsStoreError(noSourceHistory(1)))
	assert.False(t, IsInvalidOperation(errors.New("plain error")))
	assert.False(t, IsInvalidOperation(nil))
}

func TestErrorCodePredicatesSeeThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("paste item 2: %w", noSourceHistory(1))
	assert.True(t, IsNoSourceHistory(wrapped))

	joined := errors.Join(errors.New("other"), storeError(1, 2, errors.New("bad")))
	assert.True(t, IsStoreError(joined), "predicates traverse joined errors")
}

func TestOpErrorUnwrap(t *testing.T) {
	cause := errors.New("unique constraint failed")
	err := storeError(1, 2, cause)
	assert.ErrorIs(t, err, cause)
}
