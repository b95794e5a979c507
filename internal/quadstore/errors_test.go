package quadstore

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := newStorageError("add", errors.New("disk full"))
	assert.Equal(t, "STORAGE: add: backing collection failed: disk full", err.Error())

	v := newValidationError("match", "invalid subject: <nil>")
	assert.Equal(t, "VALIDATION: match: invalid subject: <nil>", v.Error())
}

func TestError_Helpers(t *testing.T) {
	cause := errors.New("refused")
	conn := fmt.Errorf("wrapped: %w", newConnectionError(cause))

	assert.True(t, IsConnectionError(conn))
	assert.False(t, IsStorageError(conn))
	assert.False(t, IsValidationError(conn))
	assert.ErrorIs(t, conn, cause)

	assert.True(t, IsValidationError(newValidationError("add", "x")))
	assert.True(t, IsStorageError(newStorageError("add", cause)))
	assert.False(t, IsStorageError(cause))
	assert.False(t, IsStorageError(nil))
}
