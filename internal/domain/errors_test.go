package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStorageError(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, NewStorageError("read", nil))
	})

	t.Run("wraps and unwraps", func(t *testing.T) {
		cause := errors.New("disk full")
		err := NewStorageError("write order", cause)

		assert.True(t, IsStorageError(err))
		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "storage write order: disk full", err.Error())
	})

	t.Run("does not wrap twice", func(t *testing.T) {
		inner := NewStorageError("decode", errors.New("bad json"))
		outer := NewStorageError("get order", fmt.Errorf("lookup: %w", inner))

		var se *StorageError
		assert.ErrorAs(t, outer, &se)
		assert.Equal(t, "decode", se.Op)
	})

	t.Run("sentinels are not storage errors", func(t *testing.T) {
		assert.False(t, IsStorageError(ErrNoActiveOrder))
	})
}
