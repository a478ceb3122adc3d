package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/watchtower/internal/model"
)

func TestRuntimeError_Message(t *testing.T) {
	cause := errors.New("disk full")
	err := newStoreWriteError(model.CollectionTickets, cause)

	assert.Equal(t, "STORE_WRITE_FAILED: replace snapshot (collection=tickets): disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestRuntimeError_UnknownCollection(t *testing.T) {
	err := newUnknownCollectionError("widgets")
	assert.Equal(t, `UNKNOWN_COLLECTION: unknown collection "widgets"`, err.Error())
	assert.False(t, IsStorageError(err))
	assert.False(t, IsDecodeError(err))
}

func TestIsStorageError(t *testing.T) {
	read := newStoreReadError(model.CollectionUsers, errors.New("locked"))
	write := newStoreWriteError(model.CollectionUsers, errors.New("locked"))
	wrapped := fmt.Errorf("prime: %w", read)

	assert.True(t, IsStorageError(read))
	assert.True(t, IsStorageError(write))
	assert.True(t, IsStorageError(wrapped), "must see through wrapping")
	assert.False(t, IsStorageError(errors.New("plain")))
	assert.False(t, IsStorageError(nil))
}

func TestIsDecodeError(t *testing.T) {
	err := fmt.Errorf("replace: %w", newDecodeError(model.CollectionTasks, errors.New("bad json")))

	assert.True(t, IsDecodeError(err))
	assert.False(t, IsStorageError(err))
}
