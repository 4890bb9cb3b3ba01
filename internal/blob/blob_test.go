package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mobywatel/pkg/apperrors"
	id "mobywatel/pkg/domain"
	"mobywatel/pkg/sentinel"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	photo := []byte{0xFF, 0xD8, 0xFF}
	ref, err := store.Store(ctx, id.NewCitizenID(), id.NewRequestID(), photo, "image/jpeg")
	require.NoError(t, err)
	require.NotEmpty(t, ref)

	data, contentType, err := store.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, photo, data)
	assert.Equal(t, "image/jpeg", contentType)

	// Mutating the returned slice must not reach the stored copy.
	data[0] = 0x00
	again, _, err := store.Resolve(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, byte(0xFF), again[0])
}

func TestInMemoryStoreValidation(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	t.Run("empty photo", func(t *testing.T) {
		_, err := store.Store(ctx, id.NewCitizenID(), id.NewRequestID(), nil, "image/png")
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})

	t.Run("unsupported content type", func(t *testing.T) {
		_, err := store.Store(ctx, id.NewCitizenID(), id.NewRequestID(), []byte("gif"), "image/gif")
		assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
	})
}

func TestInMemoryStoreUnknownRef(t *testing.T) {
	_, _, err := NewInMemoryStore().Resolve(context.Background(), "no/such")
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemoryStoreDeleteByCitizen(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	photo := []byte{0xFF, 0xD8, 0xFF}

	deleted := id.NewCitizenID()
	kept := id.NewCitizenID()

	refA, err := store.Store(ctx, deleted, id.NewRequestID(), photo, "image/jpeg")
	require.NoError(t, err)
	refB, err := store.Store(ctx, deleted, id.NewRequestID(), photo, "image/jpeg")
	require.NoError(t, err)
	refC, err := store.Store(ctx, kept, id.NewRequestID(), photo, "image/jpeg")
	require.NoError(t, err)

	require.NoError(t, store.DeleteByCitizen(ctx, deleted))

	_, _, err = store.Resolve(ctx, refA)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	_, _, err = store.Resolve(ctx, refB)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))

	_, _, err = store.Resolve(ctx, refC)
	assert.NoError(t, err)
}
