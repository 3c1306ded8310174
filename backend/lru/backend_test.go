package lru_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-zajac/smartcontent"
	"github.com/m-zajac/smartcontent/backend/lru"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	backend, err := lru.NewBackend(100)
	require.NoError(t, err)

	stamp := smartcontent.Stamp{
		Generation: 3,
		Created:    time.Now().Add(-time.Minute),
	}

	key := "test"
	err = backend.Set(ctx, key, time.Minute, &stamp)
	assert.NoError(t, err)

	gotStamp, err := backend.Get(ctx, key)
	assert.NoError(t, err)
	assert.Equal(t, &stamp, gotStamp)

	missing, err := backend.Get(ctx, "missing")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestBackendEviction(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	backend, err := lru.NewBackend(2)
	require.NoError(t, err)

	for i, key := range []string{"a", "b", "c"} {
		err := backend.Set(ctx, key, time.Minute, &smartcontent.Stamp{Generation: int64(i), Created: time.Now()})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, backend.Len())

	evicted, err := backend.Get(ctx, "a")
	assert.NoError(t, err)
	assert.Nil(t, evicted)

	kept, err := backend.Get(ctx, "c")
	assert.NoError(t, err)
	require.NotNil(t, kept)
	assert.EqualValues(t, 2, kept.Generation)
}

func TestBackendZeroSize(t *testing.T) {
	t.Parallel()

	_, err := lru.NewBackend(0)
	assert.Error(t, err)
}

func TestBackendWithFactory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	backend, err := lru.NewBackend(10)
	require.NoError(t, err)

	var calls int
	search := func(ctx context.Context, id string) (smartcontent.Content, error) {
		calls++
		return smartcontent.Content{{ComponentName: "Banner", Props: map[string]any{"id": id}}}, nil
	}

	factory, err := smartcontent.New[string, smartcontent.Content](
		search,
		smartcontent.WithRegistry(backend, time.Minute),
	)
	require.NoError(t, err)
	defer factory.Close()

	h, err := factory.Handle("home")
	require.NoError(t, err)

	h.Search(ctx, "home")
	h.Search(ctx, "home")

	assert.Equal(t, 1, calls)
	assert.EqualValues(t, 2, h.CacheTimestamp())

	stamp, err := backend.Get(ctx, "home")
	require.NoError(t, err)
	require.NotNil(t, stamp)
	assert.EqualValues(t, 2, stamp.Generation)
}
