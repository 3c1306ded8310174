package lru

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/m-zajac/smartcontent"
)

// Backend is an in-memory freshness registry holding stamps of the most
// recently fetched keys. Stamps of evicted keys are lost, so their content is
// fetched again on the next search.
//
// The ttl passed to Set is ignored; expiry is checked by the validator.
type Backend struct {
	cache *lru.Cache[string, smartcontent.Stamp]
}

var _ smartcontent.Registry = &Backend{}

func NewBackend(size uint) (*Backend, error) {
	cache, err := lru.New[string, smartcontent.Stamp](int(size))
	if err != nil {
		return nil, fmt.Errorf("creating lru cache: %w", err)
	}

	return &Backend{
		cache: cache,
	}, nil
}

func (b *Backend) Get(ctx context.Context, key string) (*smartcontent.Stamp, error) {
	stamp, found := b.cache.Get(key)
	if !found {
		return nil, nil
	}

	return &stamp, nil
}

func (b *Backend) Set(ctx context.Context, key string, ttl time.Duration, stamp *smartcontent.Stamp) error {
	_ = b.cache.Add(key, *stamp)

	return nil
}

// Len returns the number of stamps held.
func (b *Backend) Len() int {
	return b.cache.Len()
}

func (b *Backend) Close() {
	b.cache.Purge()
}
