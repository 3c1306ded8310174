package smartcontent

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Validator decides whether content already held for a key can be reused
// without a new fetch. generation is the generation the caller currently holds.
//
// Implementations must be safe for concurrent use and must return the same
// answer for the same inputs at a given instant.
type Validator interface {
	IsCacheValid(ctx context.Context, key string, generation int64) bool
}

// ValidatorFunc adapts a plain function to the Validator interface.
type ValidatorFunc func(ctx context.Context, key string, generation int64) bool

func (f ValidatorFunc) IsCacheValid(ctx context.Context, key string, generation int64) bool {
	return f(ctx, key, generation)
}

var (
	// Always treats held content as fresh; only forced searches fetch.
	Always Validator = ValidatorFunc(func(context.Context, string, int64) bool { return true })

	// Never treats held content as stale; every search fetches.
	Never Validator = ValidatorFunc(func(context.Context, string, int64) bool { return false })
)

// RegistryValidator treats content as fresh for a fixed ttl after it was
// fetched. Fetches are recorded with MarkFetched.
type RegistryValidator struct {
	registry Registry
	ttl      time.Duration
	logger   zerolog.Logger
}

func NewRegistryValidator(registry Registry, ttl time.Duration, logger zerolog.Logger) *RegistryValidator {
	return &RegistryValidator{
		registry: registry,
		ttl:      ttl,
		logger:   logger,
	}
}

// IsCacheValid returns true only if the registry knows that generation was
// fetched for key less than ttl ago. Registry errors count as stale content.
func (v *RegistryValidator) IsCacheValid(ctx context.Context, key string, generation int64) bool {
	stamp, err := v.registry.Get(ctx, key)
	if err != nil {
		v.logger.Error().Err(err).Str("key", key).Msg("Reading freshness registry failed.")
		return false
	}
	if stamp == nil {
		return false
	}

	return stamp.Generation == generation && !stamp.IsExpired(v.ttl)
}

// MarkFetched records that generation was just fetched for key.
func (v *RegistryValidator) MarkFetched(ctx context.Context, key string, generation int64) error {
	return v.registry.Set(ctx, key, v.ttl, newStamp(generation))
}
