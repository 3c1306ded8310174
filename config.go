package smartcontent

import (
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

type config struct {
	validator   Validator
	registry    Registry
	registryTTL time.Duration
	logger      zerolog.Logger
	meter       metric.Meter
}

// Option allows to configure controller settings.
type Option func(*config) error

func defaultConfig() config {
	return config{
		logger: zerolog.Nop(),
		meter:  noop.NewMeterProvider().Meter(meterName),
	}
}

// WithValidator sets the function deciding if held content can be reused.
// It takes precedence over the validator derived from WithRegistry, but
// successful fetches are still recorded in the registry.
func WithValidator(v Validator) Option {
	return func(c *config) error {
		if v == nil {
			return errors.New("validator is nil")
		}

		c.validator = v

		return nil
	}
}

// WithRegistry makes content fresh for ttl after every successful fetch.
// Fetches are recorded in the registry. Stamps carry the generation of the
// factory that fetched, so factories sharing a registry (see backend/redis)
// only reuse each other's fetches for handles at the same generation, and
// otherwise overwrite each other's stamps and fetch more often.
func WithRegistry(r Registry, ttl time.Duration) Option {
	return func(c *config) error {
		if r == nil {
			return errors.New("registry is nil")
		}
		if ttl <= 0 {
			return errors.New("ttl has to be > 0")
		}

		c.registry = r
		c.registryTTL = ttl

		return nil
	}
}

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger

		return nil
	}
}

// WithMeter sets the OpenTelemetry meter used for search metrics.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) error {
		if meter == nil {
			return errors.New("meter is nil")
		}

		c.meter = meter

		return nil
	}
}
