package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/m-zajac/smartcontent"
	"github.com/redis/go-redis/v9"
)

// Backend is a freshness registry that stores stamps in redis. Several
// processes can share it, but a stamp is only honored by handles at the same
// generation as the one that wrote it.
//
// Stamps are serialized to JSON and stored with the ttl passed to Set, so
// redis drops them once they are no longer fresh.
//
// The client will be closed when the parent factory is closed.
type Backend struct {
	client    *redis.Client
	keyPrefix string
}

var _ smartcontent.Registry = &Backend{}

func NewBackend(client *redis.Client, keyPrefix string) (*Backend, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}

	return &Backend{
		client:    client,
		keyPrefix: keyPrefix,
	}, nil
}

func (b *Backend) Get(ctx context.Context, key string) (*smartcontent.Stamp, error) {
	data, err := b.client.Get(ctx, b.keyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}

		return nil, fmt.Errorf("fetching stamp from redis: %w", err)
	}

	return b.deserialize([]byte(data))
}

func (b *Backend) Set(ctx context.Context, key string, ttl time.Duration, stamp *smartcontent.Stamp) error {
	data, err := b.serialize(stamp)
	if err != nil {
		return err
	}

	if err := b.client.Set(ctx, b.keyPrefix+key, string(data), ttl).Err(); err != nil {
		return fmt.Errorf("storing stamp in redis: %w", err)
	}

	return nil
}

func (b *Backend) Close() {
	_ = b.client.Close()
}

type container struct {
	Generation int64     `json:"generation"`
	Created    time.Time `json:"created"`
}

func (b *Backend) serialize(stamp *smartcontent.Stamp) ([]byte, error) {
	v, err := json.Marshal(container{
		Generation: stamp.Generation,
		Created:    stamp.Created,
	})
	if err != nil {
		return nil, fmt.Errorf("serializing to json: %w", err)
	}

	return v, nil
}

func (b *Backend) deserialize(data []byte) (*smartcontent.Stamp, error) {
	var c container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("deserializing json: %w", err)
	}

	return &smartcontent.Stamp{
		Generation: c.Generation,
		Created:    c.Created,
	}, nil
}
