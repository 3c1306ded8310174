package smartcontent

import (
	"context"
	"time"
)

// Registry stores freshness stamps of fetched content, keyed by cache key.
//
// Get returns (nil, nil) when there is no stamp for the key.
// Set stores the stamp; backends that support it may drop the stamp after ttl.
type Registry interface {
	Get(ctx context.Context, key string) (*Stamp, error)
	Set(ctx context.Context, key string, ttl time.Duration, stamp *Stamp) error
	Close()
}

// Stamp records which generation of content was fetched for a key, and when.
type Stamp struct {
	Generation int64
	Created    time.Time
}

func newStamp(generation int64) *Stamp {
	return &Stamp{Generation: generation, Created: time.Now()}
}

// IsExpired reports whether the stamp is older than ttl.
func (s *Stamp) IsExpired(ttl time.Duration) bool {
	return s.Created.Add(ttl).Before(time.Now())
}
