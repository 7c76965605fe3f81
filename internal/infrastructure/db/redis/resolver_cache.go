package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/badgeclock/rfid-terminal/internal/core/domain"
	"github.com/badgeclock/rfid-terminal/internal/core/ports"
	"github.com/badgeclock/rfid-terminal/pkg/metrics"
)

// DefaultCacheTTL bounds how long a remote lookup is reused.
const DefaultCacheTTL = 5 * time.Minute

// CachedResolver keeps successful lookups of the wrapped resolver in Redis.
// Cache failures degrade to a direct lookup.
// Key format: chip:<chip_id>
type CachedResolver struct {
	next   ports.ChipResolver
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

func NewCachedResolver(next ports.ChipResolver, client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *CachedResolver {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedResolver{next: next, client: client, ttl: ttl, log: log}
}

func (c *CachedResolver) Resolve(ctx context.Context, chipID string) (*domain.ChipMapping, error) {
	key := "chip:" + chipID

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var m domain.ChipMapping
		if jerr := json.Unmarshal(raw, &m); jerr == nil {
			metrics.ChipLookupsTotal.WithLabelValues("cache", "found").Inc()
			return &m, nil
		}
		c.log.Warn().Str("chip_id", chipID).Msg("discarding undecodable cache entry")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Str("chip_id", chipID).Msg("chip cache unavailable")
	}

	m, err := c.next.Resolve(ctx, chipID)
	if err != nil {
		return nil, err
	}

	if b, jerr := json.Marshal(m); jerr == nil {
		if serr := c.client.Set(ctx, key, b, c.ttl).Err(); serr != nil {
			c.log.Warn().Err(serr).Str("chip_id", chipID).Msg("caching chip lookup failed")
		}
	}
	return m, nil
}
