package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	platformredis "github.com/natovichat/rent-management-app-sub001/internal/platform/redis"
	id "github.com/natovichat/rent-management-app-sub001/pkg/domain"
	"github.com/natovichat/rent-management-app-sub001/pkg/platform/circuit"
)

// DefaultTTL bounds how long a computed total may be served without a
// recompute, even absent mutations.
const DefaultTTL = 10 * time.Minute

// Redis caches totals in one hash per property, keyed by evaluation date.
// Invalidation deletes the whole hash, clearing every cached date at once.
//
// A circuit breaker guards the read path: when Redis keeps failing, Get
// reports a miss immediately and callers recompute from the store instead
// of waiting on a dead connection. Invalidation is always attempted.
type Redis struct {
	client  *platformredis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

func NewRedis(client *platformredis.Client, logger *slog.Logger) *Redis {
	return &Redis{
		client:  client,
		ttl:     DefaultTTL,
		breaker: circuit.New("ownership-total-cache", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
		logger:  logger,
	}
}

func (c *Redis) Get(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time) (decimal.Decimal, bool) {
	if c.breaker.IsOpen() {
		return decimal.Zero, false
	}

	raw, err := c.client.HGet(ctx, totalKey(accountID, propertyID), dateField(asOf)).Result()
	if errors.Is(err, redis.Nil) {
		// A miss is a healthy answer.
		c.observe(ctx, nil)
		return decimal.Zero, false
	}
	if err != nil {
		c.observe(ctx, err)
		return decimal.Zero, false
	}
	c.observe(ctx, nil)

	total, err := decimal.NewFromString(raw)
	if err != nil {
		c.logger.WarnContext(ctx, "dropping unparsable cached total", "property_id", propertyID, "value", raw)
		c.Invalidate(ctx, accountID, propertyID)
		return decimal.Zero, false
	}
	return total, true
}

func (c *Redis) Set(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID, asOf time.Time, total decimal.Decimal) {
	if c.breaker.IsOpen() {
		return
	}

	key := totalKey(accountID, propertyID)
	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, dateField(asOf), total.String())
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	c.observe(ctx, err)
}

func (c *Redis) Invalidate(ctx context.Context, accountID id.AccountID, propertyID id.PropertyID) {
	err := c.client.Del(ctx, totalKey(accountID, propertyID)).Err()
	c.observe(ctx, err)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to invalidate ownership total cache", "property_id", propertyID, "error", err)
	}
}

// observe feeds the outcome to the breaker, logging transitions.
func (c *Redis) observe(ctx context.Context, err error) {
	if err == nil {
		if _, change := c.breaker.RecordSuccess(); change.Closed {
			c.logger.InfoContext(ctx, "ownership total cache recovered, resuming")
		}
		return
	}
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.WarnContext(ctx, "ownership total cache failing, bypassing", "error", err)
	}
}
