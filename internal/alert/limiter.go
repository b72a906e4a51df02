package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultDailyLimit = 5

// Limiter caps alerts per plate per calendar day. Counters live in Redis and
// expire at the next local midnight. A nil client disables limiting.
type Limiter struct {
	redis    *redis.Client
	limit    int64
	location *time.Location
	now      func() time.Time
}

func NewLimiter(client *redis.Client, limit int) *Limiter {
	if limit <= 0 {
		limit = DefaultDailyLimit
	}
	return &Limiter{
		redis:    client,
		limit:    int64(limit),
		location: time.Local,
		now:      time.Now,
	}
}

func (l *Limiter) Enabled() bool {
	return l != nil && l.redis != nil
}

func dayKey(plate string, day time.Time) string {
	return fmt.Sprintf("alert:plate:%s:%s", plate, day.Format("2006-01-02"))
}

func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}

// Allow records one alert for plate and reports whether it is within today's
// limit, along with the count so far.
func (l *Limiter) Allow(ctx context.Context, plate string) (bool, int64, error) {
	if !l.Enabled() {
		return true, 0, nil
	}

	now := l.now().In(l.location)
	key := dayKey(plate, now)

	var incr *redis.IntCmd
	_, err := l.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireAt(ctx, key, nextMidnight(now))
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("count alert: %w", err)
	}

	count := incr.Val()
	return count <= l.limit, count, nil
}

