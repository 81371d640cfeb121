package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Window covered by one usage counter.
const DefaultWindow = 24 * time.Hour

// Metered provider names, used as counter keys.
const (
	ProviderGemini       = "gemini"
	ProviderCloudConvert = "cloudconvert"
)

// CounterStore is the slice of the redis client the gate needs.
type CounterStore interface {
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Gate caps daily calls to each metered external provider with one global
// counter per provider.
//
// The check is advisory: CheckAvailability does not reserve capacity, so two
// requests racing past the check can both increment and overshoot the quota
// by the number of concurrent racers. Accepted trade-off; the counter itself
// is only ever moved by INCR, so it can never under-count.
type Gate struct {
	store  CounterStore
	quotas map[string]int
	window time.Duration
}

func NewGate(store CounterStore, quotas map[string]int, window time.Duration) *Gate {
	if window <= 0 {
		window = DefaultWindow
	}

	return &Gate{
		store:  store,
		quotas: quotas,
		window: window,
	}
}

// CheckAvailability reports whether provider still has quota left today.
// A missing counter reads as zero usage, so an unreachable key fails open.
func (g *Gate) CheckAvailability(ctx context.Context, provider string) (bool, error) {
	count, err := g.Usage(ctx, provider)
	if err != nil {
		return false, err
	}

	return count < int64(g.Quota(provider)), nil
}

// IncrementUsage bumps the provider counter and returns the new count.
// The increment that opens a fresh window (count goes 0 -> 1) also arms the
// window expiry. INCR and EXPIRE are two calls, not one transaction: only
// the request that observed count == 1 sets the TTL, so the expiry is set
// exactly once per window and is armed as soon as any usage exists.
func (g *Gate) IncrementUsage(ctx context.Context, provider string) (int64, error) {
	key := usageKey(provider)

	count, err := g.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("increment usage for %s: %w", provider, err)
	}

	if count == 1 {
		if err := g.store.Expire(ctx, key, g.window); err != nil {
			return count, fmt.Errorf("set usage window for %s: %w", provider, err)
		}
	}

	return count, nil
}

// Usage returns the current counter value, zero when no usage exists yet.
func (g *Gate) Usage(ctx context.Context, provider string) (int64, error) {
	val, err := g.store.Get(ctx, usageKey(provider))
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read usage for %s: %w", provider, err)
	}

	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed usage counter for %s: %w", provider, err)
	}

	return count, nil
}

// Quota returns the configured daily ceiling, zero for unknown providers.
func (g *Gate) Quota(provider string) int {
	return g.quotas[provider]
}

// Providers lists every provider the gate meters.
func (g *Gate) Providers() []string {
	providers := make([]string, 0, len(g.quotas))
	for p := range g.quotas {
		providers = append(providers, p)
	}
	return providers
}

// ResetsIn reports how long until the provider's current window expires.
// Negative values mean no window is armed.
func (g *Gate) ResetsIn(ctx context.Context, provider string) (time.Duration, error) {
	return g.store.TTL(ctx, usageKey(provider))
}

func usageKey(provider string) string {
	return fmt.Sprintf("global:%s:usage", provider)
}
