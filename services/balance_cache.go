package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cohabit-backend/config"
	"cohabit-backend/database"
	"cohabit-backend/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultBalanceCacheTTL = 5 * time.Minute

// BalanceCache keeps computed balance summaries in Redis. A nil client turns
// every call into a no-op, so callers never branch on whether Redis is up.
type BalanceCache struct {
	client *redis.Client
	ttl    time.Duration
}

var (
	balanceCache   *BalanceCache
	balanceCacheMu sync.Mutex
)

func NewBalanceCache(client *redis.Client, ttl time.Duration) *BalanceCache {
	if ttl <= 0 {
		ttl = defaultBalanceCacheTTL
	}
	return &BalanceCache{client: client, ttl: ttl}
}

func SetBalanceCache(c *BalanceCache) {
	balanceCacheMu.Lock()
	defer balanceCacheMu.Unlock()
	balanceCache = c
}

// GetBalanceCache returns the configured cache, building one from
// database.Redis on first use.
func GetBalanceCache() *BalanceCache {
	balanceCacheMu.Lock()
	defer balanceCacheMu.Unlock()
	if balanceCache == nil {
		ttl := defaultBalanceCacheTTL
		if config.AppConfig != nil {
			ttl = config.AppConfig.BalanceCacheTTL
		}
		balanceCache = NewBalanceCache(database.Redis, ttl)
	}
	return balanceCache
}

func balanceKey(householdID uuid.UUID) string {
	return fmt.Sprintf("household:%s:balances", householdID)
}

func (c *BalanceCache) Get(ctx context.Context, householdID uuid.UUID) (models.HouseholdBalanceSummary, bool) {
	var summary models.HouseholdBalanceSummary
	if c == nil || c.client == nil {
		return summary, false
	}

	raw, err := c.client.Get(ctx, balanceKey(householdID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return summary, false
	}
	if err != nil {
		slog.Warn("Balance cache read failed", "household_id", householdID, "error", err)
		return summary, false
	}
	if err := json.Unmarshal(raw, &summary); err != nil {
		slog.Warn("Balance cache entry unreadable", "household_id", householdID, "error", err)
		return summary, false
	}
	return summary, true
}

func (c *BalanceCache) Set(ctx context.Context, householdID uuid.UUID, summary models.HouseholdBalanceSummary) {
	if c == nil || c.client == nil {
		return
	}
	raw, err := json.Marshal(summary)
	if err != nil {
		slog.Warn("Balance cache encode failed", "household_id", householdID, "error", err)
		return
	}
	if err := c.client.Set(ctx, balanceKey(householdID), raw, c.ttl).Err(); err != nil {
		slog.Warn("Balance cache write failed", "household_id", householdID, "error", err)
	}
}

// Invalidate drops the household's cached summary. Call after every ledger write.
func (c *BalanceCache) Invalidate(ctx context.Context, householdID uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, balanceKey(householdID)).Err(); err != nil {
		slog.Warn("Balance cache invalidate failed", "household_id", householdID, "error", err)
	}
}
