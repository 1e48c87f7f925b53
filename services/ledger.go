package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Ledger tracks collected split payments per event. Collected funds
// never reduce spent; reimbursement progress is a separate ledger from
// vendor cost accounting.
type Ledger interface {
	// Add records amount as collected and returns the new total.
	Add(ctx context.Context, eventID string, amount decimal.Decimal) (decimal.Decimal, error)

	// Total returns the amount collected so far.
	Total(ctx context.Context, eventID string) (decimal.Decimal, error)
}

// RedisLedger keeps collected totals in redis.
type RedisLedger struct {
	Redis *redis.Client
}

func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{Redis: client}
}

func collectedKey(eventID string) string {
	return fmt.Sprintf("split:collected:%s", eventID)
}

func (l *RedisLedger) Add(ctx context.Context, eventID string, amount decimal.Decimal) (decimal.Decimal, error) {
	f, _ := amount.Float64()
	total, err := l.Redis.IncrByFloat(ctx, collectedKey(eventID), f).Result()
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(total), nil
}

func (l *RedisLedger) Total(ctx context.Context, eventID string) (decimal.Decimal, error) {
	val, err := l.Redis.Get(ctx, collectedKey(eventID)).Result()
	if err == redis.Nil {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	total, err := decimal.NewFromString(val)
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// MemoryLedger is the in-process Ledger for tests and dev runs.
type MemoryLedger struct {
	mu     sync.Mutex
	totals map[string]decimal.Decimal
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{totals: make(map[string]decimal.Decimal)}
}

func (l *MemoryLedger) Add(_ context.Context, eventID string, amount decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.totals[eventID] = l.totals[eventID].Add(amount)
	return l.totals[eventID], nil
}

func (l *MemoryLedger) Total(_ context.Context, eventID string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[eventID], nil
}
