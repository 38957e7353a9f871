package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/azorastack/market/internal/domain"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=cache.go -destination=mocks/mocks.go -package=mocks

const DefaultTTL = 60 * time.Second

const (
	KeyCommissionPercentage = "commission_percentage"
	KeyMinimumWithdrawal    = "minimum_withdrawal"
	KeyCurrency             = "currency"
)

// defaults back every key so the platform keeps working before the settings
// table is seeded.
var defaults = map[string]string{
	KeyCommissionPercentage: "50",
	KeyMinimumWithdrawal:    "300",
	KeyCurrency:             "INR",
}

type Repository interface {
	Get(ctx context.Context, key string) (*domain.Setting, error)
	Set(ctx context.Context, key string, value string) error
}

type cacheEntry struct {
	value     string
	fetchedAt time.Time
}

// Cache is a read-through cache over the settings repository. Entries expire
// after ttl, so an admin edit is visible everywhere within one TTL window
// without a restart.
type Cache struct {
	repo Repository
	ttl  time.Duration
	now  func() time.Time

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func New(repo Repository) *Cache {
	return &Cache{
		repo:    repo,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: make(map[string]cacheEntry),
	}
}

// Get returns the setting value, falling back to the built-in default when
// the key is absent from the table.
func (c *Cache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Sub(entry.fetchedAt) < c.ttl {
		return entry.value, nil
	}

	setting, err := c.repo.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			if fallback, hasDefault := defaults[key]; hasDefault {
				c.store(key, fallback)
				return fallback, nil
			}
		}
		return "", fmt.Errorf("reading setting `%s`: %w", key, err)
	}

	c.store(key, setting.Value)
	return setting.Value, nil
}

// Decimal reads the setting and parses it as a decimal number.
func (c *Cache) Decimal(ctx context.Context, key string) (decimal.Decimal, error) {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return decimal.Zero, err
	}
	value, parseErr := decimal.NewFromString(raw)
	if parseErr != nil {
		return decimal.Zero, fmt.Errorf("parsing setting `%s`: %w", key, parseErr)
	}
	return value, nil
}

// CommissionRate returns the platform commission percentage applied to new
// orders.
func (c *Cache) CommissionRate(ctx context.Context) (decimal.Decimal, error) {
	return c.Decimal(ctx, KeyCommissionPercentage)
}

// MinimumWithdrawal returns the smallest amount a seller may request.
func (c *Cache) MinimumWithdrawal(ctx context.Context) (decimal.Decimal, error) {
	return c.Decimal(ctx, KeyMinimumWithdrawal)
}

func (c *Cache) Currency(ctx context.Context) (string, error) {
	return c.Get(ctx, KeyCurrency)
}

// Set writes the setting through to the repository and drops the cached
// entry so the next read observes the new value immediately.
func (c *Cache) Set(ctx context.Context, key string, value string) error {
	if err := c.repo.Set(ctx, key, value); err != nil {
		return fmt.Errorf("writing setting `%s`: %w", key, err)
	}
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *Cache) store(key, value string) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{value: value, fetchedAt: c.now()}
	c.mu.Unlock()
}
