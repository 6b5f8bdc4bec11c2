package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	errors "github.com/boostify/storefront/internal"
)

// Cache holds currency rates against a USD base with a refresh interval and a
// serve-stale policy: when the feed cannot be reached, the last good snapshot
// is served instead of surfacing the failure to callers.
type Cache struct {
	feedURL         string
	refreshInterval time.Duration
	client          *http.Client
	logger          *slog.Logger

	// fetchMu serializes feed fetches so a burst of stale readers costs one
	// request, not one per reader.
	fetchMu sync.Mutex

	mu        sync.RWMutex
	rates     map[string]float64
	fetchedAt time.Time
}

type feedResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

func NewCache(feedURL string, refreshInterval, fetchTimeout time.Duration, logger *slog.Logger) *Cache {
	if refreshInterval <= 0 {
		refreshInterval = 30 * time.Minute
	}
	if fetchTimeout <= 0 {
		fetchTimeout = 10 * time.Second
	}
	return &Cache{
		feedURL:         feedURL,
		refreshInterval: refreshInterval,
		client:          &http.Client{Timeout: fetchTimeout},
		logger:          logger,
	}
}

// Rate returns the multiplier from USD to the given currency, refreshing the
// snapshot lazily when it is older than the refresh interval.
func (c *Cache) Rate(currency string) (float64, error) {
	if currency == "USD" {
		return 1, nil
	}

	c.refreshIfStale()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.rates == nil {
		return 0, errors.NewExternalError("currency rates unavailable", errors.ErrCodeValidationFailed)
	}
	rate, ok := c.rates[currency]
	if !ok {
		return 0, errors.NewValidationError(fmt.Sprintf("unknown currency %q", currency), errors.ErrCodeValidationFailed)
	}
	return rate, nil
}

// Convert turns a USD cent amount into a display-currency unit amount.
func (c *Cache) Convert(amountCents int64, currency string) (float64, error) {
	rate, err := c.Rate(currency)
	if err != nil {
		return 0, err
	}
	return float64(amountCents) / 100 * rate, nil
}

// Snapshot returns the current rates and the time they were fetched.
func (c *Cache) Snapshot() (map[string]float64, time.Time) {
	c.refreshIfStale()

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]float64, len(c.rates))
	for k, v := range c.rates {
		out[k] = v
	}
	return out, c.fetchedAt
}

func (c *Cache) refreshIfStale() {
	if c.feedURL == "" || !c.stale() {
		return
	}

	c.fetchMu.Lock()
	defer c.fetchMu.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	if !c.stale() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.client.Timeout)
	defer cancel()

	fresh, err := c.fetch(ctx)
	if err != nil {
		// serve stale data in preference to failing visibly
		c.logger.Warn("rate feed fetch failed, serving stale rates",
			"error", err, "fetched_at", c.fetchedAtSafe())
		return
	}

	c.mu.Lock()
	c.rates = fresh
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	c.logger.Info("currency rates refreshed", "currencies", len(fresh))
}

func (c *Cache) fetch(ctx context.Context) (map[string]float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate feed request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate feed returned status %d", resp.StatusCode)
	}

	var feed feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode rate feed: %w", err)
	}
	if len(feed.Rates) == 0 {
		return nil, fmt.Errorf("rate feed returned no rates")
	}

	return feed.Rates, nil
}

func (c *Cache) stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Since(c.fetchedAt) >= c.refreshInterval || c.rates == nil
}

func (c *Cache) fetchedAtSafe() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetchedAt
}

// Seed primes the cache, used by tests and by deployments that prefer a fixed
// rate table over a live feed.
func (c *Cache) Seed(rates map[string]float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates = rates
	c.fetchedAt = time.Now()
}
