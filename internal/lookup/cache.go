package lookup

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// DefaultTimeout bounds a single upstream registration query. Unbounded
// waits are disallowed: a hung WHOIS server must not pin request
// goroutines.
const DefaultTimeout = 5 * time.Second

// warmConcurrency bounds parallel lookups during cache pre-warming.
const warmConcurrency = 8

// Provider performs one registration lookup against an external service.
type Provider interface {
	// Name identifies the provider in logs and the status endpoint.
	Name() string
	// Lookup returns textual registration data for a canonical domain.
	Lookup(ctx context.Context, domain string) (string, error)
}

type entry struct {
	record    Record
	fetchedAt time.Time
}

// Cache is a read-through cache of registration lookups keyed by domain.
// It is safe for concurrent use. Concurrent first lookups for the same
// domain are coalesced: at most one upstream query per key is in flight,
// and every waiting caller receives the identical Record.
type Cache struct {
	provider Provider
	timeout  time.Duration
	ttl      time.Duration // 0 means entries never expire
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

// NewCache builds a Cache over the given provider. timeout bounds each
// upstream query (DefaultTimeout when zero or negative). ttl bounds how
// long a record is served before being refetched; zero keeps records for
// the process lifetime.
func NewCache(provider Provider, timeout, ttl time.Duration, logger *slog.Logger) *Cache {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Cache{
		provider: provider,
		timeout:  timeout,
		ttl:      ttl,
		logger:   logger,
		entries:  make(map[string]entry),
	}
}

// Lookup returns the registration record for domain, querying the provider
// on a miss. It never returns an error: provider failures and timeouts are
// captured in the record's Status and cached like successes.
func (c *Cache) Lookup(ctx context.Context, domain string) Record {
	if rec, ok := c.get(domain); ok {
		return rec
	}

	// singleflight dedups concurrent misses on the same key. The shared
	// call runs detached from any one caller's context so that a client
	// disconnect still lets the result land in the cache, but stays
	// bounded by the lookup timeout.
	v, _, _ := c.group.Do(domain, func() (any, error) {
		if rec, ok := c.get(domain); ok {
			return rec, nil
		}
		rec := c.fetch(context.WithoutCancel(ctx), domain)
		c.put(domain, rec)
		return rec, nil
	})
	return v.(Record)
}

func (c *Cache) fetch(ctx context.Context, domain string) Record {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	data, err := c.provider.Lookup(ctx, domain)
	if err != nil {
		status := StatusFailed
		msg := "registration lookup failed"
		if errors.Is(err, context.DeadlineExceeded) {
			status = StatusUnavailable
			msg = "registration service unavailable"
		}
		c.logger.Warn("registration lookup failed",
			"domain", domain,
			"provider", c.provider.Name(),
			"status", string(status),
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		return Record{Domain: domain, Data: msg, Status: status}
	}

	c.logger.Debug("registration lookup completed",
		"domain", domain,
		"provider", c.provider.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Record{Domain: domain, Data: data, Status: StatusSuccess}
}

// Warm pre-populates the cache for the given domains, bounding the number
// of parallel upstream queries. Individual failures are cached as usual
// and do not abort the warm-up.
func (c *Cache) Warm(ctx context.Context, domains []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(warmConcurrency)
	for _, d := range domains {
		g.Go(func() error {
			c.Lookup(gctx, d)
			return gctx.Err()
		})
	}
	return g.Wait()
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// ProviderName returns the name of the backing provider.
func (c *Cache) ProviderName() string {
	return c.provider.Name()
}

func (c *Cache) get(domain string) (Record, bool) {
	c.mu.RLock()
	e, ok := c.entries[domain]
	c.mu.RUnlock()
	if !ok {
		return Record{}, false
	}
	if c.ttl > 0 && time.Since(e.fetchedAt) > c.ttl {
		return Record{}, false
	}
	return e.record, true
}

func (c *Cache) put(domain string, rec Record) {
	c.mu.Lock()
	c.entries[domain] = entry{record: rec, fetchedAt: time.Now()}
	c.mu.Unlock()
}
