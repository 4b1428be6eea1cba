package verification

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultKeySetTTL is how long a fetched key set is served from cache.
	DefaultKeySetTTL = 10 * time.Minute

	// DefaultKeySetScheme and DefaultKeySetNamespace build http://<domain>/.well-known/ts.jwks.json.
	DefaultKeySetScheme    = "http"
	DefaultKeySetNamespace = "ts"
)

// Clock provides the current time. This interface enables deterministic TTL tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// CacheResult classifies a key-set lookup.
type CacheResult string

const (
	CacheHit     CacheResult = "hit"
	CacheMiss    CacheResult = "miss"
	CacheExpired CacheResult = "expired"
)

// CacheObserver is notified of lookups and fetches, e.g. to record metrics.
type CacheObserver interface {
	KeySetLookup(domain string, result CacheResult)
	KeySetFetch(domain string, duration time.Duration, err error)
}

type keySetEntry struct {
	keySet    *KeySet
	fetchedAt time.Time
}

// KeySetCache caches one key set per trust domain for a fixed TTL.
// Expired entries are refreshed synchronously by the next caller and a failed
// refresh is returned as an error; a stale entry is never served.
type KeySetCache struct {
	fetcher   Fetcher
	clock     Clock
	ttl       time.Duration
	scheme    string
	namespace string
	observer  CacheObserver
	group     *singleflight.Group

	mu      sync.Mutex
	entries map[string]keySetEntry
}

// CacheOption configures a KeySetCache.
type CacheOption func(*KeySetCache)

// WithClock replaces the wall clock.
func WithClock(clock Clock) CacheOption {
	return func(c *KeySetCache) { c.clock = clock }
}

// WithTTL overrides DefaultKeySetTTL.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *KeySetCache) { c.ttl = ttl }
}

// WithScheme sets the URL scheme used to reach the well-known document.
func WithScheme(scheme string) CacheOption {
	return func(c *KeySetCache) { c.scheme = scheme }
}

// WithNamespace sets the <namespace> in /.well-known/<namespace>.jwks.json.
func WithNamespace(namespace string) CacheOption {
	return func(c *KeySetCache) { c.namespace = namespace }
}

// WithObserver registers an observer for lookups and fetches.
func WithObserver(observer CacheObserver) CacheOption {
	return func(c *KeySetCache) { c.observer = observer }
}

// WithSingleFlight collapses concurrent refreshes of the same domain into one fetch.
// The shared fetch keeps the starting caller's values but not its cancellation,
// so one caller giving up does not fail the others; the fetcher's own timeout bounds it.
func WithSingleFlight() CacheOption {
	return func(c *KeySetCache) { c.group = &singleflight.Group{} }
}

// NewKeySetCache creates an empty cache backed by fetcher.
func NewKeySetCache(fetcher Fetcher, opts ...CacheOption) *KeySetCache {
	c := &KeySetCache{
		fetcher:   fetcher,
		clock:     systemClock{},
		ttl:       DefaultKeySetTTL,
		scheme:    DefaultKeySetScheme,
		namespace: DefaultKeySetNamespace,
		entries:   make(map[string]keySetEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the key set for domain, fetching it when absent or older than the TTL.
func (c *KeySetCache) Get(ctx context.Context, domain string) (*KeySet, error) {
	if domain == "" {
		return nil, &VerificationError{Kind: KindNoDomain}
	}

	c.mu.Lock()
	entry, ok := c.entries[domain]
	c.mu.Unlock()

	switch {
	case ok && c.clock.Now().Sub(entry.fetchedAt) < c.ttl:
		c.observeLookup(domain, CacheHit)
		return entry.keySet, nil
	case ok:
		c.observeLookup(domain, CacheExpired)
	default:
		c.observeLookup(domain, CacheMiss)
	}

	if c.group == nil {
		return c.refresh(ctx, domain)
	}

	v, err, _ := c.group.Do(domain, func() (any, error) {
		return c.refresh(context.WithoutCancel(ctx), domain)
	})
	if err != nil {
		return nil, err
	}
	return v.(*KeySet), nil
}

// URL returns the key-set location this cache uses for domain.
func (c *KeySetCache) URL(domain string) string {
	return KeySetURL(c.scheme, domain, c.namespace)
}

// Len returns the number of cached domains, expired entries included.
func (c *KeySetCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *KeySetCache) refresh(ctx context.Context, domain string) (*KeySet, error) {
	start := c.clock.Now()
	keySet, err := c.fetch(ctx, domain)
	if c.observer != nil {
		c.observer.KeySetFetch(domain, c.clock.Now().Sub(start), err)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[domain] = keySetEntry{keySet: keySet, fetchedAt: c.clock.Now()}
	c.mu.Unlock()

	return keySet, nil
}

func (c *KeySetCache) fetch(ctx context.Context, domain string) (*KeySet, error) {
	url := c.URL(domain)

	body, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, transportError(err, "JWKS fetch failed for %s", url)
	}

	keySet, err := ParseKeySet(body)
	if err != nil {
		return nil, transportError(err, "JWKS parse failed for %s", url)
	}

	return keySet, nil
}

func (c *KeySetCache) observeLookup(domain string, result CacheResult) {
	if c.observer != nil {
		c.observer.KeySetLookup(domain, result)
	}
}
