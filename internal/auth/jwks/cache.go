// Package jwks caches a provider's published JSON Web Key Set, keyed by
// key-ID. One long-lived Cache exists per provider per process.
package jwks

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"huddl/internal/domain"
)

const (
	defaultRefreshInterval = time.Hour
	defaultFetchTimeout    = 10 * time.Second
	fetchAttempts          = 2

	// defaultMissCooldown bounds how often an unknown key-ID can trigger a
	// fetch, so a stream of hostile tokens cannot hammer the provider
	// endpoint.
	defaultMissCooldown = 30 * time.Second
)

// Cache fetches and caches one provider's signing keys. Lookups that miss
// trigger at most one concurrent refresh; other callers wait on the in-flight
// fetch instead of issuing duplicates.
type Cache struct {
	url        string
	httpClient *http.Client

	refreshInterval time.Duration
	missCooldown    time.Duration
	group           singleflight.Group

	mu        sync.RWMutex
	keys      map[string]*rsa.PublicKey
	fetchedAt time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithRefreshInterval sets the proactive refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *Cache) { c.refreshInterval = d }
}

// WithHTTPClient overrides the HTTP client used for JWKS fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Cache) { c.httpClient = client }
}

// WithMissCooldown sets the minimum delay between miss-triggered fetches.
func WithMissCooldown(d time.Duration) Option {
	return func(c *Cache) { c.missCooldown = d }
}

// NewCache creates a cache for the JWKS endpoint at url. The cache starts
// empty; the first lookup populates it.
func NewCache(url string, opts ...Option) *Cache {
	c := &Cache{
		url:             url,
		httpClient:      &http.Client{Timeout: defaultFetchTimeout},
		refreshInterval: defaultRefreshInterval,
		missCooldown:    defaultMissCooldown,
		keys:            map[string]*rsa.PublicKey{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the public key for kid. An unknown kid triggers one shared
// refresh and a single retry against the refreshed set; a key absent after
// that is domain.ErrUnknownKey. A stale key is never returned as a guess.
func (c *Cache) Key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	fetchedAt := c.fetchedAt
	c.mu.RUnlock()
	if ok {
		return key, nil
	}

	if time.Since(fetchedAt) < c.missCooldown {
		return nil, domain.ErrUnknownKey
	}

	if err := c.refresh(ctx); err != nil {
		return nil, err
	}

	c.mu.RLock()
	key, ok = c.keys[kid]
	c.mu.RUnlock()
	if !ok {
		return nil, domain.ErrUnknownKey
	}
	return key, nil
}

// Start refreshes the key set on a fixed interval until ctx is cancelled,
// so provider key rotation is tolerated before a miss ever occurs. A
// non-positive interval, such as an unparseable config value decoded to
// zero, falls back to the default instead of crashing the ticker.
func (c *Cache) Start(ctx context.Context) {
	interval := c.refreshInterval
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.refresh(ctx); err != nil {
					log.Printf("jwks: scheduled refresh of %s failed: %v", c.url, err)
				}
			}
		}
	}()
}

// refresh fetches the key set and replaces the cached map wholesale, so a
// half-updated set is never served. Concurrent callers share one fetch.
func (c *Cache) refresh(ctx context.Context) error {
	_, err, _ := c.group.Do("refresh", func() (interface{}, error) {
		keys, err := c.fetch(ctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.keys = keys
		c.fetchedAt = time.Now()
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

func (c *Cache) fetch(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	var lastErr error
	for attempt := 0; attempt < fetchAttempts; attempt++ {
		keys, err := c.fetchOnce(ctx)
		if err == nil {
			return keys, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrKeyFetchFailed, lastErr)
}

func (c *Cache) fetchOnce(ctx context.Context) (map[string]*rsa.PublicKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating jwks request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching jwks: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("jwks endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		Keys []jwk `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding jwks response: %w", err)
	}
	if len(payload.Keys) == 0 {
		return nil, errors.New("jwks response contained no keys")
	}

	keys := make(map[string]*rsa.PublicKey, len(payload.Keys))
	for _, k := range payload.Keys {
		key, err := k.toPublicKey()
		if err != nil {
			// Skip keys we cannot use (e.g. EC keys); both Google and
			// Apple sign ID tokens with RSA.
			continue
		}
		keys[k.Kid] = key
	}
	if len(keys) == 0 {
		return nil, errors.New("jwks response contained no usable RSA keys")
	}
	return keys, nil
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (k jwk) toPublicKey() (*rsa.PublicKey, error) {
	if k.Kty != "RSA" {
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}

	nb, err := base64.RawURLEncoding.DecodeString(k.N)
	if err != nil {
		return nil, fmt.Errorf("decoding modulus: %w", err)
	}
	eb, err := base64.RawURLEncoding.DecodeString(k.E)
	if err != nil {
		return nil, fmt.Errorf("decoding exponent: %w", err)
	}

	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: e}, nil
}
