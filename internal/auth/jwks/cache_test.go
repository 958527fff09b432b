package jwks_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"huddl/internal/auth/jwks"
	"huddl/internal/domain"
)

func newRSAKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func jwksDocument(keys map[string]*rsa.PublicKey) []byte {
	type jwk struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Use string `json:"use"`
		Alg string `json:"alg"`
		N   string `json:"n"`
		E   string `json:"e"`
	}
	doc := struct {
		Keys []jwk `json:"keys"`
	}{}
	for kid, pub := range keys {
		doc.Keys = append(doc.Keys, jwk{
			Kty: "RSA",
			Kid: kid,
			Use: "sig",
			Alg: "RS256",
			N:   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			E:   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		})
	}
	out, _ := json.Marshal(doc)
	return out
}

// jwksServer serves a mutable key set and counts fetches.
type jwksServer struct {
	mu       sync.Mutex
	keys     map[string]*rsa.PublicKey
	requests atomic.Int64
	status   atomic.Int64
	delay    time.Duration
	server   *httptest.Server
}

func newJWKSServer(t *testing.T, keys map[string]*rsa.PublicKey) *jwksServer {
	t.Helper()
	s := &jwksServer{keys: keys}
	s.status.Store(http.StatusOK)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.requests.Add(1)
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		if code := int(s.status.Load()); code != http.StatusOK {
			w.WriteHeader(code)
			return
		}
		s.mu.Lock()
		doc := jwksDocument(s.keys)
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(doc)
	}))
	t.Cleanup(s.server.Close)
	return s
}

func (s *jwksServer) setKeys(keys map[string]*rsa.PublicKey) {
	s.mu.Lock()
	s.keys = keys
	s.mu.Unlock()
}

func TestKey_FetchesOnFirstLookup(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	got, err := cache.Key(context.Background(), "kid-1")

	require.NoError(t, err)
	assert.Equal(t, 0, got.N.Cmp(key.PublicKey.N))
	assert.Equal(t, int64(1), srv.requests.Load())
}

func TestKey_CachedLookupDoesNotRefetch(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	_, err := cache.Key(context.Background(), "kid-1")
	require.NoError(t, err)
	_, err = cache.Key(context.Background(), "kid-1")
	require.NoError(t, err)

	assert.Equal(t, int64(1), srv.requests.Load())
}

func TestKey_UnknownKidAfterRefresh(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	_, err := cache.Key(context.Background(), "kid-unknown")

	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestKey_RotationSucceedsViaOnMissRefresh(t *testing.T) {
	oldKey := newRSAKey(t)
	newKey := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-old": &oldKey.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	_, err := cache.Key(context.Background(), "kid-old")
	require.NoError(t, err)

	// Provider rotates keys: the old kid disappears, a new one appears.
	srv.setKeys(map[string]*rsa.PublicKey{"kid-new": &newKey.PublicKey})

	got, err := cache.Key(context.Background(), "kid-new")
	require.NoError(t, err)
	assert.Equal(t, 0, got.N.Cmp(newKey.PublicKey.N))

	// The rotated-out key is gone: the set was replaced wholesale.
	_, err = cache.Key(context.Background(), "kid-old")
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
}

func TestKey_FetchFailureIsRetryableError(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	srv.status.Store(http.StatusInternalServerError)
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	_, err := cache.Key(context.Background(), "kid-1")

	assert.ErrorIs(t, err, domain.ErrKeyFetchFailed)
	// Fetch is attempted a bounded number of times, not once and not forever.
	assert.Equal(t, int64(2), srv.requests.Load())
}

func TestKey_ConcurrentMissesShareOneFetch(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	srv.delay = 50 * time.Millisecond
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(0))

	const callers = 16
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = cache.Key(context.Background(), "kid-1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int64(1), srv.requests.Load())
}

func TestStart_ProactiveRefreshPicksUpRotation(t *testing.T) {
	oldKey := newRSAKey(t)
	newKey := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-old": &oldKey.PublicKey})
	// With an hour of miss cooldown, the rotated kid can only become
	// resolvable through the background refresh, never via the miss path.
	cache := jwks.NewCache(srv.server.URL,
		jwks.WithRefreshInterval(20*time.Millisecond),
		jwks.WithMissCooldown(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := cache.Key(ctx, "kid-old")
	require.NoError(t, err)

	cache.Start(ctx)
	srv.setKeys(map[string]*rsa.PublicKey{"kid-new": &newKey.PublicKey})

	require.Eventually(t, func() bool {
		_, err := cache.Key(ctx, "kid-new")
		return err == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStart_CancelStopsRefreshLoop(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithRefreshInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cache.Start(ctx)

	require.Eventually(t, func() bool {
		return srv.requests.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	// Let any tick already in flight finish, then the count must hold still.
	time.Sleep(50 * time.Millisecond)
	settled := srv.requests.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, srv.requests.Load())
}

func TestStart_NonPositiveIntervalUsesDefault(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithRefreshInterval(0))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cache.Start(ctx)

	got, err := cache.Key(ctx, "kid-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.N.Cmp(key.PublicKey.N))
}

func TestKey_MissCooldownSuppressesRefetch(t *testing.T) {
	key := newRSAKey(t)
	srv := newJWKSServer(t, map[string]*rsa.PublicKey{"kid-1": &key.PublicKey})
	cache := jwks.NewCache(srv.server.URL, jwks.WithMissCooldown(time.Hour))

	_, err := cache.Key(context.Background(), "kid-1")
	require.NoError(t, err)

	_, err = cache.Key(context.Background(), "kid-unknown")
	assert.ErrorIs(t, err, domain.ErrUnknownKey)
	assert.Equal(t, int64(1), srv.requests.Load())
}
