package verification

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// mockFetcher serves canned bodies per URL and counts calls.
type mockFetcher struct {
	mu        sync.Mutex
	responses map[string][]byte
	err       error
	calls     map[string]int
}

func newMockFetcher() *mockFetcher {
	return &mockFetcher{
		responses: make(map[string][]byte),
		calls:     make(map[string]int),
	}
}

func (m *mockFetcher) Fetch(_ context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls[url]++
	if m.err != nil {
		return nil, m.err
	}
	body, ok := m.responses[url]
	if !ok {
		return nil, fmt.Errorf("server returned status: 404")
	}
	return body, nil
}

func (m *mockFetcher) set(url string, body []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[url] = body
}

func (m *mockFetcher) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockFetcher) callCount(url string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[url]
}

// mockClock is a manually advanced clock.
type mockClock struct {
	mu  sync.Mutex
	now time.Time
}

func newMockClock() *mockClock {
	return &mockClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *mockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *mockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testKey is an Ed25519 key pair published under kid.
type testKey struct {
	kid     string
	public  ed25519.PublicKey
	private ed25519.PrivateKey
}

func newTestKey(kid string) testKey {
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}
	return testKey{kid: kid, public: public, private: private}
}

func (k testKey) sign(message string) RawURLBase64 {
	return EncodeRawURL(ed25519.Sign(k.private, []byte(message)))
}

func (k testKey) jwk() JWK {
	return JWK{KeyID: k.kid, X: EncodeRawURL(k.public), KTY: "OKP", CRV: "Ed25519"}
}

func keySetJSON(keys ...testKey) []byte {
	ks := KeySet{Keys: make([]JWK, 0, len(keys))}
	for _, k := range keys {
		ks.Keys = append(ks.Keys, k.jwk())
	}
	data, err := json.Marshal(ks)
	if err != nil {
		panic(err)
	}
	return data
}

func trustedServerExt(signature RawURLBase64, kid string) []byte {
	block := map[string]any{}
	if signature != "" {
		block["signature"] = signature.String()
	}
	if kid != "" {
		block["kid"] = kid
	}
	data, err := json.Marshal(map[string]any{"trusted_server": block})
	if err != nil {
		panic(err)
	}
	return data
}
