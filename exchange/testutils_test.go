package exchange

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stackpop/mocktioneer/config"
	"github.com/stackpop/mocktioneer/metrics"
	"github.com/stackpop/mocktioneer/verification"
)

const testPublisherDomain = "publisher.test"

// staticKeySource serves a fixed key set for every domain.
type staticKeySource struct {
	keySet *verification.KeySet
}

func (s *staticKeySource) Get(_ context.Context, _ string) (*verification.KeySet, error) {
	return s.keySet, nil
}

type signingKey struct {
	kid     string
	private ed25519.PrivateKey
	public  ed25519.PublicKey
}

func newSigningKey(t *testing.T, kid string) signingKey {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return signingKey{kid: kid, private: private, public: public}
}

func (k signingKey) keySource() *staticKeySource {
	return &staticKeySource{keySet: &verification.KeySet{Keys: []verification.JWK{{
		KeyID: k.kid,
		KTY:   "OKP",
		CRV:   "Ed25519",
		X:     verification.EncodeRawURL(k.public),
	}}}}
}

func (k signingKey) sign(requestID string) string {
	return verification.EncodeRawURL(ed25519.Sign(k.private, []byte(requestID))).String()
}

func testConfig() *config.ExchangeConfig {
	return &config.ExchangeConfig{
		HttpServer: config.HttpServer{
			Host:                  "127.0.0.1",
			Port:                  8080,
			RequestTimeout:        5 * time.Second,
			ShutdownTimeout:       time.Second,
			MaxConcurrentRequests: 16,
		},
		LogConfig:      config.LogConfig{Level: "info", Format: "text"},
		DefaultHost:    config.DefaultHost,
		MetricsEnabled: true,
	}
}

func newTestServer(t *testing.T, keys verification.KeySetSource) *Server {
	t.Helper()
	return newTestServerWithConfig(t, testConfig(), keys)
}

func newTestServerWithConfig(t *testing.T, cfg *config.ExchangeConfig, keys verification.KeySetSource) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	if keys == nil {
		keys = &staticKeySource{keySet: &verification.KeySet{}}
	}
	return NewServer(cfg, logger, metrics.NewMetrics(), verification.NewVerifier(keys))
}

func doRequest(s *Server, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Host = "test.local"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}
