package stores

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"agrilink-storefront/api"
	"agrilink-storefront/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

const (
	productA = "64b7f0c2e4b0a1a2b3c4d5e6"
	productB = "64b7f0c2e4b0a1a2b3c4d5e7"
	orderID  = "650000000000000000000001"
)

// backend is a fake marketplace API counting the requests it serves
type backend struct {
	mux  *http.ServeMux
	hits int32
}

func newBackend() *backend {
	return &backend{mux: http.NewServeMux()}
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&b.hits, 1)
	b.mux.ServeHTTP(w, r)
}

func (b *backend) Hits() int {
	return int(atomic.LoadInt32(&b.hits))
}

func (b *backend) handle(pattern string, status int, body interface{}) {
	b.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type harness struct {
	backend *backend
	client  *api.Client
	storage *storage.MemoryStore
	log     *logrus.Entry
	hook    *test.Hook
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	b := newBackend()
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	st := storage.NewMemoryStore()
	client, err := api.NewClient(api.Config{BaseURL: srv.URL + "/api/v1", Timeout: 5 * time.Second}, st, logrus.NewEntry(logger))
	require.NoError(t, err)

	return &harness{backend: b, client: client, storage: st, log: logrus.NewEntry(logger), hook: hook}
}

func bearer(t *testing.T, role string, expires time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"id": "u1", "role": role, "exp": expires.Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

// failingStore accepts reads but rejects every write
type failingStore struct {
	*storage.MemoryStore
}

func (failingStore) Set(context.Context, string, string) error {
	return errors.New("disk full")
}
