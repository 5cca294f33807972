package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"agrilink-storefront/models"
	"agrilink-storefront/storage"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *storage.MemoryStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger, _ := test.NewNullLogger()
	creds := storage.NewMemoryStore()
	c, err := NewClient(Config{BaseURL: srv.URL + "/api/v1"}, creds, logrus.NewEntry(logger))
	require.NoError(t, err)
	return c, creds
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := NewClient(Config{BaseURL: "not a url"}, storage.NewMemoryStore(), logrus.NewEntry(logger))
	assert.Error(t, err)

	_, err = NewClient(Config{BaseURL: "http://localhost"}, nil, logrus.NewEntry(logger))
	assert.Error(t, err)
}

func TestDoAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotPath string
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]string{"_id": "u1", "email": "a@b.co", "role": "buyer"}})
	}))
	require.NoError(t, creds.Set(context.Background(), storage.TokenKey, "tok-123"))

	user, err := c.Me(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "/api/v1/auth/me", gotPath)
	assert.Equal(t, models.RoleBuyer, user.Role)
}

func TestDoOmitsBearerWithoutCredential(t *testing.T) {
	var gotAuth string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(w, http.StatusOK, []interface{}{})
	}))

	_, err := c.ListProducts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsCredentialAndFiresOnce(t *testing.T) {
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "jwt expired"})
	}))
	require.NoError(t, creds.Set(context.Background(), storage.TokenKey, "stale"))

	var fired int32
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	_, err := c.MyOrders(context.Background())
	require.Error(t, err)

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.Equal(t, "jwt expired", re.Message)
	assert.Equal(t, int32(1), atomic.LoadInt32(&fired))

	_, ok, err := storage.Lookup(context.Background(), creds, storage.TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLateUnauthorizedKeepsNewerCredential(t *testing.T) {
	var creds *storage.MemoryStore
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a sign-in completes while the stale request is in flight
		creds.Set(context.Background(), storage.TokenKey, "fresh")
		writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"success": false, "message": "jwt expired"})
	}))
	require.NoError(t, creds.Set(context.Background(), storage.TokenKey, "stale"))

	var fired int32
	c.OnUnauthorized(func() { atomic.AddInt32(&fired, 1) })

	_, err := c.MyOrders(context.Background())

	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusUnauthorized, re.Status)
	assert.Zero(t, atomic.LoadInt32(&fired))

	token, ok, err := storage.Lookup(context.Background(), creds, storage.TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "fresh", token)
}

func TestResponseErrorCarriesFieldErrors(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"errors":  []map[string]string{{"msg": "email is invalid"}, {"msg": "contact is required"}},
		})
	}))

	_, _, err := c.Register(context.Background(), models.Registration{Email: "x"})
	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, []string{"email is invalid", "contact is required"}, re.Errors)
	assert.Equal(t, http.StatusBadRequest, StatusOf(err))
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	logger, _ := test.NewNullLogger()
	c, err := NewClient(Config{BaseURL: url}, storage.NewMemoryStore(), logrus.NewEntry(logger))
	require.NoError(t, err)

	_, err = c.Me(context.Background())
	var ne *NetworkError
	assert.True(t, errors.As(err, &ne))
	assert.Equal(t, 0, StatusOf(err))
}

func TestMeRejectsUnexpectedShape(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true})
	}))

	_, err := c.Me(context.Background())
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestLoginRequiresTokenAndUser(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": map[string]string{"token": "t"}})
	}))

	_, err := c.Login(context.Background(), "a@b.co", "pw")
	assert.True(t, errors.Is(err, ErrMalformedResponse))
}

func TestDecodeListShapes(t *testing.T) {
	bodies := map[string]interface{}{
		"bare":      []map[string]string{{"_id": "p1", "name": "Kale"}},
		"data":      map[string]interface{}{"success": true, "data": []map[string]string{{"_id": "p1", "name": "Kale"}}},
		"paginated": map[string]interface{}{"success": true, "data": map[string]interface{}{"docs": []map[string]string{{"_id": "p1", "name": "Kale"}}}},
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			}))

			products, err := c.ListProducts(context.Background(), nil)
			require.NoError(t, err)
			require.Len(t, products, 1)
			assert.Equal(t, "p1", products[0].ID)
		})
	}
}

func TestListProductsNearby(t *testing.T) {
	var query map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"lat":      r.URL.Query().Get("lat"),
			"lng":      r.URL.Query().Get("lng"),
			"distance": r.URL.Query().Get("distance"),
		}
		writeJSON(w, http.StatusOK, []interface{}{})
	}))

	_, err := c.ListProducts(context.Background(), &models.NearbyQuery{Lat: -1.29, Lng: 36.82, Distance: 30})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"lat": "-1.29", "lng": "36.82", "distance": "30"}, query)
}

func TestCreateOrderReadsNestedOrder(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"message": "Order created successfully",
			"data":    map[string]interface{}{"order": map[string]string{"_id": "64b7f0c2a1e4c3d2b1a09f87", "status": "pending"}},
		})
	}))

	order, msg, err := c.CreateOrder(context.Background(), models.OrderRequest{})
	require.NoError(t, err)
	assert.Equal(t, "64b7f0c2a1e4c3d2b1a09f87", order.ID)
	assert.Equal(t, models.StatusPending, order.Status)
	assert.Equal(t, "Order created successfully", msg)
}

func TestProcessPaymentUnsuccessfulBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": false, "message": "card declined"})
	}))

	_, err := c.ProcessPayment(context.Background(), models.Payment{OrderID: "o1"})
	var re *ResponseError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "card declined", re.Message)
}
