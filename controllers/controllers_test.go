package controllers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agrilink-storefront/stores"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	cases := map[stores.Kind]int{
		stores.KindValidation:        http.StatusBadRequest,
		stores.KindInvalidInput:      http.StatusBadRequest,
		stores.KindEmptyCart:         http.StatusBadRequest,
		stores.KindIncompleteAddress: http.StatusBadRequest,
		stores.KindAuth:              http.StatusUnauthorized,
		stores.KindRateLimit:         http.StatusTooManyRequests,
		stores.KindServer:            http.StatusBadGateway,
		stores.KindNetwork:           http.StatusServiceUnavailable,
	}
	for kind, want := range cases {
		assert.Equal(t, want, statusFor(kind), string(kind))
	}
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, &stores.Error{Kind: stores.KindIncompleteAddress, Message: "Please complete your shipping address", Fields: []string{"city"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Please complete your shipping address","errors":["city"],"kind":"IncompleteAddress"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeError(rec, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNearbyQuery(t *testing.T) {
	near, ok := nearbyQuery(httptest.NewRequest(http.MethodGet, "/products", nil))
	assert.True(t, ok)
	assert.Nil(t, near)

	near, ok = nearbyQuery(httptest.NewRequest(http.MethodGet, "/products?lat=5.6&lng=-0.2", nil))
	assert.True(t, ok)
	assert.Equal(t, float64(defaultNearbyKm), near.Distance)

	_, ok = nearbyQuery(httptest.NewRequest(http.MethodGet, "/products?lat=north&lng=1", nil))
	assert.False(t, ok)
}
