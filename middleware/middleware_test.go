package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"agrilink-storefront/models"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedUser struct{ user *models.User }

func (f fixedUser) User() *models.User { return f.user }

func okHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := CurrentUser(r)
		if assert.True(t, ok) {
			w.Header().Set("X-User", user.ID)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireSession(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireSession(fixedUser{})(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	RequireSession(fixedUser{&models.User{ID: "u1", Role: models.RoleBuyer}})(okHandler(t)).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "u1", rec.Header().Get("X-User"))
}

func TestRequireRole(t *testing.T) {
	chain := func(u *models.User) http.Handler {
		return RequireSession(fixedUser{u})(RequireRole(models.RoleFarmer)(okHandler(t)))
	}

	rec := httptest.NewRecorder()
	chain(&models.User{ID: "u1", Role: models.RoleBuyer}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "farmers only")

	rec = httptest.NewRecorder()
	chain(&models.User{ID: "u2", Role: models.RoleFarmer}).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	rec := httptest.NewRecorder()
	RequireRole(models.RoleFarmer)(okHandler(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	logger, hook := test.NewNullLogger()
	handler := RequestLogger(logrus.NewEntry(logger))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	req := httptest.NewRequest(http.MethodGet, "/orders/mine", nil)
	req.Header.Set("X-Request-ID", "req-7")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, http.StatusBadGateway, entry.Data["status"])
	assert.Equal(t, "/orders/mine", entry.Data["path"])
	assert.Equal(t, "req-7", rec.Header().Get("X-Request-ID"))
}
