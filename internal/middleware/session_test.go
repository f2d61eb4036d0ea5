package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/models"
)

func newSessionStack(t *testing.T) (http.Handler, string, *models.Identity) {
	t.Helper()

	issuer, err := auth.NewTokenIssuer("middleware-secret", time.Minute)
	require.NoError(t, err)
	manager := auth.NewManager(issuer, time.Hour, auth.NewInMemorySessionStore())

	identity := models.Identity{ID: "user-1", Email: "user@example.com"}
	token, _, err := issuer.Sign(identity)
	require.NoError(t, err)

	seen := &models.Identity{}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, _ = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	return Session(manager, auth.DefaultRoutePolicy())(next), token, seen
}

func TestSessionAllowsPublicPaths(t *testing.T) {
	t.Parallel()

	handler, _, _ := newSessionStack(t)
	for _, path := range []string{"/", "/login", "/register", "/api/auth/login", "/api/videos", "/healthz", "/static/app.js", "/favicon.ico"} {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNoContent, rec.Code, path)
	}
}

func TestSessionRedirectsWithoutToken(t *testing.T) {
	t.Parallel()

	handler, _, _ := newSessionStack(t)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard?tab=uploads", nil))

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login?callbackUrl=%2Fdashboard%3Ftab%3Duploads", rec.Header().Get("Location"))
}

func TestSessionRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	handler, _, _ := newSessionStack(t)
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer forged.token.value")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
}

func TestSessionAcceptsBearerAndCookie(t *testing.T) {
	t.Parallel()

	handler, token, seen := newSessionStack(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "user-1", seen.ID)

	*seen = models.Identity{}
	req = httptest.NewRequest(http.MethodGet, "/api/upload-auth", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, models.Identity{ID: "user-1", Email: "user@example.com"}, *seen)
}

func TestSessionAttachesIdentityOnPublicPaths(t *testing.T) {
	t.Parallel()

	handler, token, seen := newSessionStack(t)
	req := httptest.NewRequest(http.MethodPost, "/api/videos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "user-1", seen.ID)
}
