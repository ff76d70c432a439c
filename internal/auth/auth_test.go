package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billcraft/billcraft/internal/platform/kv"
)

func newTestHandler(t *testing.T) (*Handler, *SessionManager, *Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service, err := NewService("admin", "admin123", "Administrator")
	require.NoError(t, err)
	sessions := NewSessionManager(logger, kv.NewMemory(), "billcraft_session", time.Hour, false)
	return NewHandler(logger, service, sessions), sessions, service
}

func TestAuthenticate(t *testing.T) {
	service, err := NewService("admin", "admin123", "Administrator")
	require.NoError(t, err)

	user, err := service.Authenticate("admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, "admin", user.Role)

	_, err = service.Authenticate("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Authenticate("nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginLogoutFlow(t *testing.T) {
	handler, _, _ := newTestHandler(t)
	router := chi.NewRouter()
	router.Route("/auth", handler.MountRoutes)

	// Bad credentials.
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`))
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Good credentials set a session cookie.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"admin123"}`))
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	// The session resolves via /me.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"admin"`)

	// Logout invalidates it.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(cookies[0])
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionExpiry(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := NewSessionManager(logger, kv.NewMemory(), "billcraft_session", -time.Minute, false)

	rec := httptest.NewRecorder()
	require.NoError(t, sessions.Create(t.Context(), rec, "1"))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	_, ok := sessions.UserID(t.Context(), req)
	assert.False(t, ok, "expired session must not resolve")
}

func TestRequireUserMiddleware(t *testing.T) {
	_, sessions, service := newTestHandler(t)

	mw := Middleware{Sessions: sessions, Service: service}
	var reached bool
	protected := mw.RequireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		user := UserFromContext(r.Context())
		require.NotNil(t, user)
		assert.Equal(t, "admin", user.Username)
	}))

	// No cookie → 401.
	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/quotations", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, reached)

	// Live session → passes through with the user in context.
	loginRec := httptest.NewRecorder()
	require.NoError(t, sessions.Create(t.Context(), loginRec, "1"))
	req := httptest.NewRequest(http.MethodGet, "/api/quotations", nil)
	req.AddCookie(loginRec.Result().Cookies()[0])

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, req)
	assert.True(t, reached)
}
