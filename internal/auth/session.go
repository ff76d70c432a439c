package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/billcraft/billcraft/internal/platform/kv"
)

const sessionKeyPrefix = "session:"

// SessionManager issues cookie sessions stored as JSON through the kv port.
// The backend has no expiry of its own, so the payload carries the deadline
// and stale sessions are discarded on load.
type SessionManager struct {
	logger     *slog.Logger
	kv         kv.Store
	cookieName string
	ttl        time.Duration
	secure     bool
}

type sessionPayload struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(logger *slog.Logger, backend kv.Store, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{
		logger:     logger,
		kv:         backend,
		cookieName: cookieName,
		ttl:        ttl,
		secure:     secure,
	}
}

// Create opens a session for userID and writes the cookie.
func (sm *SessionManager) Create(ctx context.Context, w http.ResponseWriter, userID string) error {
	id := uuid.NewString()
	payload, err := json.Marshal(sessionPayload{
		UserID:    userID,
		ExpiresAt: time.Now().Add(sm.ttl),
	})
	if err != nil {
		return err
	}
	if err := sm.kv.Set(ctx, sessionKeyPrefix+id, payload); err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(sm.ttl.Seconds()),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// UserID resolves the request's session cookie to a user id. Missing,
// unparseable, or expired sessions all read as unauthenticated.
func (sm *SessionManager) UserID(ctx context.Context, r *http.Request) (string, bool) {
	cookie, err := r.Cookie(sm.cookieName)
	if err != nil {
		return "", false
	}
	raw, err := sm.kv.Get(ctx, sessionKeyPrefix+cookie.Value)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			sm.logger.Warn("load session", slog.Any("error", err))
		}
		return "", false
	}
	var payload sessionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", false
	}
	if time.Now().After(payload.ExpiresAt) {
		_ = sm.kv.Delete(ctx, sessionKeyPrefix+cookie.Value)
		return "", false
	}
	return payload.UserID, true
}

// Destroy removes the session record and clears the cookie.
func (sm *SessionManager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sm.cookieName); err == nil {
		if err := sm.kv.Delete(ctx, sessionKeyPrefix+cookie.Value); err != nil {
			sm.logger.Warn("delete session", slog.Any("error", err))
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
}
