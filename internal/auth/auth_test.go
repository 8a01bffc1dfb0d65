package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRequest(t *testing.T, s *Sessions, uid uint) *http.Request {
	t.Helper()
	rr := httptest.NewRecorder()
	s.Create(rr, uid)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	req := httptest.NewRequest(http.MethodGet, "/repairs", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	s := NewSessions("secret", time.Hour)
	uid, ok := s.Parse(sessionRequest(t, s, 42))
	assert.True(t, ok)
	assert.Equal(t, uint(42), uid)
}

func TestSessionRejectsForeignSignature(t *testing.T) {
	req := sessionRequest(t, NewSessions("one", time.Hour), 42)
	_, ok := NewSessions("two", time.Hour).Parse(req)
	assert.False(t, ok)
}

func TestSessionExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	s := NewSessions("secret", time.Hour).WithClock(func() time.Time { return now })
	req := sessionRequest(t, s, 3)
	now = now.Add(2 * time.Hour)
	_, ok := s.Parse(req)
	assert.False(t, ok)
}

func TestRequireAuth(t *testing.T) {
	s := NewSessions("secret", time.Hour).WithVerifier(func(_ context.Context, uid uint) bool { return uid == 1 })
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := s.Middleware(s.RequireAuth(ok))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/repairs", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, sessionRequest(t, s, 1))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, sessionRequest(t, s, 2))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
	uid, ok := UserIDFromContext(WithUserID(context.Background(), 9))
	assert.True(t, ok)
	assert.Equal(t, uint(9), uid)
}
