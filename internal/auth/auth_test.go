package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"reelshelf/internal/database"
)

const (
	testSecret = "0123456789abcdef0123456789abcdef"
	testAppURL = "http://localhost:3000"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(testSecret, testAppURL)
	require.NoError(t, err)
	return issuer
}

type recordingMailer struct {
	address string
	link    string
	err     error
}

func (m *recordingMailer) SendMagicLink(ctx context.Context, address, link string) error {
	m.address = address
	m.link = link
	return m.err
}

func tokenFromLink(t *testing.T, link string) (string, string) {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("email"), u.Query().Get("token")
}

func TestNewTokenIssuerRejectsShortSecret(t *testing.T) {
	_, err := NewTokenIssuer("short", testAppURL)
	assert.Error(t, err)
}

func TestIssueAndParse(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	issuer := newTestIssuer(t)

	user, err := database.GetOrCreateUserByEmail(ctx, db, "a@example.com")
	require.NoError(t, err)
	session, err := database.CreateSession(ctx, db, user.ID, time.Hour)
	require.NoError(t, err)

	raw, err := issuer.Issue(session, user)
	require.NoError(t, err)

	validated, claims, err := issuer.Parse(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, validated.RegisteredClaims.Subject)
	assert.Equal(t, session.SessionToken, claims.SessionToken)
	assert.Equal(t, "a@example.com", claims.Email)

	other, err := NewTokenIssuer(strings.Repeat("x", 32), testAppURL)
	require.NoError(t, err)
	_, _, err = other.Parse(ctx, raw)
	assert.Error(t, err)
}

func TestDevLinkStoreConsumesOnRead(t *testing.T) {
	store := NewDevLinkStore(0, 0)
	store.SetDevMagicLink("Viewer@Example.com", "http://link")

	link, ok := store.GetDevMagicLink("viewer@example.com")
	require.True(t, ok)
	assert.Equal(t, "http://link", link)

	_, ok = store.GetDevMagicLink("viewer@example.com")
	assert.False(t, ok)
}

func TestMagicLinkFlow(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	mailer := &recordingMailer{}
	svc := NewMagicLinkService(db, mailer, nil, testAppURL, testSecret, false, zap.NewNop())

	require.NoError(t, svc.RequestSignIn(ctx, "Viewer@Example.com", "/watchlist"))
	assert.Equal(t, "viewer@example.com", mailer.address)
	assert.True(t, strings.HasPrefix(mailer.link, testAppURL+"/api/auth/callback/email?"))
	assert.Contains(t, mailer.link, "callbackUrl=%2Fwatchlist")

	email, token := tokenFromLink(t, mailer.link)
	session, user, err := svc.CompleteSignIn(ctx, email, token)
	require.NoError(t, err)
	assert.Equal(t, "viewer@example.com", user.Email)
	assert.NotNil(t, user.EmailVerified)
	assert.Equal(t, user.ID, session.UserID)
	assert.WithinDuration(t, time.Now().Add(SessionTTL), session.Expires, time.Minute)

	_, _, err = svc.CompleteSignIn(ctx, email, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMagicLinkWrongToken(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	svc := NewMagicLinkService(db, &recordingMailer{}, nil, testAppURL, testSecret, false, zap.NewNop())

	require.NoError(t, svc.RequestSignIn(ctx, "viewer@example.com", ""))

	_, _, err := svc.CompleteSignIn(ctx, "viewer@example.com", "not-the-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, _, err = svc.CompleteSignIn(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMagicLinkWithoutMailerUsesDevStore(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewDevLinkStore(16, time.Minute)
	svc := NewMagicLinkService(db, nil, links, testAppURL, testSecret, true, zap.NewNop())

	require.NoError(t, svc.RequestSignIn(ctx, "dev@example.com", ""))

	link, ok := links.GetDevMagicLink("dev@example.com")
	require.True(t, ok)
	email, token := tokenFromLink(t, link)
	_, _, err := svc.CompleteSignIn(ctx, email, token)
	assert.NoError(t, err)
}

func TestMagicLinkWithoutMailerOutsideDevelopment(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	links := NewDevLinkStore(16, time.Minute)
	core, logs := observer.New(zap.DebugLevel)
	svc := NewMagicLinkService(db, nil, links, testAppURL, testSecret, false, zap.New(core))

	require.NoError(t, svc.RequestSignIn(ctx, "prod@example.com", ""))

	_, ok := links.GetDevMagicLink("prod@example.com")
	assert.False(t, ok)
	require.NotZero(t, logs.Len())
	for _, entry := range logs.All() {
		assert.NotContains(t, entry.ContextMap(), "url")
		for _, v := range entry.ContextMap() {
			assert.NotContains(t, fmt.Sprint(v), "token=")
		}
	}
}

func TestMagicLinkMailerError(t *testing.T) {
	db := openTestDB(t)
	svc := NewMagicLinkService(db, &recordingMailer{err: errors.New("boom")}, nil, testAppURL, testSecret, false, zap.NewNop())

	err := svc.RequestSignIn(context.Background(), "viewer@example.com", "")
	assert.Error(t, err)
}

func TestSafeCallbackURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/"},
		{"/watchlist", "/watchlist"},
		{"//evil.example.com", "/"},
		{"https://evil.example.com/x", "/"},
		{testAppURL + "/details/movie/1?x=1", "/details/movie/1?x=1"},
		{testAppURL, "/"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SafeCallbackURL(tt.raw, testAppURL), tt.raw)
	}
}

func TestRequireAuth(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	issuer := newTestIssuer(t)
	mw := NewMiddleware(issuer, db, zap.NewNop())

	user, err := database.GetOrCreateUserByEmail(ctx, db, "a@example.com")
	require.NoError(t, err)
	session, err := database.CreateSession(ctx, db, user.ID, time.Hour)
	require.NoError(t, err)
	raw, err := issuer.Issue(session, user)
	require.NoError(t, err)

	var seen *User
	handler := mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, err = GetUserFromContext(r.Context())
		require.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/watchlist", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		require.NotNil(t, seen)
		assert.Equal(t, user.ID, seen.ID)
	})

	t.Run("bearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
		req.Header.Set("Authorization", "Bearer "+raw)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("deleted session", func(t *testing.T) {
		require.NoError(t, database.DeleteSession(ctx, db, session.SessionToken))
		req := httptest.NewRequest(http.MethodGet, "/api/watchlist", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: raw})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		_, err := mw.CurrentUser(req)
		assert.ErrorIs(t, err, database.ErrNotFound)
	})
}
