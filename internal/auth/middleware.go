package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"go.uber.org/zap"

	"reelshelf/internal/database"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

// SessionCookieName holds the session JWT in the browser.
const SessionCookieName = "session-token"

// User is the signed-in user attached to a request context.
type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         *string `json:"name"`
	Image        *string `json:"image"`
	SessionToken string  `json:"-"`
}

type userContextKey struct{}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

func GetUserFromContext(ctx context.Context) (*User, error) {
	user, ok := ctx.Value(userContextKey{}).(*User)
	if !ok || user == nil {
		return nil, fmt.Errorf("no session user in context")
	}
	return user, nil
}

// Middleware checks the session JWT and the session row it references.
type Middleware struct {
	issuer    *TokenIssuer
	jwt       *jwtmiddleware.JWTMiddleware
	extractor jwtmiddleware.TokenExtractor
	db        *sql.DB
	log       *zap.Logger
}

func NewMiddleware(issuer *TokenIssuer, db *sql.DB, log *zap.Logger) *Middleware {
	extractor := jwtmiddleware.MultiTokenExtractor(
		jwtmiddleware.AuthHeaderTokenExtractor,
		jwtmiddleware.CookieTokenExtractor(SessionCookieName),
	)

	return &Middleware{
		issuer:    issuer,
		extractor: extractor,
		db:        db,
		log:       log,
		jwt: jwtmiddleware.New(
			issuer.ValidateToken,
			jwtmiddleware.WithTokenExtractor(extractor),
			jwtmiddleware.WithErrorHandler(unauthorized),
		),
	}
}

// RequireAuth rejects requests without a valid, unexpired session with 401.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return m.jwt.CheckJWT(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := sessionClaims(r.Context().Value(jwtmiddleware.ContextKey{}))
		if err != nil {
			unauthorized(w, r, err)
			return
		}

		user, err := m.lookup(r.Context(), claims.SessionToken)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				unauthorized(w, r, err)
				return
			}
			m.log.Error("session lookup failed", zap.Error(err))
			utils.RespondError(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	}))
}

// CurrentUser resolves the session user for routes where signing in is optional.
// It returns database.ErrNotFound when the request carries no usable session.
func (m *Middleware) CurrentUser(r *http.Request) (*User, error) {
	token, err := m.extractor(r)
	if err != nil || token == "" {
		return nil, database.ErrNotFound
	}
	_, claims, err := m.issuer.Parse(r.Context(), token)
	if err != nil {
		return nil, database.ErrNotFound
	}
	return m.lookup(r.Context(), claims.SessionToken)
}

func (m *Middleware) lookup(ctx context.Context, sessionToken string) (*User, error) {
	_, user, err := database.GetSessionAndUser(ctx, m.db, sessionToken)
	if err != nil {
		return nil, err
	}
	return newSessionUser(user, sessionToken), nil
}

func newSessionUser(user *types.User, sessionToken string) *User {
	return &User{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		Image:        user.Image,
		SessionToken: sessionToken,
	}
}

// SetSessionCookie stores the session JWT in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	utils.RespondError(w, "Unauthorized", http.StatusUnauthorized)
}
