package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	jose "gopkg.in/go-jose/go-jose.v2"
	"gopkg.in/go-jose/go-jose.v2/jwt"

	"reelshelf/internal/types"
)

const tokenAudience = "reelshelf"

// SessionClaims are the custom claims carried by a session JWT.
type SessionClaims struct {
	Email        string `json:"email"`
	SessionToken string `json:"sid"`
}

// Validate requires the session reference that the middleware looks up.
func (c *SessionClaims) Validate(ctx context.Context) error {
	if c.SessionToken == "" {
		return errors.New("token has no session id")
	}
	return nil
}

// TokenIssuer signs and validates HS256 session JWTs.
type TokenIssuer struct {
	signer    jose.Signer
	validator *validator.Validator
	issuer    string
}

func NewTokenIssuer(secret, appURL string) (*TokenIssuer, error) {
	if len(secret) < 32 {
		return nil, errors.New("auth secret must be at least 32 characters")
	}
	key := []byte(secret)
	issuer := appURL + "/"

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: key},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT signer: %w", err)
	}

	jwtValidator, err := validator.New(
		func(ctx context.Context) (interface{}, error) { return key, nil },
		validator.HS256,
		issuer,
		[]string{tokenAudience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &SessionClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT validator: %w", err)
	}

	return &TokenIssuer{signer: signer, validator: jwtValidator, issuer: issuer}, nil
}

// Issue signs a JWT that references session and expires with it.
func (t *TokenIssuer) Issue(session *types.Session, user *types.User) (string, error) {
	now := time.Now()
	registered := jwt.Claims{
		Issuer:    t.issuer,
		Subject:   user.ID,
		Audience:  jwt.Audience{tokenAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Expiry:    jwt.NewNumericDate(session.Expires),
	}
	custom := SessionClaims{Email: user.Email, SessionToken: session.SessionToken}

	raw, err := jwt.Signed(t.signer).Claims(registered).Claims(custom).CompactSerialize()
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return raw, nil
}

// ValidateToken is the jwtmiddleware.ValidateToken for session JWTs.
func (t *TokenIssuer) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	return t.validator.ValidateToken(ctx, token)
}

// Parse validates token and returns its session claims.
func (t *TokenIssuer) Parse(ctx context.Context, token string) (*validator.ValidatedClaims, *SessionClaims, error) {
	validated, err := t.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	return sessionClaims(validated)
}

func sessionClaims(v interface{}) (*validator.ValidatedClaims, *SessionClaims, error) {
	claims, ok := v.(*validator.ValidatedClaims)
	if !ok {
		return nil, nil, fmt.Errorf("no claims found in context")
	}
	custom, ok := claims.CustomClaims.(*SessionClaims)
	if !ok {
		return nil, nil, fmt.Errorf("invalid custom claims format")
	}
	return claims, custom, nil
}
