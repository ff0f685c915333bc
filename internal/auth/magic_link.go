package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"reelshelf/internal/database"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

const (
	MagicLinkTTL = 24 * time.Hour
	SessionTTL   = 30 * 24 * time.Hour
)

// ErrInvalidToken means the magic link is unknown, already used or expired.
var ErrInvalidToken = errors.New("invalid or expired sign-in link")

// Mailer delivers magic links.
type Mailer interface {
	SendMagicLink(ctx context.Context, address, link string) error
}

type MagicLinkService struct {
	db       *sql.DB
	mailer   Mailer
	devLinks *DevLinkStore
	appURL   string
	secret   string
	devMode  bool
	log      *zap.Logger
}

// NewMagicLinkService wires the email flow. With a nil mailer links are not sent;
// in devMode they go to devLinks and the log instead.
func NewMagicLinkService(db *sql.DB, mailer Mailer, devLinks *DevLinkStore, appURL, secret string, devMode bool, log *zap.Logger) *MagicLinkService {
	return &MagicLinkService{
		db:       db,
		mailer:   mailer,
		devLinks: devLinks,
		appURL:   strings.TrimRight(appURL, "/"),
		secret:   secret,
		devMode:  devMode,
		log:      log,
	}
}

// RequestSignIn stores a new verification token for email and delivers the link.
func (s *MagicLinkService) RequestSignIn(ctx context.Context, email, callbackURL string) error {
	email = normalizeEmail(email)

	token, err := utils.GenerateToken()
	if err != nil {
		return err
	}

	err = database.CreateVerificationToken(ctx, s.db, types.VerificationToken{
		Identifier: email,
		TokenHash:  utils.HashToken(token, s.secret),
		Expires:    time.Now().Add(MagicLinkTTL),
	})
	if err != nil {
		return err
	}

	link := s.callbackLink(email, token, callbackURL)

	if s.mailer == nil {
		if !s.devMode {
			s.log.Warn("magic link not delivered, email delivery is disabled", zap.String("email", email))
			return nil
		}
		if s.devLinks != nil {
			s.devLinks.SetDevMagicLink(email, link)
		}
		s.log.Info("magic link issued (email delivery disabled)",
			zap.String("email", email),
			zap.String("url", link),
		)
		return nil
	}

	if err := s.mailer.SendMagicLink(ctx, email, link); err != nil {
		return fmt.Errorf("failed to send magic link: %w", err)
	}
	return nil
}

// CompleteSignIn consumes a magic-link token and opens a session for its owner.
func (s *MagicLinkService) CompleteSignIn(ctx context.Context, email, token string) (*types.Session, *types.User, error) {
	email = normalizeEmail(email)
	if email == "" || token == "" {
		return nil, nil, ErrInvalidToken
	}

	_, err := database.UseVerificationToken(ctx, s.db, email, utils.HashToken(token, s.secret))
	if errors.Is(err, database.ErrNotFound) {
		return nil, nil, ErrInvalidToken
	}
	if err != nil {
		return nil, nil, err
	}

	user, err := database.GetOrCreateUserByEmail(ctx, s.db, email)
	if err != nil {
		return nil, nil, err
	}

	session, err := database.CreateSession(ctx, s.db, user.ID, SessionTTL)
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("user signed in", zap.String("user_id", user.ID))
	return session, user, nil
}

// SignOut deletes the session behind sessionToken.
func (s *MagicLinkService) SignOut(ctx context.Context, sessionToken string) error {
	return database.DeleteSession(ctx, s.db, sessionToken)
}

func (s *MagicLinkService) callbackLink(email, token, callbackURL string) string {
	q := url.Values{}
	q.Set("token", token)
	q.Set("email", email)
	if cb := SafeCallbackURL(callbackURL, s.appURL); cb != "/" {
		q.Set("callbackUrl", cb)
	}
	return s.appURL + "/api/auth/callback/email?" + q.Encode()
}

// SafeCallbackURL keeps redirects on this site: relative paths pass through,
// absolute URLs under appURL are reduced to their path, anything else becomes "/".
func SafeCallbackURL(raw, appURL string) string {
	if raw == "" {
		return "/"
	}
	if strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") && !strings.HasPrefix(raw, "/\\") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "/"
	}
	base, err := url.Parse(appURL)
	if err != nil || u.Scheme != base.Scheme || u.Host != base.Host {
		return "/"
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
