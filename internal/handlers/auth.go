package handlers

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"reelshelf/internal/auth"
	"reelshelf/internal/database"
	"reelshelf/internal/types"
	"reelshelf/internal/utils"
)

// SessionResolver finds the signed-in user of a request, if any.
type SessionResolver interface {
	CurrentUser(r *http.Request) (*auth.User, error)
}

// SignInFlow is the magic-link sign-in service.
type SignInFlow interface {
	RequestSignIn(ctx context.Context, email, callbackURL string) error
	CompleteSignIn(ctx context.Context, email, token string) (*types.Session, *types.User, error)
	SignOut(ctx context.Context, sessionToken string) error
}

// AuthOptions are the deployment settings the auth routes depend on.
type AuthOptions struct {
	AppURL        string
	DevMode       bool
	SecureCookies bool
}

type AuthHandler struct {
	flow     SignInFlow
	issuer   *auth.TokenIssuer
	sessions SessionResolver
	devLinks *auth.DevLinkStore
	opts     AuthOptions
	log      *zap.Logger
}

func NewAuthHandler(flow SignInFlow, issuer *auth.TokenIssuer, sessions SessionResolver, devLinks *auth.DevLinkStore, opts AuthOptions, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		flow:     flow,
		issuer:   issuer,
		sessions: sessions,
		devLinks: devLinks,
		opts:     opts,
		log:      log,
	}
}

// SignInEmail starts the magic-link flow.
func (h *AuthHandler) SignInEmail(w http.ResponseWriter, r *http.Request) {
	var req types.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.flow.RequestSignIn(r.Context(), req.Email, req.CallbackURL); err != nil {
		h.log.Error("failed to start sign in", zap.Error(err))
		utils.RespondError(w, "Failed to send sign-in email", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"success": true,
	}, http.StatusOK)
}

// CallbackEmail consumes the magic link, sets the session cookie and redirects.
func (h *AuthHandler) CallbackEmail(w http.ResponseWriter, r *http.Request) {
	email := utils.GetQueryParam(r, "email", "")
	token := utils.GetQueryParam(r, "token", "")

	session, user, err := h.flow.CompleteSignIn(r.Context(), email, token)
	if errors.Is(err, auth.ErrInvalidToken) {
		utils.RespondError(w, "Invalid or expired sign-in link", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.log.Error("failed to complete sign in", zap.Error(err))
		utils.RespondError(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	jwt, err := h.issuer.Issue(session, user)
	if err != nil {
		h.log.Error("failed to issue session token", zap.Error(err))
		utils.RespondError(w, "Failed to sign in", http.StatusInternalServerError)
		return
	}

	auth.SetSessionCookie(w, jwt, session.Expires, h.opts.SecureCookies)
	target := auth.SafeCallbackURL(utils.GetQueryParam(r, "callbackUrl", ""), h.opts.AppURL)
	http.Redirect(w, r, target, http.StatusFound)
}

// GetSession returns {"user": ...} for a signed-in caller and {} otherwise.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.CurrentUser(r)
	if errors.Is(err, database.ErrNotFound) {
		utils.RespondJSON(w, map[string]interface{}{}, http.StatusOK)
		return
	}
	if err != nil {
		h.log.Error("failed to resolve session", zap.Error(err))
		utils.RespondError(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	utils.RespondJSON(w, map[string]interface{}{
		"user": user,
	}, http.StatusOK)
}

func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessions.CurrentUser(r)
	if err == nil {
		if err := h.flow.SignOut(r.Context(), user.SessionToken); err != nil {
			h.log.Error("failed to delete session", zap.String("user_id", user.ID), zap.Error(err))
			utils.RespondError(w, "Failed to sign out", http.StatusInternalServerError)
			return
		}
	} else if !errors.Is(err, database.ErrNotFound) {
		h.log.Warn("sign out without resolvable session", zap.Error(err))
	}

	auth.ClearSessionCookie(w, h.opts.SecureCookies)
	utils.RespondJSON(w, map[string]interface{}{
		"success": true,
	}, http.StatusOK)
}

// DevMagicLink hands out the last magic link for an email. Development only.
func (h *AuthHandler) DevMagicLink(w http.ResponseWriter, r *http.Request) {
	if !h.opts.DevMode || h.devLinks == nil {
		utils.RespondError(w, "Not found", http.StatusNotFound)
		return
	}

	email := utils.GetQueryParam(r, "email", "")
	if email == "" {
		utils.RespondError(w, "email is required", http.StatusBadRequest)
		return
	}

	link, ok := h.devLinks.GetDevMagicLink(email)
	if !ok {
		utils.RespondError(w, "No magic link for "+email, http.StatusNotFound)
		return
	}

	utils.RespondJSON(w, map[string]string{
		"url": link,
	}, http.StatusOK)
}
