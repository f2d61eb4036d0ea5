package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/netip"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/logging"
	"github.com/sohansahooo/vidshort/internal/middleware"
	"github.com/sohansahooo/vidshort/internal/models"
	"github.com/sohansahooo/vidshort/internal/repositories"
)

const (
	msgInvalidBody        = "Invalid request body"
	msgMissingCredentials = "Email and password are required"
	msgEmailTaken         = "Email is already registered"
	msgLoginFailed        = "Login failed"
	msgTooManyRequests    = "Too many requests"
)

// AuthHandler implements registration, login and session endpoints.
type AuthHandler struct {
	Users         UserStore
	Authenticator Authenticator
	Sessions      SessionManager
	Limiter       RateLimiter
	// TrustedProxies are peers whose forwarding headers identify the client
	// for rate limiting.
	TrustedProxies []netip.Prefix
	SecureCookies  bool
}

// Register handles POST /api/auth/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Users == nil {
		logger.Error("registration dependencies unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "Registration unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "register", h.TrustedProxies) {
		respondError(ctx, w, http.StatusTooManyRequests, msgTooManyRequests)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid registration payload", slog.Any("error", err))
		respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		respondError(ctx, w, http.StatusBadRequest, msgMissingCredentials)
		return
	}

	user, err := auth.PrepareUserForPersistence(models.User{
		ID:       uuid.NewString(),
		Email:    req.Email,
		Password: req.Password,
	}, true)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			respondError(ctx, w, http.StatusBadRequest, "Password must be at most 72 bytes")
			return
		}
		respondInternal(ctx, w, err, "Failed to register user")
		return
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			logger.Info("registration for existing email", slog.String("email", req.Email))
			respondError(ctx, w, http.StatusBadRequest, msgEmailTaken)
			return
		}
		respondInternal(ctx, w, err, "Failed to register user")
		return
	}

	respondJSON(ctx, w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		User:    user.Identity(),
	})
}

// Login handles POST /api/auth/login. Every credential failure produces the
// same 401 body.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Authenticator == nil || h.Sessions == nil {
		logger.Error("authentication dependencies unavailable",
			slog.Bool("hasAuthenticator", h.Authenticator != nil),
			slog.Bool("hasSessions", h.Sessions != nil),
		)
		respondError(ctx, w, http.StatusInternalServerError, "Authentication unavailable")
		return
	}

	if !allowRequest(h.Limiter, r, "login", h.TrustedProxies) {
		respondError(ctx, w, http.StatusTooManyRequests, msgTooManyRequests)
		return
	}

	var req credentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid login payload", slog.Any("error", err))
		respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	identity, err := h.Authenticator.Authenticate(ctx, strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		if errors.Is(err, db.ErrConnectionFailed) {
			respondInternal(ctx, w, err, msgDatabaseUnavailable)
			return
		}
		respondError(ctx, w, http.StatusUnauthorized, msgLoginFailed)
		return
	}

	tokens, err := h.Sessions.Issue(ctx, identity)
	if err != nil {
		respondInternal(ctx, w, err, "Failed to create session")
		return
	}

	h.setSessionCookie(w, r, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{User: &identity, Tokens: &tokens})
}

// Refresh handles POST /api/auth/refresh by rotating the refresh token.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if h.Sessions == nil {
		logger.Error("session manager unavailable")
		respondError(ctx, w, http.StatusInternalServerError, "Session service unavailable")
		return
	}

	var req refreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		logger.Warn("invalid refresh payload", slog.Any("error", err))
		respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.RefreshToken = strings.TrimSpace(req.RefreshToken)
	if req.RefreshToken == "" {
		respondError(ctx, w, http.StatusBadRequest, "Refresh token is required")
		return
	}

	tokens, identity, err := h.Sessions.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrRefreshTokenExpired) || errors.Is(err, auth.ErrSessionNotFound) {
			logger.Info("refresh rejected", slog.Any("error", err))
			respondError(ctx, w, http.StatusUnauthorized, "Unable to refresh session")
			return
		}
		respondInternal(ctx, w, err, "Unable to refresh session")
		return
	}

	h.setSessionCookie(w, r, tokens)
	respondJSON(ctx, w, http.StatusOK, sessionResponse{User: &identity, Tokens: &tokens})
}

// Logout handles POST /api/auth/logout. It always succeeds. The presented
// access token and refresh token both stop working.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var req refreshRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondError(ctx, w, http.StatusBadRequest, msgInvalidBody)
			return
		}
	}
	if h.Sessions != nil {
		h.Sessions.Revoke(ctx, strings.TrimSpace(req.RefreshToken))
		if accessToken := middleware.TokenFromRequest(r); accessToken != "" {
			h.Sessions.RevokeAccess(accessToken)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Session handles GET /api/auth/session, returning the identity attached by
// the session middleware or an empty object.
func (h AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondJSON(ctx, w, http.StatusOK, sessionResponse{})
		return
	}
	respondJSON(ctx, w, http.StatusOK, sessionResponse{User: &identity})
}

// LoginPage handles GET /login, the target of unauthorized redirects. It
// points API clients at the login endpoint and echoes a same-site callbackUrl.
func (AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	resp := loginPageResponse{
		Message:       "Login required",
		LoginEndpoint: "/api/auth/login",
	}
	if callback := r.URL.Query().Get("callbackUrl"); strings.HasPrefix(callback, "/") && !strings.HasPrefix(callback, "//") {
		resp.CallbackURL = callback
	}
	respondJSON(r.Context(), w, http.StatusOK, resp)
}

func (h AuthHandler) setSessionCookie(w http.ResponseWriter, r *http.Request, tokens models.SessionTokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    tokens.AccessToken,
		Path:     "/",
		Expires:  tokens.AccessExpiresAt,
		MaxAge:   int(time.Until(tokens.AccessExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

func (h AuthHandler) secure(r *http.Request) bool {
	return h.SecureCookies || r.TLS != nil
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type registerResponse struct {
	Message string          `json:"message"`
	User    models.Identity `json:"user"`
}

type loginPageResponse struct {
	Message       string `json:"message"`
	LoginEndpoint string `json:"loginEndpoint"`
	CallbackURL   string `json:"callbackUrl,omitempty"`
}

type sessionResponse struct {
	User   *models.Identity      `json:"user,omitempty"`
	Tokens *models.SessionTokens `json:"tokens,omitempty"`
}
