package middleware

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/sohansahooo/vidshort/internal/auth"
	"github.com/sohansahooo/vidshort/internal/logging"
)

// SessionCookieName is the cookie carrying the access token for browser clients.
const SessionCookieName = "session_token"

// LoginPath is where unauthorized requests are redirected.
const LoginPath = "/login"

// DefaultExcludedPrefixes are never evaluated by the session middleware.
var DefaultExcludedPrefixes = []string{"/static/", "/favicon.ico", "/healthz", "/readyz"}

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// Session resolves the caller's access token, attaches the identity it names
// to the request context and applies policy. Requests the policy rejects are
// redirected to the login page with the original location as callbackUrl.
func Session(verifier TokenVerifier, policy auth.RoutePolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if excluded(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			var claims *auth.Claims
			if token := TokenFromRequest(r); token != "" {
				parsed, err := verifier.Verify(token)
				if err != nil {
					logging.FromContext(ctx).Debug("ignoring invalid session token", slog.Any("error", err))
				} else {
					claims = parsed
					ctx = auth.WithIdentity(ctx, claims.Identity())
				}
			}

			if !policy.IsAuthorized(r.URL.Path, claims) {
				target := LoginPath + "?" + url.Values{"callbackUrl": {r.URL.RequestURI()}}.Encode()
				http.Redirect(w, r, target, http.StatusFound)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func excluded(path string) bool {
	for _, prefix := range DefaultExcludedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// TokenFromRequest returns the bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
