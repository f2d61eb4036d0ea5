package handlers

import (
	"net/http"
	"net/netip"

	"github.com/sohansahooo/vidshort/internal/db"
	"github.com/sohansahooo/vidshort/internal/middleware"
)

// Dependencies aggregates collaborators required by HTTP handlers. Nil
// collaborators disable the endpoints that need them.
type Dependencies struct {
	Database       db.Source
	Users          UserStore
	Authenticator  Authenticator
	Sessions       SessionManager
	Limiter        RateLimiter
	TrustedProxies []netip.Prefix
	Videos         VideoStore
	Feed           VideoFeed
	Signer         UploadSigner
	Storage        ObjectStore
	SecureCookies  bool
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{Database: deps.Database}
	auth := AuthHandler{
		Users:          deps.Users,
		Authenticator:  deps.Authenticator,
		Sessions:       deps.Sessions,
		Limiter:        deps.Limiter,
		TrustedProxies: deps.TrustedProxies,
		SecureCookies:  deps.SecureCookies,
	}
	videos := VideoHandler{Videos: deps.Videos, Feed: deps.Feed}
	uploads := UploadHandler{Signer: deps.Signer, Storage: deps.Storage}

	mux.HandleFunc("/healthz", health.Handle)
	mux.HandleFunc("/readyz", health.Ready)
	mux.HandleFunc(middleware.LoginPath, auth.LoginPage)
	mux.HandleFunc("/api/auth/register", auth.Register)
	mux.HandleFunc("/api/auth/login", auth.Login)
	mux.HandleFunc("/api/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/auth/logout", auth.Logout)
	mux.HandleFunc("/api/auth/session", auth.Session)
	mux.HandleFunc("/api/videos", videos.Handle)
	mux.HandleFunc("/api/upload-auth", uploads.Auth)
	mux.HandleFunc("/api/upload", uploads.Upload)
	mux.HandleFunc("/api/upload/presign", uploads.Presign)
	mux.HandleFunc("/", root)
}

// root answers the exact "/" path and 404s everything the mux did not match.
func root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		respondError(r.Context(), w, http.StatusNotFound, "Not found")
		return
	}
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"service": "vidshort", "status": "ok"})
}
