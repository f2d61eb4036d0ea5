package handlers

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// RateLimiter is the minimal interface required to guard sensitive endpoints.
type RateLimiter interface {
	Allow(key string) bool
}

// allowRequest charges the request against the bucket for scope and client.
func allowRequest(limiter RateLimiter, r *http.Request, scope string, trusted []netip.Prefix) bool {
	if limiter == nil {
		return true
	}
	return limiter.Allow(rateLimitKey(r, scope, trusted))
}

func rateLimitKey(r *http.Request, scope string, trusted []netip.Prefix) string {
	ip := clientIP(r, trusted)
	if scope == "" {
		return ip
	}
	return scope + ":" + ip
}

// clientIP returns the peer address. Forwarding headers are only honoured when
// the peer itself is a trusted proxy; X-Forwarded-For is then walked from the
// right, skipping trusted hops, and X-Real-IP is the fallback.
func clientIP(r *http.Request, trusted []netip.Prefix) string {
	remote := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(remote); err == nil && host != "" {
		remote = host
	}

	if !isTrusted(remote, trusted) {
		return remote
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		hops := strings.Split(forwarded, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if _, err := netip.ParseAddr(hop); err != nil {
				break
			}
			if !isTrusted(hop, trusted) || i == 0 {
				return hop
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		if _, err := netip.ParseAddr(realIP); err == nil {
			return realIP
		}
	}
	return remote
}

func isTrusted(ip string, trusted []netip.Prefix) bool {
	if len(trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}
