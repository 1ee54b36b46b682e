package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/templui/showcase/internal/ctxkeys"
)

// ClientIP resolves the client address once per request and stores it in the
// context for the rate limiters and the request log. Forwarding headers are
// only read when the socket peer is one of the trusted proxies.
func ClientIP(trusted []netip.Prefix) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ctxkeys.WithClientIP(r.Context(), resolveClientIP(r, trusted))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveClientIP walks X-Forwarded-For from the right, skipping trusted
// proxies, and returns the first hop nobody we trust appended. Entries left
// of that hop are client-supplied and ignored.
func resolveClientIP(r *http.Request, trusted []netip.Prefix) string {
	peer := peerAddr(r)

	addr, err := netip.ParseAddr(peer)
	if err != nil || !isTrusted(addr, trusted) {
		return peer
	}

	xff := r.Header.Values("X-Forwarded-For")
	if len(xff) == 0 {
		if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
			return xri.Unmap().String()
		}
		return peer
	}

	hops := strings.Split(strings.Join(xff, ","), ",")
	client := peer
	for i := len(hops) - 1; i >= 0; i-- {
		hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
		if err != nil {
			break
		}
		client = hop.Unmap().String()
		if !isTrusted(hop, trusted) {
			break
		}
	}
	return client
}

func isTrusted(addr netip.Addr, trusted []netip.Prefix) bool {
	addr = addr.Unmap().WithZone("")
	for _, prefix := range trusted {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func peerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// getClientIP returns the address stored by ClientIP, or the socket peer when
// the middleware is not installed.
func getClientIP(r *http.Request) string {
	if ip := ctxkeys.ClientIP(r.Context()); ip != "" {
		return ip
	}
	return peerAddr(r)
}
