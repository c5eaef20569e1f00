package api

import (
	"net"
	"net/http"
)

// clientIP returns the peer address without the port. chi's middleware.RealIP
// (applied globally) already rewrites r.RemoteAddr from trusted forwarding
// headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
