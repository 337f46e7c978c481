package middleware

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP returns the caller address. trustedHops is the number of proxies
// in front of the service that append to X-Forwarded-For; the entry that many
// places from the right is the first one a client cannot forge. With zero
// hops, or a chain shorter than trustedHops, the peer address is used.
func ClientIP(r *http.Request, trustedHops int) string {
	if trustedHops > 0 {
		var chain []string
		for _, v := range r.Header.Values("X-Forwarded-For") {
			for _, part := range strings.Split(v, ",") {
				chain = append(chain, strings.TrimSpace(part))
			}
		}
		if len(chain) >= trustedHops {
			if ip := chain[len(chain)-trustedHops]; net.ParseIP(ip) != nil {
				return ip
			}
		} else if len(chain) == 0 {
			if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
				return ip
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
