package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"slices"
	"strings"
	"sync/atomic"
)

// securityMetrics tracks security-related events.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// SecurityStats is a snapshot of the security counters.
type SecurityStats struct {
	RateLimitHits      int64 `json:"rateLimitHits"`
	SuspiciousRequests int64 `json:"suspiciousRequests"`
}

func (m *securityMetrics) snapshot() SecurityStats {
	return SecurityStats{
		RateLimitHits:      atomic.LoadInt64(&m.rateLimitHits),
		SuspiciousRequests: atomic.LoadInt64(&m.suspiciousRequests),
	}
}

// Only loopback and private peers may set forwarding headers.
var trustedProxies = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
}

func isTrustedProxy(addr netip.Addr) bool {
	addr = addr.Unmap()
	return slices.ContainsFunc(trustedProxies, func(p netip.Prefix) bool {
		return p.Contains(addr)
	})
}

// extractClientIP returns the peer address, or the forwarded client address
// when the peer is a trusted proxy.
func extractClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	peer, err := netip.ParseAddr(host)
	if err != nil || !isTrustedProxy(peer) {
		return host
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if addr, err := netip.ParseAddr(strings.TrimSpace(first)); err == nil {
			return addr.String()
		}
	}
	if addr, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return addr.String()
	}
	return host
}

// Probes for files and admin panels this API never serves.
var suspiciousPathPatterns = []string{
	"../", "..\\", "%2e%2e", "/.env", "/.git", "/.ssh",
	".php", "wp-admin", "wp-login", "etc/passwd", "cmd.exe", "/actuator",
}

// Injection payloads looked for in decoded query keys and values.
var suspiciousQueryPatterns = []string{
	"union select", "' or '1'='1", "' or 1=1", "; drop table",
	"sleep(", "<script", "javascript:", "../", "etc/passwd",
}

var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb",
	"masscan", "zgrab", "nuclei", "scanner",
}

const maxURLLength = 2048

func containsAny(s string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(p string) bool {
		return strings.Contains(s, p)
	})
}

// suspiciousQuery matches the decoded query so encoded spaces and quotes
// cannot hide a payload. A query that fails to parse is suspicious itself.
func suspiciousQuery(r *http.Request) bool {
	if r.URL.RawQuery == "" {
		return false
	}
	values, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		return true
	}
	for key, vals := range values {
		if containsAny(strings.ToLower(key), suspiciousQueryPatterns) {
			return true
		}
		for _, v := range vals {
			if containsAny(strings.ToLower(v), suspiciousQueryPatterns) {
				return true
			}
		}
	}
	return false
}

// detectSuspiciousRequest flags scanner traffic and injection attempts. The
// request is still served; the caller only logs and counts it.
func detectSuspiciousRequest(r *http.Request, metrics *securityMetrics) bool {
	suspicious := containsAny(strings.ToLower(r.URL.EscapedPath()), suspiciousPathPatterns) ||
		containsAny(strings.ToLower(r.URL.Path), suspiciousPathPatterns) ||
		suspiciousQuery(r) ||
		containsAny(strings.ToLower(r.Header.Get("User-Agent")), scannerAgents) ||
		r.Method == http.MethodTrace || r.Method == http.MethodConnect ||
		len(r.URL.String()) > maxURLLength ||
		strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5

	if suspicious && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return suspicious
}
