package security

import (
	"net/http"
	"net/url"
	"strings"
)

// shieldPatterns are lowercase substrings that mark a request as hostile:
// path traversal, template/script injection, and common SQL injection
// probes. Matched against the decoded path and raw query.
var shieldPatterns = []string{
	"../",
	"..\\",
	"/etc/passwd",
	"%00",
	"<script",
	"javascript:",
	"union select",
	"union+select",
	"union%20select",
	"' or '1'='1",
	"sleep(",
	"benchmark(",
	"${",
	"{{",
}

// matchShield reports whether the request trips a shield rule.
func matchShield(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	if decoded, err := url.PathUnescape(r.URL.Path); err == nil {
		path = strings.ToLower(decoded)
	}
	query := strings.ToLower(r.URL.RawQuery)

	for _, pattern := range shieldPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return true
		}
	}
	return false
}
