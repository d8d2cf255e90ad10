package utils

import (
	"net/url"
	"strings"
)

// IsAllowedOrigin reports whether a browser Origin (or Referer) matches one of
// the configured CORS patterns.
func IsAllowedOrigin(origin string, patterns []string) bool {
	if origin == "" {
		return false
	}

	cleanOrigin := getCleanOrigin(origin)
	for _, pattern := range patterns {
		if MatchOrigin(cleanOrigin, pattern) {
			return true
		}
	}
	return false
}

// getCleanOrigin reduces a full URL (e.g. a Referer) to scheme://host.
func getCleanOrigin(originURL string) string {
	u, err := url.Parse(originURL)
	if err != nil {
		return originURL
	}

	if u.Scheme != "" && u.Host != "" {
		return u.Scheme + "://" + u.Host
	}

	return originURL
}

// MatchOrigin matches an origin against a CORS pattern:
//
//	"*"                          any origin
//	"https://app.example.com"    exact origin
//	"https://**.example.com"     example.com and every subdomain
//	"https://*.example.com"      one subdomain level only
func MatchOrigin(origin, pattern string) bool {
	if pattern == "*" {
		return true
	}

	if origin == pattern {
		return true
	}

	if strings.Contains(pattern, "**.") {
		base := strings.Replace(pattern, "**.", "", 1) // "https://**.example.com" -> "https://example.com"
		if origin == base {
			return true
		}

		scheme, domain, ok := strings.Cut(base, "://")
		if !ok {
			return false
		}
		return strings.HasPrefix(origin, scheme+"://") && strings.HasSuffix(origin, "."+domain)
	}

	if prefix, suffix, ok := strings.Cut(pattern, "*"); ok && strings.HasPrefix(suffix, ".") {
		if !strings.HasPrefix(origin, prefix) || !strings.HasSuffix(origin, suffix) {
			return false
		}
		if len(origin) <= len(prefix)+len(suffix) {
			return false
		}
		middle := origin[len(prefix) : len(origin)-len(suffix)]
		return !strings.ContainsAny(middle, "/.")
	}

	return false
}
