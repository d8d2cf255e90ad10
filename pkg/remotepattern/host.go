package remotepattern

import (
	"net"
	"strings"

	"github.com/gobwas/glob"
	"golang.org/x/net/idna"
)

// hostProfile is the IDNA lookup profile minus the RFC 5891 hyphen rule, which
// would reject real CDN hosts such as "r3---sn-abc.example.com".
var hostProfile = idna.New(
	idna.MapForLookup(),
	idna.BidiRule(),
	idna.CheckHyphens(false),
)

// hostMatcher matches a normalized hostname either literally or through a
// leading wildcard label.
type hostMatcher struct {
	exact string
	g     glob.Glob
}

func (m hostMatcher) match(host string) bool {
	if m.g != nil {
		return m.g.Match(host)
	}
	return host == m.exact
}

// normalizeHost lowercases host, strips a trailing root dot and converts
// internationalized names to their ASCII (punycode) form.
func normalizeHost(host string) (string, bool) {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	if host == "" {
		return "", false
	}
	if net.ParseIP(host) != nil {
		return host, true
	}

	ascii, err := hostProfile.ToASCII(host)
	if err != nil {
		return "", false
	}
	for _, label := range strings.Split(ascii, ".") {
		if label == "" {
			return "", false
		}
	}
	return ascii, true
}

// compileHost builds a matcher for a (normalized) hostname pattern.
//
// Only the first label may be a wildcard. Both "*" and "**" match one or
// more labels, so "*.cdn.example.com" accepts "a.cdn.example.com" and
// "a.b.cdn.example.com" but not "cdn.example.com" itself.
func compileHost(pattern string) (hostMatcher, string, error) {
	if pattern == "" {
		return hostMatcher{}, "", errReason("is required")
	}

	first, rest, hasRest := strings.Cut(pattern, ".")
	if first == "*" || first == "**" {
		if !hasRest || rest == "" {
			return hostMatcher{}, "", errReason("wildcard must be followed by a domain")
		}
		if strings.Contains(rest, "*") {
			return hostMatcher{}, "", errReason("wildcard is only allowed as the leading label")
		}
		suffix, ok := normalizeHost(rest)
		if !ok {
			return hostMatcher{}, "", errReason("is not a valid hostname")
		}

		g, err := glob.Compile("**."+glob.QuoteMeta(suffix), '.')
		if err != nil {
			return hostMatcher{}, "", err
		}
		return hostMatcher{g: g}, first + "." + suffix, nil
	}

	if strings.Contains(pattern, "*") {
		return hostMatcher{}, "", errReason("wildcard is only allowed as the leading label")
	}
	host, ok := normalizeHost(pattern)
	if !ok {
		return hostMatcher{}, "", errReason("is not a valid hostname")
	}
	return hostMatcher{exact: host}, host, nil
}
