// Package remotepattern decides whether a remote image URL may be fetched.
//
// An Allowlist is an ordered list of RemotePattern rules compiled once at
// startup. A URL is permitted only when at least one rule matches its scheme,
// host, port and path; everything else is denied, including URLs that cannot
// be parsed. Compiled allowlists are immutable and safe for concurrent use.
package remotepattern

import (
	"errors"
	"net/url"
)

type rule struct {
	pattern RemotePattern
	host    hostMatcher
	path    pathMatcher
}

func (r rule) match(c candidate) bool {
	if string(r.pattern.Protocol) != c.scheme {
		return false
	}
	if !r.host.match(c.host) {
		return false
	}
	if r.pattern.Port == "" {
		if c.port != "" && c.port != defaultPorts[c.scheme] {
			return false
		}
	} else if r.pattern.Port != c.port {
		return false
	}
	if r.pattern.Search != "" && r.pattern.Search != "?"+c.query {
		return false
	}
	return r.path.match(c.path)
}

func compile(p RemotePattern) (rule, error) {
	p = p.normalize()

	if !p.Protocol.Valid() {
		return rule{}, fieldError("protocol", string(p.Protocol), errReason("must be \"http\" or \"https\""))
	}

	host, normalized, err := compileHost(p.Hostname)
	if err != nil {
		return rule{}, fieldError("hostname", p.Hostname, err)
	}
	p.Hostname = normalized

	if err := validatePort(p.Port); err != nil {
		return rule{}, fieldError("port", p.Port, err)
	}

	path, err := compilePath(p.Pathname)
	if err != nil {
		return rule{}, fieldError("pathname", p.Pathname, err)
	}

	if p.Search != "" && p.Search[0] != '?' {
		return rule{}, fieldError("search", p.Search, errReason("must start with \"?\""))
	}

	return rule{pattern: p, host: host, path: path}, nil
}

// Allowlist is a compiled, immutable set of remote patterns.
// The zero value and a nil *Allowlist deny every URL.
type Allowlist struct {
	rules []rule
}

// New validates and compiles patterns. The first invalid pattern aborts with a
// *ConfigError carrying its index.
func New(patterns []RemotePattern) (*Allowlist, error) {
	rules := make([]rule, 0, len(patterns))
	for i, p := range patterns {
		r, err := compile(p)
		if err != nil {
			var ce *ConfigError
			if errors.As(err, &ce) {
				ce.Index = i
			}
			return nil, err
		}
		rules = append(rules, r)
	}
	return &Allowlist{rules: rules}, nil
}

// MustNew is like New but panics on an invalid pattern. It is meant for
// allowlists written as literals in code.
func MustNew(patterns ...RemotePattern) *Allowlist {
	a, err := New(patterns)
	if err != nil {
		panic(err)
	}
	return a
}

// IsAllowed reports whether rawURL may be fetched.
func (a *Allowlist) IsAllowed(rawURL string) bool {
	_, err := a.Check(rawURL)
	return err == nil
}

// Check returns the first pattern permitting rawURL. A denial is reported as
// ErrNoMatch or ErrMalformedURL.
func (a *Allowlist) Check(rawURL string) (RemotePattern, error) {
	c, err := parseCandidate(rawURL)
	if err != nil {
		return RemotePattern{}, err
	}
	return a.check(c)
}

// CheckURL is Check for an already parsed URL, such as an outgoing request's URL.
func (a *Allowlist) CheckURL(u *url.URL) (RemotePattern, error) {
	c, err := candidateFromURL(u)
	if err != nil {
		return RemotePattern{}, err
	}
	return a.check(c)
}

func (a *Allowlist) check(c candidate) (RemotePattern, error) {
	if a == nil {
		return RemotePattern{}, ErrNoMatch
	}
	for _, r := range a.rules {
		if r.match(c) {
			return r.pattern, nil
		}
	}
	return RemotePattern{}, ErrNoMatch
}

// Patterns returns a copy of the normalized patterns in configuration order.
func (a *Allowlist) Patterns() []RemotePattern {
	if a == nil {
		return nil
	}
	out := make([]RemotePattern, len(a.rules))
	for i, r := range a.rules {
		out[i] = r.pattern
	}
	return out
}

// Len returns the number of patterns.
func (a *Allowlist) Len() int {
	if a == nil {
		return 0
	}
	return len(a.rules)
}

// IsAllowed reports whether rawURL matches at least one of patterns. It never
// fails: malformed URLs and patterns that do not validate simply do not match.
func IsAllowed(rawURL string, patterns []RemotePattern) bool {
	c, err := parseCandidate(rawURL)
	if err != nil {
		return false
	}
	for _, p := range patterns {
		r, err := compile(p)
		if err != nil {
			continue
		}
		if r.match(c) {
			return true
		}
	}
	return false
}
