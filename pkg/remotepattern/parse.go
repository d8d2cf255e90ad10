package remotepattern

import (
	"strings"
)

// ParsePattern reads the URL-like shorthand used on the command line and in
// environment variables, e.g. "https://*.example.com:8443/images/**?v=2".
// A pattern without a path permits every path ("/**").
func ParsePattern(s string) (RemotePattern, error) {
	s = strings.TrimSpace(s)
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok || scheme == "" {
		return RemotePattern{}, fieldError("pattern", s, errReason("must look like \"https://host/path\""))
	}

	authority := rest
	remainder := ""
	if i := strings.IndexAny(rest, "/?"); i >= 0 {
		authority, remainder = rest[:i], rest[i:]
	}

	host, port, err := splitAuthority(authority)
	if err != nil {
		return RemotePattern{}, fieldError("pattern", s, err)
	}

	path, query, hasQuery := strings.Cut(remainder, "?")
	if path == "" {
		path = "/**"
	}

	p := RemotePattern{
		Protocol: Protocol(scheme),
		Hostname: host,
		Port:     port,
		Pathname: path,
	}
	if hasQuery {
		p.Search = "?" + query
	}

	r, err := compile(p)
	if err != nil {
		return RemotePattern{}, err
	}
	return r.pattern, nil
}

func splitAuthority(authority string) (host, port string, err error) {
	if authority == "" {
		return "", "", errReason("missing hostname")
	}
	if strings.Contains(authority, "@") {
		return "", "", errReason("must not contain user info")
	}

	if strings.HasPrefix(authority, "[") {
		end := strings.Index(authority, "]")
		if end < 0 {
			return "", "", errReason("unterminated IPv6 literal")
		}
		host = authority[1:end]
		after := authority[end+1:]
		if after == "" {
			return host, "", nil
		}
		if !strings.HasPrefix(after, ":") {
			return "", "", errReason("unexpected text after IPv6 literal")
		}
		return host, after[1:], nil
	}

	host, port, _ = strings.Cut(authority, ":")
	return host, port, nil
}
