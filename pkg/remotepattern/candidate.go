package remotepattern

import (
	"fmt"
	"net/url"
	"strings"
)

// candidate is a remote URL broken into the components patterns compare.
type candidate struct {
	scheme string
	host   string
	port   string
	path   string
	query  string
}

func parseCandidate(raw string) (candidate, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return candidate{}, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	return candidateFromURL(u)
}

func candidateFromURL(u *url.URL) (candidate, error) {
	if u == nil {
		return candidate{}, fmt.Errorf("%w: nil url", ErrMalformedURL)
	}
	if u.Scheme == "" || u.Opaque != "" || u.Host == "" {
		return candidate{}, fmt.Errorf("%w: not an absolute url", ErrMalformedURL)
	}

	host, ok := normalizeHost(u.Hostname())
	if !ok {
		return candidate{}, fmt.Errorf("%w: invalid host %q", ErrMalformedURL, u.Hostname())
	}

	port := u.Port()
	if err := validatePort(port); err != nil {
		return candidate{}, fmt.Errorf("%w: port %q %v", ErrMalformedURL, port, err)
	}

	path, err := cleanPath(u)
	if err != nil {
		return candidate{}, err
	}

	return candidate{
		scheme: strings.ToLower(u.Scheme),
		host:   host,
		port:   port,
		path:   path,
		query:  u.RawQuery,
	}, nil
}

// cleanPath returns the escaped path with "." and ".." segments resolved.
// Encoded dot segments ("%2e%2e") survive resolution and would be reinterpreted
// by the remote server, so they are rejected.
func cleanPath(u *url.URL) (string, error) {
	path := u.ResolveReference(&url.URL{}).EscapedPath()
	if path == "" {
		return "/", nil
	}

	for _, seg := range strings.Split(path, "/") {
		if !strings.Contains(seg, "%") {
			continue
		}
		decoded, err := url.PathUnescape(seg)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
		}
		if decoded == "." || decoded == ".." {
			return "", fmt.Errorf("%w: encoded dot segment in path", ErrMalformedURL)
		}
	}
	return path, nil
}
