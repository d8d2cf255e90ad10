package remotepattern

import (
	"strconv"
	"strings"
)

// Protocol is the URL scheme a RemotePattern accepts.
type Protocol string

const (
	ProtocolHTTP  Protocol = "http"
	ProtocolHTTPS Protocol = "https"
)

// defaultPorts maps a scheme to the port implied when a URL carries none.
var defaultPorts = map[string]string{
	string(ProtocolHTTP):  "80",
	string(ProtocolHTTPS): "443",
}

// Valid reports whether p is one of the supported schemes.
func (p Protocol) Valid() bool {
	return p == ProtocolHTTP || p == ProtocolHTTPS
}

// RemotePattern describes one class of remote image URLs that may be fetched.
type RemotePattern struct {
	// Protocol: "http" or "https"
	Protocol Protocol `json:"protocol" mapstructure:"protocol" validate:"required"`

	// Hostname: literal host or leading wildcard label (e.g. "*.example.com")
	Hostname string `json:"hostname" mapstructure:"hostname" validate:"required"`

	// Port: empty matches the scheme default or no port at all
	Port string `json:"port" mapstructure:"port" validate:"omitempty,numeric"`

	// Pathname: glob over the URL path, "*" for one segment and "**" for any number
	Pathname string `json:"pathname" mapstructure:"pathname" validate:"omitempty,startswith=/"`

	// Search: exact query string including the leading "?", empty matches any query
	Search string `json:"search,omitempty" mapstructure:"search" validate:"omitempty,startswith=?"`
}

// Validate checks the pattern against the wildcard grammar without building an Allowlist.
func (p RemotePattern) Validate() error {
	_, err := compile(p)
	return err
}

// String renders the pattern in the same URL-like form ParsePattern accepts.
func (p RemotePattern) String() string {
	var sb strings.Builder
	sb.WriteString(string(p.Protocol))
	sb.WriteString("://")
	if strings.Contains(p.Hostname, ":") {
		sb.WriteString("[" + p.Hostname + "]")
	} else {
		sb.WriteString(p.Hostname)
	}
	if p.Port != "" {
		sb.WriteString(":")
		sb.WriteString(p.Port)
	}
	sb.WriteString(p.Pathname)
	sb.WriteString(p.Search)
	return sb.String()
}

// normalize lowercases the case-insensitive fields so that comparisons stay exact.
func (p RemotePattern) normalize() RemotePattern {
	p.Protocol = Protocol(strings.ToLower(strings.TrimSpace(string(p.Protocol))))
	p.Hostname = strings.ToLower(strings.TrimSpace(p.Hostname))
	p.Hostname = strings.TrimSuffix(strings.TrimPrefix(p.Hostname, "["), "]")
	p.Port = strings.TrimSpace(p.Port)
	return p
}

func validatePort(port string) error {
	if port == "" {
		return nil
	}
	for _, r := range port {
		if r < '0' || r > '9' {
			return errReason("must contain digits only")
		}
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return errReason("must be between 1 and 65535")
	}
	return nil
}
