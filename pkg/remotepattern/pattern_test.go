package remotepattern

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsMalformedPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern RemotePattern
		field   string
	}{
		{"unsupported protocol", RemotePattern{Protocol: "ftp", Hostname: "a.com", Pathname: "/**"}, "protocol"},
		{"missing protocol", RemotePattern{Hostname: "a.com", Pathname: "/**"}, "protocol"},
		{"missing hostname", RemotePattern{Protocol: ProtocolHTTPS, Pathname: "/**"}, "hostname"},
		{"bare wildcard host", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "*", Pathname: "/**"}, "hostname"},
		{"bare double wildcard host", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "**", Pathname: "/**"}, "hostname"},
		{"inner wildcard label", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.*.com", Pathname: "/**"}, "hostname"},
		{"partial wildcard label", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "*a.com", Pathname: "/**"}, "hostname"},
		{"host with space", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "exa mple.com", Pathname: "/**"}, "hostname"},
		{"host with port", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com:443", Pathname: "/**"}, "hostname"},
		{"empty label", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a..com", Pathname: "/**"}, "hostname"},
		{"non numeric port", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Port: "https", Pathname: "/**"}, "port"},
		{"port zero", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Port: "0", Pathname: "/**"}, "port"},
		{"port out of range", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Port: "70000", Pathname: "/**"}, "port"},
		{"relative pathname", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Pathname: "images/**"}, "pathname"},
		{"embedded double star", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Pathname: "/a**b"}, "pathname"},
		{"search without question mark", RemotePattern{Protocol: ProtocolHTTPS, Hostname: "a.com", Pathname: "/**", Search: "v=1"}, "search"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New([]RemotePattern{seadn, tt.pattern})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfigMalformed)

			var ce *ConfigError
			require.True(t, errors.As(err, &ce))
			assert.Equal(t, 1, ce.Index)
			assert.Equal(t, tt.field, ce.Field)
			assert.Contains(t, err.Error(), "remotePatterns[1]."+tt.field)

			assert.Error(t, tt.pattern.Validate())
		})
	}
}

func TestNew_AcceptsValidPatterns(t *testing.T) {
	patterns := []RemotePattern{
		seadn,
		{Protocol: ProtocolHTTP, Hostname: "example.com", Port: "8080", Pathname: "/a/*.png"},
		{Protocol: "HTTPS", Hostname: "*.Example.COM", Pathname: "/**/thumb/*"},
		{Protocol: ProtocolHTTPS, Hostname: "**.example.org", Pathname: "/**", Search: "?v=2"},
		{Protocol: ProtocolHTTPS, Hostname: "[2001:db8::1]", Port: "443", Pathname: "/"},
		{Protocol: ProtocolHTTPS, Hostname: "empty-path.example.com"},
	}

	a, err := New(patterns)
	require.NoError(t, err)
	assert.Equal(t, len(patterns), a.Len())

	got := a.Patterns()
	assert.Equal(t, ProtocolHTTPS, got[2].Protocol)
	assert.Equal(t, "*.example.com", got[2].Hostname)
	assert.Equal(t, "2001:db8::1", got[4].Hostname)
}

func TestEmptyPathnameMatchesNothing(t *testing.T) {
	a := MustNew(RemotePattern{Protocol: ProtocolHTTPS, Hostname: "i.seadn.io"})

	assert.False(t, a.IsAllowed("https://i.seadn.io/"))
	assert.False(t, a.IsAllowed("https://i.seadn.io/a.png"))
}

func TestRemotePattern_String(t *testing.T) {
	tests := []struct {
		pattern RemotePattern
		want    string
	}{
		{seadn, "https://i.seadn.io/**"},
		{RemotePattern{Protocol: ProtocolHTTP, Hostname: "*.example.com", Port: "8080", Pathname: "/img/*", Search: "?v=1"}, "http://*.example.com:8080/img/*?v=1"},
		{RemotePattern{Protocol: ProtocolHTTP, Hostname: "::1", Pathname: "/**"}, "http://[::1]/**"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pattern.String())

			parsed, err := ParsePattern(tt.want)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, parsed)
		})
	}
}
