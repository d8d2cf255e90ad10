package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"512":   512,
		"64KB":  64 << 10,
		"64 kb": 64 << 10,
		" 1MB ": 1 << 20,
		"2gb":   2 << 30,
		"10B":   10,
	}
	for in, want := range tests {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "abc", "0KB", "-1MB", "5XB", "1.5MB"} {
		_, err := ParseSize(in)
		assert.Error(t, err, in)
	}

	assert.Equal(t, int64(42), SizeToBytes("nope", 42))
}

func TestGetRealIP(t *testing.T) {
	trusted, err := ParseTrustedProxies([]string{"10.0.0.0/8", "192.0.2.1"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct client", "198.51.100.1:51234", "", "", "198.51.100.1"},
		{"untrusted peer ignores xff", "203.0.113.7:5555", "10.0.0.9", "", "203.0.113.7"},
		{"untrusted peer ignores x-real-ip", "203.0.113.7:5555", "", "10.0.0.9", "203.0.113.7"},
		{"trusted peer", "10.0.0.5:443", "198.51.100.1", "", "198.51.100.1"},
		{"skips trusted hops", "10.0.0.5:443", "198.51.100.1, 203.0.113.9, 10.1.1.1", "", "203.0.113.9"},
		{"all hops trusted", "10.0.0.5:443", "10.2.2.2, 10.1.1.1", "", "10.2.2.2"},
		{"garbage next to proxy", "10.0.0.5:443", "198.51.100.1, bogus", "", "10.0.0.5"},
		{"single trusted host", "192.0.2.1:80", "", "198.51.100.4", "198.51.100.4"},
		{"bad x-real-ip", "192.0.2.1:80", "", "nope", "192.0.2.1"},
		{"no port", "198.51.100.1", "", "", "198.51.100.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/allow", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, GetRealIP(r, trusted))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.0.2.1 ", "2001:db8::/32", "::1"})
	require.NoError(t, err)
	require.Len(t, nets, 4)
	assert.Equal(t, "192.0.2.1/32", nets[1].String())
	assert.Equal(t, "::1/128", nets[3].String())

	for _, bad := range []string{"10.0.0.0/33", "proxy.local", ""} {
		_, err := ParseTrustedProxies([]string{bad})
		assert.Error(t, err, bad)
	}
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "64.00 KB", FormatBytes(64<<10))
	assert.Equal(t, "1.50 MB", FormatBytes(3<<19))
}
