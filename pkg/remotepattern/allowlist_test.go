package remotepattern

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

var seadn = RemotePattern{
	Protocol: ProtocolHTTPS,
	Hostname: "i.seadn.io",
	Port:     "",
	Pathname: "/**",
}

func TestIsAllowed_ReferencePattern(t *testing.T) {
	patterns := []RemotePattern{seadn}

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"image path", "https://i.seadn.io/foo/bar.png", true},
		{"scheme mismatch", "http://i.seadn.io/foo.png", false},
		{"host mismatch", "https://evil.io/i.seadn.io.png", false},
		{"root path", "https://i.seadn.io/", true},
		{"single segment", "https://i.seadn.io/a", true},
		{"deep path", "https://i.seadn.io/a/b/c", true},
		{"no path", "https://i.seadn.io", true},
		{"query string", "https://i.seadn.io/a.png?w=256", true},
		{"upper case", "HTTPS://I.SEADN.IO/Foo.png", true},
		{"trailing root dot", "https://i.seadn.io./a.png", true},
		{"implied https port", "https://i.seadn.io:443/a.png", true},
		{"explicit other port", "https://i.seadn.io:8443/a.png", false},
		{"http default port on https", "https://i.seadn.io:80/a.png", false},
		{"subdomain", "https://x.i.seadn.io/a.png", false},
		{"suffix trick", "https://i.seadn.io.evil.io/a.png", false},
		{"user info", "https://i.seadn.io@evil.io/a.png", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowed(tt.url, patterns))
		})
	}
}

func TestIsAllowed_LiteralPatternMatchesItself(t *testing.T) {
	p := RemotePattern{Protocol: ProtocolHTTP, Hostname: "example.com", Port: "8080", Pathname: "/a/b.png"}
	patterns := []RemotePattern{p}

	assert.True(t, IsAllowed("http://example.com:8080/a/b.png", patterns))

	mismatches := []string{
		"https://example.com:8080/a/b.png",
		"http://example.org:8080/a/b.png",
		"http://example.com:8081/a/b.png",
		"http://example.com/a/b.png",
		"http://example.com:8080/a/c.png",
		"http://example.com:8080/a/b.png/",
	}
	for _, u := range mismatches {
		assert.False(t, IsAllowed(u, patterns), u)
	}
}

func TestIsAllowed_DefaultDeny(t *testing.T) {
	urls := []string{
		"https://i.seadn.io/foo.png",
		"http://localhost/",
		"https://example.com:8443/a/b",
	}

	empty, err := New(nil)
	require.NoError(t, err)

	var nilList *Allowlist

	for _, u := range urls {
		assert.False(t, IsAllowed(u, nil), u)
		assert.False(t, IsAllowed(u, []RemotePattern{}), u)
		assert.False(t, empty.IsAllowed(u), u)
		assert.False(t, nilList.IsAllowed(u), u)
	}
}

func TestIsAllowed_MalformedInputFailsClosed(t *testing.T) {
	patterns := []RemotePattern{seadn}

	inputs := []string{
		"",
		"not a url",
		"://",
		"https://",
		"/relative/path.png",
		"i.seadn.io/foo.png",
		"https:opaque",
		"https://exa mple.com/",
		"https://i.seadn.io:abc/",
		"https://i.seadn.io/%zz",
		"https://i.seadn.io/images/%2e%2e/secret",
		"\x00https://i.seadn.io/",
	}

	for _, in := range inputs {
		assert.NotPanics(t, func() {
			assert.False(t, IsAllowed(in, patterns), in)
		})
	}
}

func TestIsAllowed_InvalidPatternNeverMatches(t *testing.T) {
	bad := RemotePattern{Protocol: "ftp", Hostname: "i.seadn.io", Pathname: "/**"}
	assert.False(t, IsAllowed("https://i.seadn.io/a.png", []RemotePattern{bad}))
	assert.True(t, IsAllowed("https://i.seadn.io/a.png", []RemotePattern{bad, seadn}))
}

func TestAllowlist_Check(t *testing.T) {
	a := MustNew(
		RemotePattern{Protocol: ProtocolHTTPS, Hostname: "cdn.example.com", Pathname: "/images/**"},
		RemotePattern{Protocol: ProtocolHTTPS, Hostname: "*.example.com", Pathname: "/**"},
	)

	p, err := a.Check("https://cdn.example.com/images/cat.png")
	require.NoError(t, err)
	assert.Equal(t, "/images/**", p.Pathname, "first matching pattern is reported")

	p, err = a.Check("https://cdn.example.com/other.png")
	require.NoError(t, err)
	assert.Equal(t, "*.example.com", p.Hostname)

	_, err = a.Check("https://example.com/other.png")
	assert.ErrorIs(t, err, ErrNoMatch)
	assert.True(t, IsDenied(err))

	_, err = a.Check("::not-a-url")
	assert.ErrorIs(t, err, ErrMalformedURL)
	assert.True(t, IsDenied(err))
}

func TestAllowlist_CheckURL(t *testing.T) {
	a := MustNew(seadn)

	u, err := url.Parse("https://i.seadn.io/a/b.png")
	require.NoError(t, err)
	_, err = a.CheckURL(u)
	assert.NoError(t, err)

	_, err = a.CheckURL(nil)
	assert.ErrorIs(t, err, ErrMalformedURL)

	_, err = a.CheckURL(&url.URL{Path: "/a/b.png"})
	assert.ErrorIs(t, err, ErrMalformedURL)
}

func TestAllowlist_DotSegments(t *testing.T) {
	a := MustNew(RemotePattern{Protocol: ProtocolHTTPS, Hostname: "cdn.example.com", Pathname: "/images/**"})

	assert.True(t, a.IsAllowed("https://cdn.example.com/images/a/./b.png"))
	assert.True(t, a.IsAllowed("https://cdn.example.com/images/a/../b.png"))
	assert.False(t, a.IsAllowed("https://cdn.example.com/images/../secret.png"))
	assert.False(t, a.IsAllowed("https://cdn.example.com/images/%2E%2E/secret.png"))
}

func TestAllowlist_Search(t *testing.T) {
	a := MustNew(RemotePattern{Protocol: ProtocolHTTPS, Hostname: "cdn.example.com", Pathname: "/**", Search: "?v=1"})

	assert.True(t, a.IsAllowed("https://cdn.example.com/a.png?v=1"))
	assert.False(t, a.IsAllowed("https://cdn.example.com/a.png?v=2"))
	assert.False(t, a.IsAllowed("https://cdn.example.com/a.png"))
}

func TestAllowlist_WildcardHost(t *testing.T) {
	for _, host := range []string{"*.sub.example.com", "**.sub.example.com"} {
		t.Run(host, func(t *testing.T) {
			a := MustNew(RemotePattern{Protocol: ProtocolHTTPS, Hostname: host, Pathname: "/**"})

			assert.True(t, a.IsAllowed("https://a.sub.example.com/x.png"))
			assert.True(t, a.IsAllowed("https://a.b.sub.example.com/x.png"))
			assert.False(t, a.IsAllowed("https://sub.example.com/x.png"))
			assert.False(t, a.IsAllowed("https://asub.example.com/x.png"))
			assert.False(t, a.IsAllowed("https://a.sub.example.com.evil.io/x.png"))
		})
	}
}

func TestAllowlist_InternationalHost(t *testing.T) {
	a := MustNew(RemotePattern{Protocol: ProtocolHTTPS, Hostname: "bücher.example", Pathname: "/**"})

	assert.Equal(t, "xn--bcher-kva.example", a.Patterns()[0].Hostname)
	assert.True(t, a.IsAllowed("https://xn--bcher-kva.example/a.png"))
	assert.True(t, a.IsAllowed("https://bücher.example/a.png"))
	assert.False(t, a.IsAllowed("https://bucher.example/a.png"))
}

func TestAllowlist_IPLiterals(t *testing.T) {
	a := MustNew(
		RemotePattern{Protocol: ProtocolHTTP, Hostname: "127.0.0.1", Port: "9000", Pathname: "/**"},
		RemotePattern{Protocol: ProtocolHTTP, Hostname: "[::1]", Pathname: "/**"},
	)

	assert.True(t, a.IsAllowed("http://127.0.0.1:9000/a.png"))
	assert.False(t, a.IsAllowed("http://127.0.0.1/a.png"))
	assert.True(t, a.IsAllowed("http://[::1]/a.png"))
	assert.True(t, a.IsAllowed("http://[::1]:80/a.png"))
}

func TestAllowlist_PatternsIsACopy(t *testing.T) {
	a := MustNew(seadn)

	got := a.Patterns()
	require.Len(t, got, 1)
	got[0].Hostname = "evil.io"

	assert.Equal(t, "i.seadn.io", a.Patterns()[0].Hostname)
	assert.Equal(t, 1, a.Len())
	assert.False(t, a.IsAllowed("https://evil.io/a.png"))
}

func TestAllowlist_ConcurrentUse(t *testing.T) {
	a := MustNew(seadn)

	var g errgroup.Group
	for i := 0; i < 32; i++ {
		g.Go(func() error {
			for j := 0; j < 200; j++ {
				if !a.IsAllowed(fmt.Sprintf("https://i.seadn.io/%d/%d.png", i, j)) {
					return errors.New("allowed url denied")
				}
				if a.IsAllowed(fmt.Sprintf("http://i.seadn.io/%d/%d.png", i, j)) {
					return errors.New("denied url allowed")
				}
			}
			return nil
		})
	}
	assert.NoError(t, g.Wait())
}

func TestMustNew_PanicsOnInvalidPattern(t *testing.T) {
	assert.Panics(t, func() {
		MustNew(RemotePattern{Protocol: ProtocolHTTPS})
	})
}

func BenchmarkAllowlist_IsAllowed(b *testing.B) {
	a := MustNew(
		RemotePattern{Protocol: ProtocolHTTPS, Hostname: "*.cdn.example.com", Pathname: "/assets/**/*.png"},
		seadn,
	)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.IsAllowed("https://i.seadn.io/gae/abc/def.png?w=500")
	}
}
