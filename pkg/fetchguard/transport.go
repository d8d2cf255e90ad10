// Package fetchguard applies a remote image allowlist to outbound HTTP
// requests. A denied request is answered with a *DeniedError and never reaches
// the network; redirects pass through the same check hop by hop.
package fetchguard

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"imgguard/pkg/logger"
	"imgguard/pkg/remotepattern"
)

// ErrTooManyRedirects is returned by clients from NewClient once the redirect cap is hit.
var ErrTooManyRedirects = errors.New("too many redirects")

// DeniedError is returned for a request whose URL the allowlist rejects.
type DeniedError struct {
	URL string
	Err error // remotepattern.ErrNoMatch or remotepattern.ErrMalformedURL
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("fetchguard: %s denied: %v", e.URL, e.Err)
}

func (e *DeniedError) Unwrap() error {
	return e.Err
}

// IsDenied reports whether err, possibly wrapped by http.Client, is a *DeniedError.
func IsDenied(err error) bool {
	var de *DeniedError
	return errors.As(err, &de)
}

type options struct {
	timeout      time.Duration
	maxRedirects int
	hostRPS      float64
	hostBurst    int
	userAgent    string
}

func defaultOptions() options {
	return options{
		timeout:      15 * time.Second,
		maxRedirects: 5,
	}
}

// Option configures a Transport or a client built by NewClient.
type Option func(*options)

// WithTimeout bounds the whole request, redirects included. Client only.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithMaxRedirects caps followed redirects. Zero refuses every redirect. Client only.
func WithMaxRedirects(n int) Option {
	return func(o *options) {
		if n < 0 {
			n = 0
		}
		o.maxRedirects = n
	}
}

// WithHostRateLimit allows rps requests per second to each remote host. A
// request over the limit waits, honouring its context. rps <= 0 disables it.
func WithHostRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		o.hostRPS = rps
		o.hostBurst = burst
	}
}

// WithUserAgent sets the User-Agent on requests that do not carry one.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// Transport is an http.RoundTripper that consults an Allowlist before handing
// a request to its base transport.
type Transport struct {
	allow     *remotepattern.Allowlist
	base      http.RoundTripper
	userAgent string
	hosts     *hostLimiters
}

// NewTransport wraps base (http.DefaultTransport when nil). A nil allowlist
// denies everything.
func NewTransport(allow *remotepattern.Allowlist, base http.RoundTripper, opts ...Option) *Transport {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newTransport(allow, base, o)
}

func newTransport(allow *remotepattern.Allowlist, base http.RoundTripper, o options) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	t := &Transport{
		allow:     allow,
		base:      base,
		userAgent: o.userAgent,
	}
	if o.hostRPS > 0 {
		t.hosts = newHostLimiters(o.hostRPS, o.hostBurst)
	}
	return t
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if _, err := t.allow.CheckURL(req.URL); err != nil {
		closeBody(req)
		target := "<nil>"
		if req.URL != nil {
			target = req.URL.Redacted()
		}
		logger.LogDebug("Outbound fetch denied: %s (%v)", target, err)
		return nil, &DeniedError{URL: target, Err: err}
	}

	if t.hosts != nil {
		if err := t.hosts.wait(req.Context(), req.URL.Hostname()); err != nil {
			closeBody(req)
			return nil, fmt.Errorf("fetchguard: waiting for %s: %w", req.URL.Hostname(), err)
		}
	}

	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.userAgent)
	}
	return t.base.RoundTrip(req)
}

// NewClient returns an http.Client whose every request and redirect hop is
// checked against allow.
func NewClient(allow *remotepattern.Allowlist, opts ...Option) *http.Client {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	limit := o.maxRedirects
	return &http.Client{
		Transport: newTransport(allow, nil, o),
		Timeout:   o.timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > limit {
				return fmt.Errorf("%w: stopped after %d", ErrTooManyRedirects, limit)
			}
			return nil
		},
	}
}

// RoundTrippers must close the request body even when they fail.
func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
