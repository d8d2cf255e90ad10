package remotepattern

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigMalformed is matched by every *ConfigError.
	ErrConfigMalformed = errors.New("malformed remote pattern")

	// ErrNoMatch means the URL is well formed but no pattern permits it.
	ErrNoMatch = errors.New("no remote pattern matches url")

	// ErrMalformedURL means the candidate could not be split into scheme, host, port and path.
	// It is a denial like ErrNoMatch.
	ErrMalformedURL = errors.New("malformed url")
)

// ConfigError reports a structurally invalid RemotePattern found at load time.
type ConfigError struct {
	Index  int // position in the pattern list, -1 when validated on its own
	Field  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("remotePatterns[%d].%s %q: %s", e.Index, e.Field, e.Value, e.Reason)
	}
	return fmt.Sprintf("%s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfigMalformed
}

type reasonError string

func (r reasonError) Error() string { return string(r) }

func errReason(reason string) error {
	return reasonError(reason)
}

func fieldError(field, value string, err error) *ConfigError {
	return &ConfigError{Index: -1, Field: field, Value: value, Reason: err.Error()}
}

// IsDenied reports whether err is one of the normal "not permitted" outcomes.
func IsDenied(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrMalformedURL)
}
