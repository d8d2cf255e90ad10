package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchOrigin(t *testing.T) {
	tests := []struct {
		origin  string
		pattern string
		want    bool
	}{
		{"https://app.example.com", "*", true},
		{"https://app.example.com", "https://app.example.com", true},
		{"https://app.example.com", "https://other.example.com", false},
		{"https://example.com", "https://**.example.com", true},
		{"https://api.example.com", "https://**.example.com", true},
		{"https://a.b.example.com", "https://**.example.com", true},
		{"http://api.example.com", "https://**.example.com", false},
		{"https://evilexample.com", "https://**.example.com", false},
		{"https://api.example.com", "https://*.example.com", true},
		{"https://a.b.example.com", "https://*.example.com", false},
		{"https://example.com", "https://*.example.com", false},
		{"http://api.example.com", "https://*.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin+" "+tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchOrigin(tt.origin, tt.pattern))
		})
	}
}

func TestIsAllowedOrigin(t *testing.T) {
	patterns := []string{"https://**.example.com", "http://localhost:3000"}

	assert.True(t, IsAllowedOrigin("https://admin.example.com", patterns))
	assert.True(t, IsAllowedOrigin("https://admin.example.com/dashboard?x=1", patterns), "referer is reduced to its origin")
	assert.True(t, IsAllowedOrigin("http://localhost:3000", patterns))
	assert.False(t, IsAllowedOrigin("http://localhost:3001", patterns))
	assert.False(t, IsAllowedOrigin("", patterns))
	assert.False(t, IsAllowedOrigin("https://admin.example.com", nil))
}
