package appinfo

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"imgguard/pkg/remotepattern"
)

func TestRecordDecision(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	RecordDecision(nil)
	RecordDecision(nil)
	RecordDecision(remotepattern.ErrNoMatch)
	RecordDecision(fmt.Errorf("%w: bad host", remotepattern.ErrMalformedURL))

	s := Stats()
	assert.Equal(t, int64(2), s.Allowed)
	assert.Equal(t, int64(2), s.Denied)
	assert.Equal(t, int64(1), s.Malformed)
	assert.Equal(t, int64(4), s.Total)
	assert.NotEmpty(t, s.Uptime)
}
