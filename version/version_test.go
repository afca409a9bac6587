package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-02", Version: "v0.3.0"}

	assert.Equal(t, "0123456", info.Short())
	assert.Equal(t, "gripterra v0.3.0 (commit 0123456, built 2026-01-02)", info.String())
	assert.Equal(t, "dev", Info{CommitHash: "dev"}.Short())
}
