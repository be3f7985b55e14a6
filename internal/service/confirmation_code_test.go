package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfirmationCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 200; i++ {
		code, err := NewConfirmationCode()
		require.NoError(t, err)
		assert.Regexp(t, `^[A-Z0-9]{10}$`, code)
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}
