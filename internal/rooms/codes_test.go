package rooms

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInviteCode(t *testing.T) {
	for i := 0; i < 100; i++ {
		code := newInviteCode()
		assert.Len(t, code, inviteCodeLength)
		assert.Equal(t, strings.ToUpper(code), code)
		for _, ch := range code {
			assert.Contains(t, inviteCodeChars, string(ch))
		}
	}
}
