package rooms

import (
	"crypto/rand"
	"math/big"
)

const (
	inviteCodeLength = 6
	// Uppercase letters and digits with ambiguous chars removed.
	inviteCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// newInviteCode generates a random 6-character invite code. Uniqueness among
// live rooms is the caller's job (generateUniqueInviteCode).
func newInviteCode() string {
	code := make([]byte, inviteCodeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(inviteCodeChars))))
		code[i] = inviteCodeChars[n.Int64()]
	}
	return string(code)
}
