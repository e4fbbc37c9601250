package token

import (
	"crypto/sha256"
	"time"
)

const (
	ScopeActivation = "activation"
	ScopeRecovery   = "recovery"
)

// Mailer delivers plaintext tokens to their recipients.
type Mailer interface {
	SendActivationToken(token string, to string) error
	SendRecoveryToken(token string, to string) error
}

// Token is the hashed form of a one-time token. The plaintext is only ever
// held in memory and mailed to the user.
type Token struct {
	Hash   []byte    `db:"token_hash"`
	UserID string    `db:"user_id"`
	Scope  string    `db:"scope"`
	Expiry time.Time `db:"expiry"`
}

func Hash(plaintext string) []byte {
	h := sha256.Sum256([]byte(plaintext))
	return h[:]
}
