package history

import (
	"crypto/sha256"
	"encoding/hex"
)

// Owner scopes stored state to one browser client and one sender account.
// Client is a random key the caller keeps; only its digest reaches the store.
type Owner struct {
	Client  string
	Account string
}

func (o Owner) validate() error {
	if o.Client == "" {
		return ErrNoClient
	}
	if o.Account == "" {
		return ErrNoAccount
	}
	return nil
}

func (o Owner) key(prefix string) string {
	sum := sha256.Sum256([]byte(o.Client))
	return prefix + hex.EncodeToString(sum[:16]) + ":" + o.Account
}
