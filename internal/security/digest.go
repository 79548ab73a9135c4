package security

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// StorageKey derives the backend key for a session id so a leaked store
// dump cannot be replayed as a cookie.
func StorageKey(sessionID string) string {
	sum := blake2b.Sum256([]byte("portal-session:" + sessionID))
	return hex.EncodeToString(sum[:])
}
