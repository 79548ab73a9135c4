package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

const CSRFField = "_csrf"

func SignResource(secret string, parts ...string) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	payload := strings.Join(parts, ":")
	mac.Write([]byte(payload))
	sum := mac.Sum(nil)
	return []byte(base64.RawURLEncoding.EncodeToString(sum))
}

// CSRFToken binds a form token to the browser session.
func CSRFToken(secret, sessionID string) string {
	return string(SignResource(secret, "csrf", sessionID))
}

func ValidCSRF(secret, sessionID, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(token), SignResource(secret, "csrf", sessionID))
}
