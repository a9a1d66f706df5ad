package integration

import (
	"fmt"
	"strings"
	"time"
)

// TestIdentity generates unique credentials for a test user. The raw token is
// what the client presents to /auth/login; the subject is what the identity
// provider asserts for it.
func TestIdentity(suffix string) (rawToken, subject, email string) {
	ts := time.Now().UnixNano()
	rawToken = fmt.Sprintf("idp-token-%d-%s", ts, suffix)
	subject = fmt.Sprintf("subject-%d-%s", ts, suffix)
	email = fmt.Sprintf("test-%d-%s@example.com", ts, suffix)
	return
}

// ExtractResetToken pulls the token query parameter out of a reset link
func ExtractResetToken(resetLink string) string {
	_, token, found := strings.Cut(resetLink, "token=")
	if !found {
		return ""
	}
	return token
}
