package services

import (
	"log"
	"strings"
)

// clientSafePatterns maps provider error patterns to messages that are
// safe to show in the UI.
var clientSafePatterns = []struct {
	pattern string
	message string
}{
	{"rate limit", "rate limit exceeded"},
	{"quota", "quota exceeded"},
	{"resource_exhausted", "quota exceeded"},
	{"deadline exceeded", "request timed out"},
	{"timeout", "request timed out"},
	{"context canceled", "request cancelled"},
	{"api key", "authentication failed with provider"},
	{"unauthorized", "authentication failed with provider"},
	{"unauthenticated", "authentication failed with provider"},
	{"permission", "access denied by provider"},
	{"forbidden", "access denied by provider"},
	{"malformed model response", "the model returned an unreadable answer"},
}

// SanitizeForClient logs the full error and returns a message that does not
// leak provider details.
func SanitizeForClient(err error) string {
	if err == nil {
		return ""
	}

	errLower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(errLower, p.pattern) {
			log.Printf("⚠️  Provider error (shown as %q): %v\n", p.message, err)
			return p.message
		}
	}

	log.Printf("❌ Provider error (sanitized for client): %v\n", err)
	return "provider temporarily unavailable"
}
