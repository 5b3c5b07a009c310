package provider

import "strings"

// friendly rewrite rules for well-known provider error substrings.
// Anything not matched passes through verbatim.
var rewrites = []struct {
	substrings []string
	message    string
}{
	{
		substrings: []string{"invalid api key", "invalid_api_key", "unauthorized", "401", "incorrect api key"},
		message:    "Invalid or missing API key. Check the credential configured for this provider.",
	},
	{
		substrings: []string{"quota", "insufficient_quota", "billing", "429", "rate limit", "resource_exhausted"},
		message:    "Provider quota exceeded or rate limited. Try again in a moment.",
	},
	{
		substrings: []string{"timeout", "deadline exceeded", "context deadline"},
		message:    "The provider took too long to respond. Try again.",
	},
}

// FriendlyError rewrites well-known auth/quota/timeout failures into
// plainer text and passes everything else through unchanged.
func FriendlyError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, r := range rewrites {
		for _, sub := range r.substrings {
			if strings.Contains(lower, sub) {
				return r.message
			}
		}
	}
	return msg
}
