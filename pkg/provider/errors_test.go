package provider

import (
	"errors"
	"testing"
)

func TestFriendlyError(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"openai: Incorrect API key provided", "Invalid or missing API key. Check the credential configured for this provider."},
		{"HTTP 401 Unauthorized", "Invalid or missing API key. Check the credential configured for this provider."},
		{"openai: insufficient_quota", "Provider quota exceeded or rate limited. Try again in a moment."},
		{"flux: HTTP 429", "Provider quota exceeded or rate limited. Try again in a moment."},
		{"context deadline exceeded", "The provider took too long to respond. Try again."},
		{"gemini: model not found", "gemini: model not found"},
	}
	for _, c := range cases {
		if got := FriendlyError(errors.New(c.in)); got != c.want {
			t.Errorf("FriendlyError(%q) = %q, want %q", c.in, got, c.want)
		}
	}

	if got := FriendlyError(nil); got != "" {
		t.Errorf("FriendlyError(nil) = %q, want empty", got)
	}
}
