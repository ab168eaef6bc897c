package google

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// NewState returns a random OAuth state parameter.
func NewState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ParseAuthorizationInput accepts a bare authorization code or the URL the
// browser was redirected to. A URL must carry the expected state.
func ParseAuthorizationInput(input, state string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("no authorization code entered")
	}

	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	return CodeFromQuery(u.Query(), state)
}

// CodeFromQuery extracts the authorization code from redirect query parameters.
func CodeFromQuery(q url.Values, state string) (string, error) {
	if e := q.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if q.Get("state") != state {
		return "", errors.New("OAuth state mismatch")
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("no code in callback")
	}
	return code, nil
}
