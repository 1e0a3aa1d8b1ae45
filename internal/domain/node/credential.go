package node

import (
	"fmt"
	"strings"
)

// Credential is the authentication material stored for a node, in one of
// two modes selected by shape: a static bearer token used as-is, or a
// "username:secret" pair that triggers an on-demand token exchange against
// the panel.
type Credential struct {
	raw string
}

// NewCredential validates and wraps the stored credential material.
func NewCredential(raw string) (Credential, error) {
	if strings.TrimSpace(raw) == "" {
		return Credential{}, fmt.Errorf("node credential is required")
	}
	return Credential{raw: raw}, nil
}

// Raw returns the credential material as stored.
func (c Credential) Raw() string {
	return c.raw
}

// IsPair reports whether the credential is a username:secret pair requiring
// a token exchange, as opposed to a static bearer token.
func (c Credential) IsPair() bool {
	return strings.Contains(c.raw, ":")
}

// Pair splits a credential pair into username and secret. Only meaningful
// when IsPair is true; the secret may itself contain colons.
func (c Credential) Pair() (username, secret string) {
	parts := strings.SplitN(c.raw, ":", 2)
	if len(parts) != 2 {
		return c.raw, ""
	}
	return parts[0], parts[1]
}

// BearerToken returns the static token for non-pair credentials.
func (c Credential) BearerToken() string {
	return c.raw
}

func (c Credential) String() string {
	return "[redacted]"
}
