package ownership

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

const maxTokenLength = 190

// ErrInvalidCreatorToken indicates that a creator token is empty or exceeds storage bounds.
var ErrInvalidCreatorToken = errors.New("ownership: invalid creator token")

// CreatorToken is the opaque per-profile secret recorded on every list a profile creates.
type CreatorToken string

// NewCreatorToken validates raw input and returns a CreatorToken.
func NewCreatorToken(rawInput string) (CreatorToken, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidCreatorToken)
	}
	if len(trimmed) > maxTokenLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidCreatorToken, maxTokenLength)
	}
	return CreatorToken(trimmed), nil
}

// String returns the underlying token.
func (token CreatorToken) String() string {
	return string(token)
}

// Capability is possession of a creator token. Holding the token a list was created
// with grants add, edit and delete rights on that list's gifts. The zero value grants
// nothing and models an anonymous viewer.
type Capability struct {
	token CreatorToken
}

// NewCapability wraps a raw creator token.
func NewCapability(rawToken string) (Capability, error) {
	token, err := NewCreatorToken(rawToken)
	if err != nil {
		return Capability{}, err
	}
	return Capability{token: token}, nil
}

// Anonymous returns a capability that grants no mutation rights.
func Anonymous() Capability {
	return Capability{}
}

// Token returns the wrapped creator token.
func (c Capability) Token() CreatorToken {
	return c.token
}

// IsZero reports whether the capability carries no token.
func (c Capability) IsZero() bool {
	return c.token == ""
}

// Grants reports whether the capability matches the creator token stored on a list.
func (c Capability) Grants(creatorToken string) bool {
	if c.IsZero() || creatorToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(c.token), []byte(creatorToken)) == 1
}
