package ownership

import (
	"fmt"
	"strings"

	"github.com/maia/backend/internal/domain/shared"
)

// Mode is the deployment-wide tenancy scheme
type Mode string

const (
	ModeIdentity       Mode = "identity"
	ModeNamespaceToken Mode = "namespace_token"
)

// ParseMode parses a configured tenancy mode
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeIdentity, "":
		return ModeIdentity, nil
	case ModeNamespaceToken:
		return ModeNamespaceToken, nil
	default:
		return "", fmt.Errorf("unknown tenancy mode %q", s)
	}
}

// Accepts reports whether a key has the shape this mode stores
func (m Mode) Accepts(k Key) bool {
	switch m {
	case ModeIdentity:
		return k.Kind() == KindIdentity
	case ModeNamespaceToken:
		return k.Kind() == KindNamespaceToken
	default:
		return false
	}
}

// Credentials is what a request presents to prove ownership
type Credentials struct {
	// Session is the owner derived from a verified session token, if any
	Session   *Key
	Namespace string
	Token     string
}

func (c Credentials) hasMarkers() bool {
	return c.Namespace != "" || c.Token != ""
}

// Resolver picks the effective owner key for a request. It never falls back
// from one scheme to the other.
type Resolver struct {
	mode Mode
}

// NewResolver creates a resolver fixed to mode
func NewResolver(mode Mode) *Resolver {
	return &Resolver{mode: mode}
}

// Mode returns the configured tenancy mode
func (r *Resolver) Mode() Mode {
	return r.mode
}

// Resolve returns the effective owner key for the presented credentials
func (r *Resolver) Resolve(c Credentials) (Key, error) {
	switch r.mode {
	case ModeIdentity:
		if c.hasMarkers() {
			return Key{}, shared.NewDomainError(shared.CodeInvalidInput,
				"user_ns and token_talkbi are not accepted by this deployment")
		}
		if c.Session == nil || c.Session.Kind() != KindIdentity {
			return Key{}, shared.NewDomainError(shared.CodeUnauthorized, "Authentication required")
		}
		return *c.Session, nil
	case ModeNamespaceToken:
		if c.Session != nil {
			return Key{}, shared.NewDomainError(shared.CodeInvalidInput,
				"session ownership is not accepted by this deployment")
		}
		ns := strings.TrimSpace(c.Namespace)
		token := strings.TrimSpace(c.Token)
		if ns == "" || token == "" {
			return Key{}, shared.NewDomainError(shared.CodeInvalidInput,
				"user_ns and token_talkbi are required")
		}
		return NamespaceToken(ns, token), nil
	default:
		return Key{}, fmt.Errorf("tenancy mode %q is not configured", r.mode)
	}
}
