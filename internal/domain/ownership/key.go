// Package ownership models who a ledger record belongs to and decides
// whether a caller may touch it.
package ownership

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the shape of an owner key
type Kind string

const (
	KindIdentity       Kind = "identity"
	KindNamespaceToken Kind = "namespace_token"
)

// Key identifies the owner of a ledger record. It is either an identity id
// or a (namespace, token) pair, never both.
type Key struct {
	kind      Kind
	userID    uuid.UUID
	namespace string
	token     string
}

// Identity returns an owner key bound to a user id
func Identity(userID uuid.UUID) Key {
	return Key{kind: KindIdentity, userID: userID}
}

// NamespaceToken returns an owner key bound to a namespace/token pair
func NamespaceToken(namespace, token string) Key {
	return Key{kind: KindNamespaceToken, namespace: namespace, token: token}
}

// Kind returns the key shape
func (k Key) Kind() Kind {
	return k.kind
}

// UserID returns the identity id when the key is identity-shaped
func (k Key) UserID() (uuid.UUID, bool) {
	if k.kind != KindIdentity {
		return uuid.Nil, false
	}
	return k.userID, true
}

// Namespace returns the namespace and token when the key is namespace-shaped
func (k Key) Namespace() (namespace, token string, ok bool) {
	if k.kind != KindNamespaceToken {
		return "", "", false
	}
	return k.namespace, k.token, true
}

// IsZero reports whether the key carries no owner at all
func (k Key) IsZero() bool {
	return k.kind == ""
}

// Validate checks that the key is fully populated for its shape
func (k Key) Validate() error {
	switch k.kind {
	case KindIdentity:
		if k.userID == uuid.Nil {
			return fmt.Errorf("identity owner key requires a user id")
		}
	case KindNamespaceToken:
		if k.namespace == "" || k.token == "" {
			return fmt.Errorf("namespace owner key requires both namespace and token")
		}
	default:
		return fmt.Errorf("owner key is empty")
	}
	return nil
}

// Equal compares two keys; keys of different shapes are never equal.
func (k Key) Equal(other Key) bool {
	if k.kind != other.kind {
		return false
	}
	switch k.kind {
	case KindIdentity:
		return k.userID == other.userID
	case KindNamespaceToken:
		return k.namespace == other.namespace && k.token == other.token
	default:
		return false
	}
}

// Columns returns the owner column values used to filter storage queries
func (k Key) Columns() map[string]any {
	switch k.kind {
	case KindIdentity:
		return map[string]any{"user_id": k.userID}
	case KindNamespaceToken:
		return map[string]any{"user_ns": k.namespace, "token_talkbi": k.token}
	default:
		return nil
	}
}

// String renders the key for logs. The token is masked.
func (k Key) String() string {
	switch k.kind {
	case KindIdentity:
		return "identity:" + k.userID.String()
	case KindNamespaceToken:
		return "ns:" + k.namespace + "/" + maskToken(k.token)
	default:
		return "<none>"
	}
}

func maskToken(token string) string {
	if len(token) <= 4 {
		return "****"
	}
	return token[:2] + "****" + token[len(token)-2:]
}

// Owned is implemented by anything carrying an owner key
type Owned interface {
	OwnerKey() Key
}
