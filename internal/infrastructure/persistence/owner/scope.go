// Package owner scopes GORM statements on ledger tables to a single owner key.
//
// Reads use Scope directly. Writes are additionally checked by a callback that
// refuses UPDATE and DELETE statements carrying no owner condition.
//
// Usage:
//
//	db.Table("payables").Scopes(owner.Scope(key)).Find(&rows)
package owner

import (
	"errors"

	"github.com/maia/backend/internal/domain/ownership"
	"gorm.io/gorm"
)

// Owner columns shared by every ledger table
const (
	ColumnUserID      = "user_id"
	ColumnNamespace   = "user_ns"
	ColumnTokenTalkbi = "token_talkbi"
)

// ErrOwnerRequired is returned when a scoped statement has no usable owner key
var ErrOwnerRequired = errors.New("owner key is required for ledger queries")

// ErrOwnerConditionMissing is returned when a ledger write has no owner filter
var ErrOwnerConditionMissing = errors.New("ledger write without owner condition")

// Scope filters a statement to rows stored under key. An empty or partial
// key adds ErrOwnerRequired so the statement never runs unfiltered.
func Scope(key ownership.Key) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if err := key.Validate(); err != nil {
			_ = db.AddError(ErrOwnerRequired)
			return db
		}
		if id, ok := key.UserID(); ok {
			return db.Where(ColumnUserID+" = ?", id)
		}
		ns, token, _ := key.Namespace()
		return db.Where(ColumnNamespace+" = ? AND "+ColumnTokenTalkbi+" = ?", ns, token)
	}
}
