package owner

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WriteGuard is a GORM callback that rejects UPDATE and DELETE statements on
// ledger tables unless their WHERE clause names an owner column.
type WriteGuard struct {
	tables map[string]struct{}
}

// NewWriteGuard creates a guard for the given tables
func NewWriteGuard(tables ...string) *WriteGuard {
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}
	return &WriteGuard{tables: set}
}

// Register installs the guard on db
func (g *WriteGuard) Register(db *gorm.DB) error {
	if err := db.Callback().Update().Before("gorm:update").Register("owner:guard_update", g.check); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register("owner:guard_delete", g.check)
}

// EnableWriteGuard registers a WriteGuard for tables on db
func EnableWriteGuard(db *gorm.DB, tables ...string) error {
	return NewWriteGuard(tables...).Register(db)
}

func (g *WriteGuard) check(db *gorm.DB) {
	if db.Error != nil {
		return
	}
	if _, guarded := g.tables[db.Statement.Table]; !guarded {
		return
	}
	if !hasOwnerCondition(db.Statement) {
		_ = db.AddError(ErrOwnerConditionMissing)
	}
}

func hasOwnerCondition(stmt *gorm.Statement) bool {
	whereClause, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := whereClause.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if exprContainsOwner(expr) {
			return true
		}
	}
	return false
}

func exprContainsOwner(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Expr:
		return isOwnerSQL(e.SQL)
	case clause.NamedExpr:
		return isOwnerSQL(e.SQL)
	case clause.Eq:
		return isOwnerColumn(e.Column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprContainsOwner(cond) {
				return true
			}
		}
	}
	return false
}

func isOwnerSQL(sql string) bool {
	return strings.Contains(sql, ColumnUserID) || strings.Contains(sql, ColumnNamespace)
}

func isOwnerColumn(column any) bool {
	var name string
	switch c := column.(type) {
	case string:
		name = c
	case clause.Column:
		name = c.Name
	}
	return name == ColumnUserID || name == ColumnNamespace
}
