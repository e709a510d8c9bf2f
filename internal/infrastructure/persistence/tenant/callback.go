package tenant

import (
	"strings"

	"github.com/google/uuid"
	"github.com/monartisan/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	callbackQuery  = "tenant:before_query"
	callbackRow    = "tenant:before_row"
	callbackUpdate = "tenant:before_update"
	callbackDelete = "tenant:before_delete"
)

// Callback adds WHERE tenant_id = ? to statements whose context carries a
// tenant. Raw statements, tables without a tenant column (artisans) and
// statements that already filter on it are left untouched.
type Callback struct {
	required bool
}

func NewCallback(required bool) *Callback {
	return &Callback{required: required}
}

// Register installs the callback on every read/write processor except create;
// tenant_id is set explicitly on insert.
func (tc *Callback) Register(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register(callbackQuery, tc.apply); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register(callbackRow, tc.apply); err != nil {
		return err
	}
	if err := db.Callback().Update().Before("gorm:update").Register(callbackUpdate, tc.apply); err != nil {
		return err
	}
	return db.Callback().Delete().Before("gorm:delete").Register(callbackDelete, tc.apply)
}

func (tc *Callback) apply(db *gorm.DB) {
	stmt := db.Statement
	if stmt.Context == nil || stmt.Unscoped {
		return
	}
	if stmt.Schema == nil || stmt.Schema.LookUpField(Column) == nil {
		return
	}
	if tc.hasTenantCondition(stmt) {
		return
	}

	raw := logger.GetTenantID(stmt.Context)
	if raw == "" {
		if tc.required {
			_ = db.AddError(ErrTenantIDRequired)
		}
		return
	}
	if _, err := uuid.Parse(raw); err != nil {
		_ = db.AddError(ErrInvalidTenantID)
		return
	}

	stmt.AddClause(clause.Where{Exprs: []clause.Expression{
		clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: Column}, Value: raw},
	}})
}

func (tc *Callback) hasTenantCondition(stmt *gorm.Statement) bool {
	c, ok := stmt.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		if exprMentionsTenant(expr) {
			return true
		}
	}
	return false
}

func exprMentionsTenant(expr clause.Expression) bool {
	switch e := expr.(type) {
	case clause.Expr:
		return strings.Contains(e.SQL, Column)
	case clause.NamedExpr:
		return strings.Contains(e.SQL, Column)
	case clause.Eq:
		return columnIsTenant(e.Column)
	case clause.IN:
		return columnIsTenant(e.Column)
	case clause.AndConditions:
		for _, cond := range e.Exprs {
			if exprMentionsTenant(cond) {
				return true
			}
		}
	}
	return false
}

func columnIsTenant(col interface{}) bool {
	switch c := col.(type) {
	case clause.Column:
		return c.Name == Column
	case string:
		return c == Column
	}
	return false
}

// EnableAutoTenantFilter registers the callback on db
func EnableAutoTenantFilter(db *gorm.DB, required bool) error {
	return NewCallback(required).Register(db)
}
