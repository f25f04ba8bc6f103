package filter

import (
	"encoding/json"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Clause 将谓词翻译为 gorm 条件（MySQL 方言，数组字段以 JSON 列存储）。nil 谓词返回 nil。
func Clause(e Expr) clause.Expression {
	switch v := e.(type) {
	case nil:
		return nil
	case Eq:
		return clause.Eq{Column: clause.Column{Name: v.Field}, Value: v.Value}
	case In:
		if len(v.Values) == 0 {
			return never()
		}
		return clause.IN{Column: clause.Column{Name: v.Field}, Values: v.Values}
	case HasAny:
		if len(v.Values) == 0 {
			return never()
		}
		raw, _ := json.Marshal(v.Values)
		return clause.Expr{SQL: "JSON_OVERLAPS(?, ?)", Vars: []any{clause.Column{Name: v.Field}, string(raw)}}
	case Contains:
		return clause.Expr{
			SQL:  "LOWER(?) LIKE ?",
			Vars: []any{clause.Column{Name: v.Field}, "%" + escapeLike(strings.ToLower(v.Substr)) + "%"},
		}
	case Or:
		if len(v) == 0 {
			return never()
		}
		exprs := make([]clause.Expression, 0, len(v))
		for _, sub := range v {
			if c := Clause(sub); c != nil {
				exprs = append(exprs, c)
			}
		}
		return clause.Or(exprs...)
	case And:
		exprs := make([]clause.Expression, 0, len(v))
		for _, sub := range v {
			if c := Clause(sub); c != nil {
				exprs = append(exprs, c)
			}
		}
		if len(exprs) == 0 {
			return nil
		}
		return clause.And(exprs...)
	default:
		return never()
	}
}

// Apply 把谓词挂到查询上
func Apply(db *gorm.DB, e Expr) *gorm.DB {
	c := Clause(e)
	if c == nil {
		return db
	}
	return db.Where(c)
}

func never() clause.Expression {
	return clause.Expr{SQL: "1 = 0"}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
